// Package charts provides the chart and table generators the render entry
// points delegate to.
package charts

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
	"github.com/mohammed-shakir/trh-dashboard/internal/scheme"
	"github.com/mohammed-shakir/trh-dashboard/internal/selector"
)

// Figure is a chart option document, ready for the browser-side chart library.
type Figure = json.RawMessage

type (
	ChartFunc func(f *frame.Frame, v selector.Variable, fr selector.Framing) (Figure, error)
	TableFunc func(f *frame.Frame, v selector.Variable) (*Table, error)
	NameFunc  func(identifier string, meta frame.Meta) DisplayConfig
	PNGFunc   func(f *frame.Frame, v selector.Variable, fr selector.Framing) ([]byte, error)
)

// Generators bundles the collaborators so callers can swap any of them.
type Generators struct {
	Yearly    ChartFunc
	Daily     ChartFunc
	Heatmap   ChartFunc
	Table     TableFunc
	Name      NameFunc
	YearlyPNG PNGFunc
}

func Default(s *scheme.Scheme) Generators {
	b := &builder{scheme: s}
	return Generators{
		Yearly:    b.YearlyProfile,
		Daily:     b.DailyProfile,
		Heatmap:   b.Heatmap,
		Table:     b.SummaryTable,
		Name:      ChartName,
		YearlyPNG: b.YearlyPNG,
	}
}

type builder struct {
	scheme *scheme.Scheme
}

func (b *builder) variable(v selector.Variable) (scheme.Variable, error) {
	sv, ok := b.scheme.Lookup(v.Code())
	if !ok {
		return scheme.Variable{}, fmt.Errorf("%w: %s not in scheme", selector.ErrUnknownVariable, v)
	}
	return sv, nil
}

// series loads the variable's column together with its scheme entry
func (b *builder) series(f *frame.Frame, v selector.Variable) (scheme.Variable, []float64, error) {
	sv, err := b.variable(v)
	if err != nil {
		return sv, nil, err
	}
	vals, err := f.Column(v.Code())
	if err != nil {
		return sv, nil, fmt.Errorf("series %s: %w", v, err)
	}
	return sv, vals, nil
}

// value axis bounds: the scheme's range for global framing, the data's for local
func valueRange(sv scheme.Variable, fr selector.Framing, vals []float64) (float64, float64) {
	if fr == selector.Local {
		if lo, hi, ok := finiteRange(vals); ok {
			lo, hi = math.Floor(lo), math.Ceil(hi)
			if lo == hi {
				hi = lo + 1
			}
			return lo, hi
		}
	}
	return sv.Min(), sv.Max()
}
