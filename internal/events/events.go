// Package events maps a changed dashboard input to the render entry points
// that depend on it and re-invokes them.
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohammed-shakir/trh-dashboard/internal/render"
)

var ErrUnknownInput = errors.New("unknown input")

type Input string

const (
	InputFraming  Input = "global-local-radio-input"
	InputDropdown Input = "dropdown"
)

// the table does not depend on framing
var table = map[Input][]render.Entry{
	InputFraming:  {render.EntryYearly, render.EntryDaily, render.EntryHeatmap},
	InputDropdown: {render.EntryYearly, render.EntryDaily, render.EntryHeatmap, render.EntryTable},
}

// Affected lists the entry points to re-invoke when input changes.
func Affected(input Input) ([]render.Entry, error) {
	es, ok := table[input]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInput, input)
	}
	return append([]render.Entry(nil), es...), nil
}

// Renderer is satisfied by *render.Context.
type Renderer interface {
	Render(ctx context.Context, e render.Entry, req render.Request) (*render.Artifact, error)
}

type Dispatcher struct {
	r Renderer
}

func NewDispatcher(r Renderer) *Dispatcher { return &Dispatcher{r: r} }

// Update re-renders every entry point affected by input, in table order,
// stopping at the first failure.
func (d *Dispatcher) Update(ctx context.Context, input Input, req render.Request) (map[string]*render.Artifact, error) {
	es, err := Affected(input)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*render.Artifact, len(es))
	for _, e := range es {
		a, err := d.r.Render(ctx, e, req)
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", e, err)
		}
		out[string(e)] = a
	}
	return out, nil
}
