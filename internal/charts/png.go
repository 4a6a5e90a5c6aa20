package charts

import (
	"bytes"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
	"github.com/mohammed-shakir/trh-dashboard/internal/selector"
)

// YearlyPNG renders the yearly profile as a static image.
func (b *builder) YearlyPNG(f *frame.Frame, v selector.Variable, fr selector.Framing) ([]byte, error) {
	sv, vals, err := b.series(f, v)
	if err != nil {
		return nil, err
	}
	days := dailyStats(f.Index, vals)
	if len(days) < 2 {
		return nil, fmt.Errorf("yearly png %s: need at least 2 days: %w", v, ErrNoData)
	}
	lo, hi := valueRange(sv, fr, vals)

	xs := make([]time.Time, len(days))
	mean := make([]float64, len(days))
	dmin := make([]float64, len(days))
	dmax := make([]float64, len(days))
	for i, d := range days {
		xs[i] = d.Day
		mean[i], dmin[i], dmax[i] = d.Mean, d.Min, d.Max
	}

	envelope := chart.Style{StrokeColor: drawing.ColorFromHex("9e9e9e"), StrokeWidth: 1}
	ch := chart.Chart{
		Title:      sv.Label + " yearly profile",
		Width:      1200,
		Height:     400,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 02")},
		YAxis:      chart.YAxis{Name: sv.Unit, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Daily min", XValues: xs, YValues: dmin, Style: envelope},
			chart.TimeSeries{Name: "Daily max", XValues: xs, YValues: dmax, Style: envelope},
			chart.TimeSeries{
				Name:    "Daily mean",
				XValues: xs,
				YValues: mean,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("d32f2f"), StrokeWidth: 2},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}
