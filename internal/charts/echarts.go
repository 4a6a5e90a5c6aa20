package charts

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
	"github.com/mohammed-shakir/trh-dashboard/internal/selector"
)

var ErrNoData = errors.New("no finite values to plot")

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// echarts renders a missing point for "-"
const missing = "-"

type optionDoc interface {
	Validate()
	JSON() map[string]interface{}
}

func encodeOption(c optionDoc) (Figure, error) {
	c.Validate()
	// sorted keys keep figures byte-stable for the shared cache tier
	b, err := sonic.ConfigStd.Marshal(c.JSON())
	if err != nil {
		return nil, fmt.Errorf("encode chart option: %w", err)
	}
	return b, nil
}

func hourLabels() []string {
	out := make([]string, 24)
	for h := range 24 {
		out[h] = fmt.Sprintf("%02d:00", h)
	}
	return out
}

func dayLabel(d time.Time) string { return d.Format("Jan 02") }

func lineValue(v float64) opts.LineData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.LineData{Value: missing}
	}
	return opts.LineData{Value: round2(v)}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// YearlyProfile plots the daily mean with daily min/max envelopes over the
// whole record, with a slider to zoom into a date range.
func (b *builder) YearlyProfile(f *frame.Frame, v selector.Variable, fr selector.Framing) (Figure, error) {
	sv, vals, err := b.series(f, v)
	if err != nil {
		return nil, err
	}
	days := dailyStats(f.Index, vals)
	if len(days) == 0 {
		return nil, fmt.Errorf("yearly %s: %w", v, ErrNoData)
	}
	lo, hi := valueRange(sv, fr, vals)

	labels := make([]string, len(days))
	mean := make([]opts.LineData, len(days))
	dmin := make([]opts.LineData, len(days))
	dmax := make([]opts.LineData, len(days))
	for i, d := range days {
		labels[i] = dayLabel(d.Day)
		mean[i] = lineValue(d.Mean)
		dmin[i] = lineValue(d.Min)
		dmax[i] = lineValue(d.Max)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    sv.Label,
			Subtitle: "Yearly profile (" + fr.String() + ")",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: sv.Unit, Type: "value", Min: lo, Max: hi}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(labels).
		AddSeries("Daily mean", mean).
		AddSeries("Daily min", dmin).
		AddSeries("Daily max", dmax)
	return encodeOption(line)
}

// DailyProfile plots the mean value by hour of day, one series per month.
func (b *builder) DailyProfile(f *frame.Frame, v selector.Variable, fr selector.Framing) (Figure, error) {
	sv, vals, err := b.series(f, v)
	if err != nil {
		return nil, err
	}
	means, present := hourlyByMonth(f.Index, vals)
	lo, hi := valueRange(sv, fr, vals)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    sv.Label,
			Subtitle: "Daily profile by month (" + fr.String() + ")",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: sv.Unit, Type: "value", Min: lo, Max: hi}),
	)
	line.SetXAxis(hourLabels())

	added := 0
	for m := range 12 {
		if !present[m] {
			continue
		}
		pts := make([]opts.LineData, 24)
		for h := range 24 {
			pts[h] = lineValue(means[m][h])
		}
		line.AddSeries(monthNames[m], pts)
		added++
	}
	if added == 0 {
		return nil, fmt.Errorf("daily %s: %w", v, ErrNoData)
	}
	return encodeOption(line)
}

// Heatmap plots every hourly value on a day x hour grid.
func (b *builder) Heatmap(f *frame.Frame, v selector.Variable, fr selector.Framing) (Figure, error) {
	sv, vals, err := b.series(f, v)
	if err != nil {
		return nil, err
	}
	days, cells := heatCells(f.Index, vals)
	if len(cells) == 0 {
		return nil, fmt.Errorf("heatmap %s: %w", v, ErrNoData)
	}
	lo, hi := valueRange(sv, fr, vals)

	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = dayLabel(d)
	}
	hours := make([]string, 24)
	for h := range 24 {
		hours[h] = strconv.Itoa(h)
	}
	data := make([]opts.HeatMapData, len(cells))
	for i, c := range cells {
		data[i] = opts.HeatMapData{Value: [3]interface{}{c.Day, c.Hour, round2(c.Value)}}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    sv.Label,
			Subtitle: "Heatmap (" + fr.String() + ")",
		}),
		// HeatMap.Validate does not copy SetXAxis data, so the days go in the axis opts
		charts.WithXAxisOpts(opts.XAxis{Name: "Day", Type: "category", Data: labels}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Hour", Type: "category", Data: hours}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Show:       true,
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: sv.Colors},
		}),
	)
	hm.AddSeries(sv.Label, data)
	return encodeOption(hm)
}
