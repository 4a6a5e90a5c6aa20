package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
	"github.com/mohammed-shakir/trh-dashboard/internal/selector"
)

// Table is a rendered descriptive-statistics table.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Summary holds count, mean, std, min, quartiles and max of a series.
type Summary struct {
	Count               int
	Mean, Std, Min, Max float64
	P25, P50, P75       float64
}

var summaryColumns = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe ignores NaN. Std is the sample standard deviation and the
// percentiles interpolate linearly between closest ranks.
func Describe(vals []float64) Summary {
	x := finite(vals)
	s := Summary{Count: len(x)}
	if len(x) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Max, s.P25, s.P50, s.P75 = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sort.Float64s(x)
	s.Mean = stat.Mean(x, nil)
	if len(x) > 1 {
		s.Std = stat.StdDev(x, nil)
	} else {
		s.Std = math.NaN()
	}
	s.Min, s.Max = x[0], x[len(x)-1]
	s.P25 = quantile(x, 0.25)
	s.P50 = quantile(x, 0.50)
	s.P75 = quantile(x, 0.75)
	return s
}

// x must be sorted. Interpolates at rank (n-1)p (Hyndman-Fan type 7),
// which gonum stat.Quantile with LinInterp does not implement.
func quantile(x []float64, p float64) float64 {
	pos := p * float64(len(x)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return x[int(lo)]
	}
	return x[int(lo)] + (pos-lo)*(x[int(hi)]-x[int(lo)])
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (b *builder) SummaryTable(f *frame.Frame, v selector.Variable) (*Table, error) {
	sv, vals, err := b.series(f, v)
	if err != nil {
		return nil, err
	}
	s := Describe(vals)
	row := []string{
		fmt.Sprintf("%s (%s)", sv.Label, sv.Unit),
		strconv.Itoa(s.Count),
		formatStat(s.Mean),
		formatStat(s.Std),
		formatStat(s.Min),
		formatStat(s.P25),
		formatStat(s.P50),
		formatStat(s.P75),
		formatStat(s.Max),
	}
	return &Table{
		Title:   "Descriptive statistics",
		Columns: append([]string{""}, summaryColumns...),
		Rows:    [][]string{row},
	}, nil
}
