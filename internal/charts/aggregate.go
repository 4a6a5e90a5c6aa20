package charts

import (
	"math"
	"slices"
	"time"
)

type dayStat struct {
	Day            time.Time
	Mean, Min, Max float64
}

func finiteRange(vals []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ok = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

func finite(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func truncDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sortedDays lists the distinct calendar days of idx in ascending order
// together with each day's position.
func sortedDays(idx []time.Time) ([]time.Time, map[time.Time]int) {
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, ts := range idx {
		d := truncDay(ts)
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			days = append(days, d)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	pos := make(map[time.Time]int, len(days))
	for i, d := range days {
		pos[d] = i
	}
	return days, pos
}

// groups by calendar day in day order; days without a finite value are dropped
func dailyStats(idx []time.Time, vals []float64) []dayStat {
	days, pos := sortedDays(idx)
	stats := make([]dayStat, len(days))
	counts := make([]int, len(days))
	sums := make([]float64, len(days))
	for i, d := range days {
		stats[i] = dayStat{Day: d, Min: math.Inf(1), Max: math.Inf(-1)}
	}
	for i, ts := range idx {
		v := vals[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		j := pos[truncDay(ts)]
		sums[j] += v
		counts[j]++
		stats[j].Min = math.Min(stats[j].Min, v)
		stats[j].Max = math.Max(stats[j].Max, v)
	}
	out := stats[:0]
	for i, st := range stats {
		if counts[i] == 0 {
			continue
		}
		st.Mean = sums[i] / float64(counts[i])
		out = append(out, st)
	}
	return out
}

// mean value per month and hour of day; NaN where a bucket has no data
func hourlyByMonth(idx []time.Time, vals []float64) (means [12][24]float64, present [12]bool) {
	var (
		sums   [12][24]float64
		counts [12][24]int
	)
	for i, ts := range idx {
		v := vals[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ts = ts.UTC()
		m, h := int(ts.Month())-1, ts.Hour()
		sums[m][h] += v
		counts[m][h]++
		present[m] = true
	}
	for m := range 12 {
		for h := range 24 {
			if counts[m][h] == 0 {
				means[m][h] = math.NaN()
				continue
			}
			means[m][h] = sums[m][h] / float64(counts[m][h])
		}
	}
	return means, present
}

type heatCell struct {
	Day, Hour int
	Value     float64
}

// one cell per (calendar day, hour); later samples within the same hour win
func heatCells(idx []time.Time, vals []float64) ([]time.Time, []heatCell) {
	days, dayPos := sortedDays(idx)
	var (
		cells []heatCell
		pos   = map[[2]int]int{}
	)
	for i, ts := range idx {
		v := vals[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		k := [2]int{dayPos[truncDay(ts)], ts.UTC().Hour()}
		if j, ok := pos[k]; ok {
			cells[j].Value = v
			continue
		}
		pos[k] = len(cells)
		cells = append(cells, heatCell{Day: k[0], Hour: k[1], Value: v})
	}
	return days, cells
}
