// Package frame decodes and encodes the tabular dataset snapshot shared by
// the dashboard callbacks, using the "split" orientation:
//
//	{"columns":["DBT","RH"],"index":[1546300800000,...],"data":[[-1.2,81],...]}
//
// Index values are epoch milliseconds or timestamp strings. Cells that are
// null or not numeric decode to NaN.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var (
	ErrMalformed = errors.New("malformed dataset snapshot")
	ErrNoColumn  = errors.New("column not found")
)

var api = sonic.ConfigStd

type Frame struct {
	Index   []time.Time
	Columns []string
	Data    [][]float64 // row-major, one row per index entry
}

type splitDoc struct {
	Columns []string `json:"columns"`
	Index   []any    `json:"index"`
	Data    [][]any  `json:"data"`
}

type splitOut struct {
	Columns []string     `json:"columns"`
	Index   []int64      `json:"index"`
	Data    [][]*float64 `json:"data"`
}

func (f *Frame) Len() int { return len(f.Index) }

// Column copies one column out of the row-major data.
func (f *Frame) Column(name string) ([]float64, error) {
	j := -1
	for i, c := range f.Columns {
		if c == name {
			j = i
			break
		}
	}
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	out := make([]float64, len(f.Data))
	for i, row := range f.Data {
		out[i] = row[j]
	}
	return out, nil
}

// Unwrap accepts either the snapshot document itself or a JSON string that
// contains it, the way browser-side stores hold it, and returns the document.
func Unwrap(raw []byte) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := api.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: unwrap string: %v", ErrMalformed, err)
	}
	return bytes.TrimSpace([]byte(s)), nil
}

func DecodeSplit(raw []byte) (*Frame, error) {
	raw, err := Unwrap(raw)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformed)
	}
	var doc splitDoc
	if err := api.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(doc.Index) != len(doc.Data) {
		return nil, fmt.Errorf("%w: %d index entries for %d rows", ErrMalformed, len(doc.Index), len(doc.Data))
	}

	f := &Frame{
		Index:   make([]time.Time, len(doc.Index)),
		Columns: doc.Columns,
		Data:    make([][]float64, len(doc.Data)),
	}
	for i, v := range doc.Index {
		ts, err := parseIndex(v)
		if err != nil {
			return nil, fmt.Errorf("%w: index %d: %v", ErrMalformed, i, err)
		}
		f.Index[i] = ts
	}
	for i, row := range doc.Data {
		if len(row) != len(doc.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformed, i, len(row), len(doc.Columns))
		}
		vals := make([]float64, len(row))
		for j, c := range row {
			vals[j] = toFloat(c)
		}
		f.Data[i] = vals
	}
	return f, nil
}

// EncodeSplit writes the index as epoch milliseconds, so a round trip
// through DecodeSplit is exact only at millisecond resolution.
func EncodeSplit(f *Frame) ([]byte, error) {
	out := splitOut{
		Columns: f.Columns,
		Index:   make([]int64, len(f.Index)),
		Data:    make([][]*float64, len(f.Data)),
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for i, ts := range f.Index {
		out.Index[i] = ts.UnixMilli()
	}
	for i, row := range f.Data {
		cells := make([]*float64, len(row))
		for j := range row {
			if math.IsNaN(row[j]) || math.IsInf(row[j], 0) {
				continue
			}
			cells[j] = &row[j]
		}
		out.Data[i] = cells
	}
	b, err := api.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode split: %w", err)
	}
	return b, nil
}

// Equal compares by column names, index and cell content; NaN equals NaN.
func Equal(a, b *Frame) bool {
	if a.Len() != b.Len() || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	for i := range a.Index {
		if !a.Index[i].Equal(b.Index[i]) {
			return false
		}
		for j := range a.Data[i] {
			x, y := a.Data[i][j], b.Data[i][j]
			if x != y && !(math.IsNaN(x) && math.IsNaN(y)) {
				return false
			}
		}
	}
	return true
}

var indexLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseIndex(v any) (time.Time, error) {
	switch t := v.(type) {
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range indexLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
	default:
		return time.Time{}, fmt.Errorf("unsupported index value %T", v)
	}
}

func toFloat(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return math.NaN()
}
