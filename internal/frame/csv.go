package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

var csvLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ReadCSV reads a header row whose first column is the timestamp, followed
// by one numeric column per series. Empty cells decode to NaN.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: csv header: %v", ErrMalformed, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: csv needs a timestamp and at least one series", ErrMalformed)
	}
	f := &Frame{Columns: make([]string, 0, len(header)-1)}
	for _, h := range header[1:] {
		f.Columns = append(f.Columns, strings.TrimSpace(h))
	}
	cr.FieldsPerRecord = len(header)

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv line %d: %v", ErrMalformed, line, err)
		}
		ts, err := parseCSVTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: csv line %d: %v", ErrMalformed, line, err)
		}
		row := make([]float64, len(rec)-1)
		for j, cell := range rec[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: csv line %d column %s: %v", ErrMalformed, line, f.Columns[j], err)
			}
			row[j] = v
		}
		f.Index = append(f.Index, ts)
		f.Data = append(f.Data, row)
	}
	return f, nil
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range csvLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
