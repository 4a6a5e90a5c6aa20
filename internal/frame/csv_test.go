package frame

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	in := "timestamp,DBT,RH\n2019-01-01 00:00,-2.5,81\n2019-01-01T01:00:00Z,,79\n"
	f, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if f.Len() != 2 || len(f.Columns) != 2 || f.Columns[1] != "RH" {
		t.Fatalf("frame=%+v", f)
	}
	dbt, _ := f.Column("DBT")
	if dbt[0] != -2.5 || !math.IsNaN(dbt[1]) {
		t.Fatalf("dbt=%v", dbt)
	}
	if f.Index[1].Hour() != 1 {
		t.Fatalf("index=%v", f.Index)
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"timestamp\n",
		"timestamp,DBT\nyesterday,1\n",
		"timestamp,DBT\n2019-01-01 00:00,warm\n",
		"timestamp,DBT\n2019-01-01 00:00,1,2\n",
	} {
		if _, err := ReadCSV(strings.NewReader(in)); !errors.Is(err, ErrMalformed) {
			t.Fatalf("input %q: err=%v want ErrMalformed", in, err)
		}
	}
}

func TestReadCSV_RoundTripsThroughSplit(t *testing.T) {
	in := "timestamp,DBT\n2019-01-01T00:00:00.123456789Z,1\n"
	f, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	raw, err := EncodeSplit(f)
	if err != nil {
		t.Fatalf("EncodeSplit: %v", err)
	}
	back, err := DecodeSplit(raw)
	if err != nil {
		t.Fatalf("DecodeSplit: %v", err)
	}
	if !Equal(f, back) {
		t.Fatalf("round trip changed the frame: %v vs %v", f.Index, back.Index)
	}
}
