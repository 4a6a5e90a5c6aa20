package scheme

import (
	"strings"
	"testing"
)

func TestDefault_DefinesTemperatureAndHumidity(t *testing.T) {
	s := Default()
	dbt, ok := s.Lookup("dbt")
	if !ok || dbt.Unit != "°C" {
		t.Fatalf("unexpected DBT entry: %+v ok=%v", dbt, ok)
	}
	rh, ok := s.Lookup("RH")
	if !ok || rh.Min() != 0 || rh.Max() != 100 {
		t.Fatalf("unexpected RH entry: %+v ok=%v", rh, ok)
	}
	opts := s.DropdownOptions()
	if len(opts) != 2 || opts[0].Label != "Dry bulb temperature" || opts[0].Value != "DBT" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestLoad_RejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"one variable": `variables: [{code: DBT, range: [0, 1]}]`,
		"duplicate": `variables:
  - {code: DBT, range: [0, 1]}
  - {code: DBT, range: [0, 1]}`,
		"inverted range": `variables:
  - {code: DBT, range: [5, 1]}
  - {code: RH, range: [0, 1]}`,
		"unknown field": `variables:
  - {code: DBT, range: [0, 1], bogus: 1}
  - {code: RH, range: [0, 1]}`,
	}
	for name, doc := range cases {
		if _, err := Load(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
