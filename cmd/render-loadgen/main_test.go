package main

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mohammed-shakir/trh-dashboard/internal/render"
)

func TestMakeCombos_CoversEveryCall(t *testing.T) {
	combos := makeCombos(rand.New(rand.NewSource(1)))
	if want := len(render.Entries) * 4; len(combos) != want {
		t.Fatalf("combos=%d want %d", len(combos), want)
	}
	seen := map[string]bool{}
	for _, c := range combos {
		if seen[c.String()] {
			t.Fatalf("duplicate combo %s", c)
		}
		seen[c.String()] = true
	}
}

func TestPercentile(t *testing.T) {
	if !math.IsNaN(percentile(nil, 0.5)) {
		t.Fatalf("empty input should be NaN")
	}
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(xs, 0.5); got < 5 || got > 6 {
		t.Fatalf("p50=%v", got)
	}
	if got := percentile(xs, 1); got != 10 {
		t.Fatalf("p100=%v want 10", got)
	}
}
