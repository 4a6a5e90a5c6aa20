package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mohammed-shakir/trh-dashboard/internal/render"
	"github.com/mohammed-shakir/trh-dashboard/internal/scheme"
)

func TestBuild_PlaceholdersMatchEntries(t *testing.T) {
	root := Build(scheme.Default())
	got := Placeholders(root)
	if len(got) != len(render.Entries) {
		t.Fatalf("placeholders=%v", got)
	}
	for i, e := range render.Entries {
		if got[i] != string(e) {
			t.Fatalf("placeholder %d=%s want %s", i, got[i], e)
		}
	}
	if err := Validate(root); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBuild_DropdownAndTooltip(t *testing.T) {
	root := Build(scheme.Default())
	var dd, stats *Node
	walk(root, func(n Node) {
		switch {
		case n.Kind == KindDropdown:
			dd = &n
		case n.ID == "table-tmp-rh":
			stats = &n
		}
	})
	if dd == nil || len(dd.Options) != 2 || dd.Value != "DBT" {
		t.Fatalf("dropdown=%+v", dd)
	}
	if dd.Options[1].Label != "Relative humidity" {
		t.Fatalf("options=%+v", dd.Options)
	}
	if stats == nil || stats.Tooltip != "count, mean, std, min, max, and percentiles" {
		t.Fatalf("stats title=%+v", stats)
	}
}

func TestBuild_IsPure(t *testing.T) {
	a := IDs(Build(scheme.Default()))
	b := IDs(Build(scheme.Default()))
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Fatalf("ids differ: %v vs %v", a, b)
	}
}

func TestValidate_Duplicate(t *testing.T) {
	root := Node{Kind: KindContainer, Children: []Node{{ID: "x"}, {ID: "x"}}}
	if err := Validate(root); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, "Temperature and humidity", Build(scheme.Default())); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	body := buf.String()
	for _, want := range []string{
		`<div id="yearly-chart" data-loading="circle">`,
		`<div id="table-tmp-hum" class="row align-center justify-center">`,
		`<option value="DBT" selected>Dry bulb temperature</option>`,
		`<select id="dropdown"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("html missing %q:\n%s", want, body)
		}
	}
}
