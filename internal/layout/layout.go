// Package layout builds the static placeholder tree of the temperature and
// humidity tab. Render entry points fill the placeholders by id.
package layout

import (
	"fmt"

	"github.com/mohammed-shakir/trh-dashboard/internal/render"
	"github.com/mohammed-shakir/trh-dashboard/internal/scheme"
)

type Kind string

const (
	KindContainer   Kind = "container"
	KindHeading     Kind = "heading"
	KindDropdown    Kind = "dropdown"
	KindTitle       Kind = "title"
	KindPlaceholder Kind = "placeholder"
)

type Option = scheme.Option

type Node struct {
	Kind     Kind     `json:"kind"`
	ID       string   `json:"id,omitempty"`
	Class    string   `json:"class,omitempty"`
	Text     string   `json:"text,omitempty"`
	Tooltip  string   `json:"tooltip,omitempty"`
	Options  []Option `json:"options,omitempty"`
	Value    string   `json:"value,omitempty"`
	Loading  bool     `json:"loading,omitempty"`
	Children []Node   `json:"children,omitempty"`
}

// DropdownID is the id of the variable selector.
const DropdownID = "dropdown"

type section struct {
	title   string
	tooltip string
	labelID string
	entry   render.Entry
	loading bool
	class   string
}

var sections = []section{
	{"Yearly chart", "", "yearly-chart-label", render.EntryYearly, true, ""},
	{"Daily chart", "", "daily-chart-label", render.EntryDaily, true, ""},
	{"Heatmap chart", "", "heatmap-chart-label", render.EntryHeatmap, true, ""},
	{"Descriptive statistics", "count, mean, std, min, max, and percentiles", "table-tmp-rh", render.EntryTable, false, "row align-center justify-center"},
}

// Build is a pure function of the scheme's dropdown options. The dropdown
// defaults to the first option.
func Build(s *scheme.Scheme) Node {
	opts := s.DropdownOptions()
	var def string
	if len(opts) > 0 {
		def = opts[0].Value
	}

	body := make([]Node, 0, 2*len(sections))
	for _, sec := range sections {
		body = append(body,
			Node{Kind: KindTitle, ID: sec.labelID, Text: sec.title, Tooltip: sec.tooltip},
			Node{Kind: KindPlaceholder, ID: string(sec.entry), Class: sec.class, Loading: sec.loading},
		)
	}

	return Node{
		Kind:  KindContainer,
		Class: "container-col full-width",
		Children: []Node{
			{
				Kind:  KindContainer,
				Class: "container-row full-width align-center justify-center",
				Children: []Node{
					{Kind: KindHeading, Class: "text-next-to-input", Text: "Select a variable: "},
					{Kind: KindDropdown, ID: DropdownID, Class: "dropdown-t-rh", Options: opts, Value: def},
				},
			},
			{Kind: KindContainer, Class: "container-col", Children: body},
		},
	}
}

// IDs lists every id in the tree, depth first.
func IDs(n Node) []string {
	var out []string
	walk(n, func(n Node) {
		if n.ID != "" {
			out = append(out, n.ID)
		}
	})
	return out
}

// Placeholders lists the placeholder ids in layout order.
func Placeholders(n Node) []string {
	var out []string
	walk(n, func(n Node) {
		if n.Kind == KindPlaceholder {
			out = append(out, n.ID)
		}
	})
	return out
}

// Validate reports duplicate ids.
func Validate(n Node) error {
	seen := map[string]bool{}
	for _, id := range IDs(n) {
		if seen[id] {
			return fmt.Errorf("layout: duplicate id %q", id)
		}
		seen[id] = true
	}
	return nil
}

func walk(n Node, fn func(Node)) {
	fn(n)
	for _, c := range n.Children {
		walk(c, fn)
	}
}
