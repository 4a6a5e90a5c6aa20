// Package scheme describes the two plotted variables: their dataset column,
// dropdown label, unit, global axis range and heatmap colour scale.
package scheme

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed scheme.yaml
var defaultDoc []byte

type Variable struct {
	Code   string     `yaml:"code"`
	Label  string     `yaml:"label"`
	Unit   string     `yaml:"unit"`
	Range  [2]float64 `yaml:"range"`
	Colors []string   `yaml:"colors"`
}

func (v Variable) Min() float64 { return v.Range[0] }
func (v Variable) Max() float64 { return v.Range[1] }

type Scheme struct {
	Variables []Variable `yaml:"variables"`
}

// dropdown option as rendered by the layout
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func Load(r io.Reader) (*Scheme, error) {
	var s Scheme
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scheme: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Scheme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scheme: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Default returns the embedded scheme. It panics if the embedded document is
// invalid, which only a broken build can cause.
func Default() *Scheme {
	s, err := Load(bytes.NewReader(defaultDoc))
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Scheme) validate() error {
	if len(s.Variables) != 2 {
		return fmt.Errorf("scheme must define exactly 2 variables, got %d", len(s.Variables))
	}
	seen := map[string]bool{}
	for _, v := range s.Variables {
		code := strings.TrimSpace(v.Code)
		if code == "" {
			return errors.New("scheme variable without code")
		}
		if seen[code] {
			return fmt.Errorf("duplicate variable code %q", code)
		}
		seen[code] = true
		if v.Range[0] >= v.Range[1] {
			return fmt.Errorf("variable %s: range min must be below max", code)
		}
	}
	return nil
}

func (s *Scheme) Lookup(code string) (Variable, bool) {
	for _, v := range s.Variables {
		if strings.EqualFold(v.Code, code) {
			return v, true
		}
	}
	return Variable{}, false
}

func (s *Scheme) DropdownOptions() []Option {
	out := make([]Option, 0, len(s.Variables))
	for _, v := range s.Variables {
		out = append(out, Option{Label: v.Label, Value: v.Code})
	}
	return out
}
