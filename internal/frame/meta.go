package frame

import (
	"bytes"
	"fmt"
	"strings"
)

// Meta is the metadata snapshot: free-form annotations about the weather
// station, used for chart naming.
type Meta map[string]any

func DecodeMeta(raw []byte) (Meta, error) {
	raw, err := Unwrap(raw)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Meta{}, nil
	}
	var m Meta
	if err := api.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: meta: %v", ErrMalformed, err)
	}
	if m == nil {
		m = Meta{}
	}
	return m, nil
}

func (m Meta) str(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func (m Meta) City() string    { return m.str("city") }
func (m Meta) Country() string { return m.str("country") }
