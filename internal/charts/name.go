package charts

import (
	"strings"
	"unicode"

	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
)

// DisplayConfig is attached to every chart: the browser's "download as
// image" button uses it to name the exported file.
type DisplayConfig struct {
	DisplayLogo bool         `json:"displaylogo"`
	ToImage     ImageOptions `json:"toImageButtonOptions"`
}

type ImageOptions struct {
	Format   string  `json:"format"`
	Filename string  `json:"filename"`
	Scale    float64 `json:"scale"`
}

// ChartName builds the display config for identifier, prefixing the file
// name with the station's city and country when the metadata has them.
func ChartName(identifier string, meta frame.Meta) DisplayConfig {
	parts := make([]string, 0, 3)
	for _, p := range []string{meta.City(), meta.Country(), identifier} {
		if p = fileSafe(p); p != "" {
			parts = append(parts, p)
		}
	}
	return DisplayConfig{
		ToImage: ImageOptions{
			Format:   "svg",
			Filename: strings.Join(parts, "_"),
			Scale:    2,
		},
	}
}

func fileSafe(s string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
			prevUnderscore = false
		case !prevUnderscore && b.Len() > 0:
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}
