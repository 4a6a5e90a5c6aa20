// Package keys builds the shared cache keys.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Render identifies one memoized artifact. Snapshot bodies are hashed, so any
// change in the serialized dataset or metadata yields a new key. Inputs the
// entry point does not declare are passed empty and hash to a fixed value.
func Render(entry, framing, variable string, dataset, meta []byte) string {
	return fmt.Sprintf("render:%s:%s:%s:d=%016x:m=%016x",
		sanitize(strings.TrimSpace(entry)),
		orDash(sanitize(strings.ToLower(strings.TrimSpace(framing)))),
		orDash(sanitize(strings.ToUpper(strings.TrimSpace(variable)))),
		xxhash.Sum64(dataset),
		xxhash.Sum64(meta),
	)
}

// Session addresses one stored session snapshot.
func Session(id string) string {
	return "session:" + sanitize(strings.TrimSpace(id))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sanitize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '.':
			out = r
		default:
			// Any other rune (including ':' and non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r < unicode.MaxASCII && unicode.IsDigit(r))
}
