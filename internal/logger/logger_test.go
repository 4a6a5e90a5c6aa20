package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func decodeLine(t *testing.T, b *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(b.String())
	if line == "" {
		t.Fatalf("no log output")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	return m
}

func TestSlogBridge_CarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Service: "dashboard", Component: "render"}, &buf)
	l := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithEntry(ctx, "yearly-chart")
	ctx = WithSession(ctx, "s1")
	l.InfoContext(ctx, "rendered", "dur", 5*time.Millisecond, "hits", 2)

	m := decodeLine(t, &buf)
	for k, want := range map[string]string{
		"request_id": "req-1",
		"entry":      "yearly-chart",
		"session":    "s1",
		"service":    "dashboard",
		"component":  "render",
		"msg":        "rendered",
		"dur":        "5ms",
		"level":      "info",
	} {
		if got, _ := m[k].(string); got != want {
			t.Fatalf("%s=%q want %q (line=%v)", k, got, want, m)
		}
	}
	if m["hits"].(float64) != 2 {
		t.Fatalf("hits=%v want 2", m["hits"])
	}
}

func TestSlogBridge_GroupsAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn"}, &buf)
	l := NewSlog(&zl)

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	l.WithGroup("cache").Warn("slow", "op", "get")
	m := decodeLine(t, &buf)
	if m["cache.op"] != "get" {
		t.Fatalf("expected grouped key cache.op, got %v", m)
	}
}

func TestNewID_HexAndUnique(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 16 || a == b {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}

func TestBuild_SamplingAndLevelNames(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: " WARN ", SampleN: 3}, &buf)
	for range 6 {
		zl.Warn().Msg("tick")
	}
	if n := strings.Count(buf.String(), `"msg":"tick"`); n != 2 {
		t.Fatalf("sampled lines=%d want 2 of 6", n)
	}

	buf.Reset()
	zl = Build(Config{Level: "bogus"}, &buf)
	zl.Debug().Msg("hidden")
	zl.Info().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unknown level should fall back to info, got %q", buf.String())
	}
}

func TestFromContext_NilParentAndEmptyValues(t *testing.T) {
	ctx := WithSession(WithComponent(context.Background(), ""), "")
	if ctx.Value(keySession) != nil || ctx.Value(keyComponent) != nil {
		t.Fatalf("empty values should not be stored")
	}
	if l := FromContext(ctx, nil); l == nil {
		t.Fatalf("nil parent should yield a discard logger")
	}
}
