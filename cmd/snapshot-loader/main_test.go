package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestBuildEvent(t *testing.T) {
	csvPath := writeFile(t, "weather.csv", "timestamp,DBT,RH\n2019-01-01 00:00,1.5,80\n2019-01-01 01:00,1.0,82\n")
	metaPath := writeFile(t, "meta.json", `{"city":"Lund","country":"Sweden"}`)

	ev, err := buildEvent(csvPath, metaPath, "s1", 7)
	if err != nil {
		t.Fatalf("buildEvent: %v", err)
	}
	if ev.Session != "s1" || ev.Seq != 7 || ev.Version != 1 {
		t.Fatalf("event=%+v", ev)
	}
	f, err := frame.DecodeSplit(ev.DF)
	if err != nil {
		t.Fatalf("decode df: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("rows=%d want 2", f.Len())
	}
	if snap := ev.Snapshot(); snap.Version != 7 || string(snap.Meta) != `{"city":"Lund","country":"Sweden"}` {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestBuildEvent_Errors(t *testing.T) {
	good := writeFile(t, "ok.csv", "timestamp,DBT\n2019-01-01 00:00,1\n")
	bad := writeFile(t, "bad.csv", "timestamp,DBT\n2019-01-01 00:00,warm\n")
	badMeta := writeFile(t, "meta.json", `[1,2]`)

	if _, err := buildEvent(bad, "", "s1", 1); !errors.Is(err, frame.ErrMalformed) {
		t.Fatalf("bad csv err=%v", err)
	}
	if _, err := buildEvent(good, badMeta, "s1", 1); err == nil {
		t.Fatalf("expected meta error")
	}
	if _, err := buildEvent(good, "", "s1", 0); err == nil {
		t.Fatalf("expected seq validation error")
	}
	if _, err := buildEvent(filepath.Join(t.TempDir(), "missing.csv"), "", "s1", 1); err == nil {
		t.Fatalf("expected open error")
	}
}
