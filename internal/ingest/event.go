// Package ingest defines the snapshot feed: upstream producers publish the
// dataset and metadata snapshots of a session, the dashboard stores them.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohammed-shakir/trh-dashboard/internal/session"
)

var ErrInvalidEvent = errors.New("invalid snapshot event")

type Event struct {
	Version int             `json:"version"`
	Session string          `json:"session"`
	Seq     uint64          `json:"seq"`
	TS      time.Time       `json:"ts"`
	DF      json.RawMessage `json:"df"`
	Meta    json.RawMessage `json:"meta,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("%w: version must be 1", ErrInvalidEvent)
	}
	if strings.TrimSpace(e.Session) == "" {
		return fmt.Errorf("%w: session is required", ErrInvalidEvent)
	}
	if e.Seq == 0 {
		return fmt.Errorf("%w: seq must be positive", ErrInvalidEvent)
	}
	if e.TS.IsZero() {
		return fmt.Errorf("%w: ts is required", ErrInvalidEvent)
	}
	if len(e.DF) == 0 || string(e.DF) == "null" {
		return fmt.Errorf("%w: df is required", ErrInvalidEvent)
	}
	return nil
}

// Snapshot is the stored form of the event.
func (e Event) Snapshot() session.Snapshot {
	return session.Snapshot{
		Dataset:   []byte(e.DF),
		Meta:      []byte(e.Meta),
		Version:   e.Seq,
		UpdatedAt: e.TS.UTC(),
	}
}
