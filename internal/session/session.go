// Package session keeps the shared per-session state of the dashboard: the
// dataset snapshot and the metadata snapshot every render call reads.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Snapshot holds both serialized snapshots as received. Version is set by
// the writer; the feed uses it to drop stale events.
type Snapshot struct {
	Dataset   []byte    `json:"df"`
	Meta      []byte    `json:"meta"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store interface {
	Put(ctx context.Context, id string, s Snapshot) error
	Get(ctx context.Context, id string) (Snapshot, error)
	// GetMeta skips the dataset body.
	GetMeta(ctx context.Context, id string) ([]byte, error)
	Ping(ctx context.Context) error
}
