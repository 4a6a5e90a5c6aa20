package session

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/mohammed-shakir/trh-dashboard/internal/cache/keys"
	"github.com/mohammed-shakir/trh-dashboard/internal/cache/redisstore"
)

type info struct {
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type redisStore struct {
	cli *redisstore.Client
	ttl time.Duration
}

// NewRedisStore stores each session under three keys sharing one TTL, so
// the metadata can be read without fetching the dataset.
func NewRedisStore(cli *redisstore.Client, ttl time.Duration) Store {
	return &redisStore{cli: cli, ttl: ttl}
}

func sessionKeys(id string) (df, meta, inf string) {
	base := keys.Session(id)
	return base + ":df", base + ":meta", base + ":info"
}

func (s *redisStore) Put(ctx context.Context, id string, snap Snapshot) error {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	rawInfo, err := sonic.Marshal(info{Version: snap.Version, UpdatedAt: snap.UpdatedAt})
	if err != nil {
		return fmt.Errorf("session %q info: %w", id, err)
	}
	dfKey, metaKey, infoKey := sessionKeys(id)
	kv := map[string][]byte{
		dfKey:   snap.Dataset,
		metaKey: snap.Meta,
		infoKey: rawInfo,
	}
	if err := s.cli.MSetWithTTL(ctx, kv, s.ttl); err != nil {
		return fmt.Errorf("session %q put: %w", id, err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, id string) (Snapshot, error) {
	dfKey, metaKey, infoKey := sessionKeys(id)
	got, err := s.cli.MGet(ctx, []string{dfKey, metaKey, infoKey})
	if err != nil {
		return Snapshot{}, fmt.Errorf("session %q get: %w", id, err)
	}
	df, ok := got[dfKey]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	snap := Snapshot{Dataset: df, Meta: got[metaKey]}
	if raw, ok := got[infoKey]; ok {
		var inf info
		if err := sonic.Unmarshal(raw, &inf); err == nil {
			snap.Version, snap.UpdatedAt = inf.Version, inf.UpdatedAt
		}
	}
	return snap, nil
}

func (s *redisStore) GetMeta(ctx context.Context, id string) ([]byte, error) {
	_, metaKey, _ := sessionKeys(id)
	got, err := s.cli.MGet(ctx, []string{metaKey})
	if err != nil {
		return nil, fmt.Errorf("session %q meta: %w", id, err)
	}
	m, ok := got[metaKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return m, nil
}

func (s *redisStore) Ping(ctx context.Context) error { return s.cli.Ping(ctx) }
