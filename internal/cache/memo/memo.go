// Package memo is the two-tier render cache. Entries live in a bounded
// in-process LRU and, when configured, in a shared cache.Store so other
// replicas reuse the same artifacts. Both tiers expire entries after the
// same timeout.
package memo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/mohammed-shakir/trh-dashboard/internal/cache"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/observability"
)

// Codec converts values for the shared tier.
type Codec[T any] struct {
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)
}

// Bytes passes raw payloads through.
func Bytes() Codec[[]byte] {
	return Codec[[]byte]{
		Encode: func(b []byte) ([]byte, error) { return b, nil },
		Decode: func(b []byte) ([]byte, error) { return b, nil },
	}
}

type Options struct {
	Size      int
	TTL       time.Duration
	OpTimeout time.Duration
	// Remote is optional; nil keeps the cache process-local.
	Remote cache.Store
	Logger *slog.Logger
	Now    func() time.Time
}

type entry[T any] struct {
	val      T
	expireAt time.Time
}

type Cache[T any] struct {
	mu     sync.Mutex
	local  *lru.Cache[string, entry[T]]
	group  singleflight.Group
	codec  Codec[T]
	ttl    time.Duration
	opTO   time.Duration
	remote cache.Store
	log    *slog.Logger
	now    func() time.Time
}

func New[T any](opts Options, codec Codec[T]) (*Cache[T], error) {
	if opts.Size <= 0 {
		opts.Size = 512
	}
	if opts.TTL <= 0 {
		return nil, errors.New("memo: ttl must be positive")
	}
	if opts.Remote != nil && (codec.Encode == nil || codec.Decode == nil) {
		return nil, errors.New("memo: remote tier needs a codec")
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	l, err := lru.New[string, entry[T]](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("memo lru: %w", err)
	}
	return &Cache[T]{
		local:  l,
		codec:  codec,
		ttl:    opts.TTL,
		opTO:   opts.OpTimeout,
		remote: opts.Remote,
		log:    opts.Logger,
		now:    opts.Now,
	}, nil
}

type result[T any] struct {
	val     T
	outcome string
}

// Do returns the value cached under key, computing it with fn on a miss.
// Within one timeout window repeat calls return the stored instance without
// invoking fn. name labels metrics. Errors from fn are not cached. Failures
// of the shared tier are logged and the value is computed locally.
func (c *Cache[T]) Do(ctx context.Context, name, key string, fn func(context.Context) (T, error)) (T, string, error) {
	if v, ok := c.getLocal(key); ok {
		observability.ObserveRenderCache(name, observability.OutcomeHitLocal)
		return v, observability.OutcomeHitLocal, nil
	}

	r, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.getLocal(key); ok {
			return result[T]{v, observability.OutcomeHitLocal}, nil
		}
		if v, ttl, ok := c.getRemote(ctx, key); ok {
			c.putLocal(key, v, ttl)
			return result[T]{v, observability.OutcomeHitRemote}, nil
		}

		start := time.Now()
		v, err := fn(ctx)
		observability.ObserveRender(name, time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		c.putLocal(key, v, c.ttl)
		c.putRemote(ctx, key, v)
		return result[T]{v, observability.OutcomeMiss}, nil
	})
	if err != nil {
		var zero T
		return zero, "", err
	}
	res := r.(result[T])
	observability.ObserveRenderCache(name, res.outcome)
	return res.val, res.outcome, nil
}

// Forget drops key from both tiers.
func (c *Cache[T]) Forget(ctx context.Context, key string) {
	c.mu.Lock()
	c.local.Remove(key)
	c.mu.Unlock()
	if c.remote == nil {
		return
	}
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opTO)
	defer cancel()
	if err := c.remote.Del(opCtx, key); err != nil {
		c.log.WarnContext(ctx, "render cache remote del failed", "key", key, "err", err)
	}
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local.Len()
}

func (c *Cache[T]) getLocal(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.local.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	if !c.now().Before(e.expireAt) {
		c.local.Remove(key)
		var zero T
		return zero, false
	}
	return e.val, true
}

func (c *Cache[T]) putLocal(key string, v T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local.Add(key, entry[T]{val: v, expireAt: c.now().Add(ttl)})
}

func (c *Cache[T]) getRemote(ctx context.Context, key string) (T, time.Duration, bool) {
	var zero T
	if c.remote == nil {
		return zero, 0, false
	}
	opCtx, cancel := context.WithTimeout(ctx, c.opTO)
	defer cancel()

	raw, ttl, err := c.remote.Get(opCtx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.log.WarnContext(ctx, "render cache remote get failed", "key", key, "err", err)
		}
		return zero, 0, false
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		c.log.WarnContext(ctx, "render cache remote decode failed", "key", key, "err", err)
		return zero, 0, false
	}
	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}
	return v, ttl, true
}

func (c *Cache[T]) putRemote(ctx context.Context, key string, v T) {
	if c.remote == nil {
		return
	}
	raw, err := c.codec.Encode(v)
	if err != nil {
		c.log.WarnContext(ctx, "render cache encode failed", "key", key, "err", err)
		return
	}
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opTO)
	defer cancel()
	if err := c.remote.Set(opCtx, key, raw, c.ttl); err != nil {
		c.log.WarnContext(ctx, "render cache remote set failed", "key", key, "err", err)
	}
}
