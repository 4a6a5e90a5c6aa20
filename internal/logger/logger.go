// Package logger builds the zerolog logger shared by the dashboard binaries.
package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level     string
	Console   bool
	SampleN   int
	Service   string
	Component string
}

// ctxKey doubles as the log field name of the value it carries.
type ctxKey string

const (
	keyRequestID ctxKey = "request_id"
	keySession   ctxKey = "session"
	keyComponent ctxKey = "component"
	keyEntry     ctxKey = "entry"
)

// field order in emitted lines
var ctxFields = []ctxKey{keyRequestID, keySession, keyComponent, keyEntry}

func with(ctx context.Context, k ctxKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, k, v)
}

// WithRequestID stores reqID, generating one when it is empty.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		reqID = NewID()
	}
	return context.WithValue(ctx, keyRequestID, reqID)
}

// tags log lines with the render entry point being served
func WithEntry(ctx context.Context, entry string) context.Context {
	return with(ctx, keyEntry, entry)
}

func WithSession(ctx context.Context, session string) context.Context {
	return with(ctx, keySession, session)
}

func WithComponent(ctx context.Context, component string) context.Context {
	return with(ctx, keyComponent, component)
}

func NewID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func sampler(n int) zerolog.Sampler {
	if n <= 1 {
		return nil
	}
	return &zerolog.BasicSampler{N: uint32(min(uint64(n), math.MaxUint32))}
}

// Build returns the JSON logger (or a console writer) and sets the global
// level. Field names follow the log pipeline: timestamp, level, msg.
func Build(cfg Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "msg"
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	base := zerolog.New(out)
	if s := sampler(cfg.SampleN); s != nil {
		base = base.Sample(s)
	}

	fields := base.With().Timestamp()
	for k, v := range map[string]string{"service": cfg.Service, "component": cfg.Component} {
		if v != "" {
			fields = fields.Str(k, v)
		}
	}
	return fields.Logger()
}

// returns a child logger with context fields applied
func FromContext(ctx context.Context, parent *zerolog.Logger) *zerolog.Logger {
	base := zerolog.New(io.Discard)
	if parent != nil {
		base = *parent
	}
	w := base.With()
	for _, k := range ctxFields {
		if s, ok := ctx.Value(k).(string); ok && s != "" {
			w = w.Str(string(k), s)
		}
	}
	l := w.Logger()
	return &l
}
