// Package render holds the dashboard's render entry points. Each one branches
// on the selected variable, delegates to exactly one generator and wraps the
// result for its placeholder, memoized on the inputs it declares.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"

	"github.com/mohammed-shakir/trh-dashboard/internal/cache/keys"
	"github.com/mohammed-shakir/trh-dashboard/internal/cache/memo"
	"github.com/mohammed-shakir/trh-dashboard/internal/charts"
	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
	"github.com/mohammed-shakir/trh-dashboard/internal/logger"
	"github.com/mohammed-shakir/trh-dashboard/internal/selector"
)

var ErrUnknownEntry = errors.New("unknown render entry")

// Entry names a render entry point. The value is also the id of the
// placeholder the artifact is bound into.
type Entry string

const (
	EntryYearly  Entry = "yearly-chart"
	EntryDaily   Entry = "daily"
	EntryHeatmap Entry = "heatmap"
	EntryTable   Entry = "table-tmp-hum"
)

// Entries in layout order.
var Entries = []Entry{EntryYearly, EntryDaily, EntryHeatmap, EntryTable}

func ParseEntry(s string) (Entry, error) {
	for _, e := range Entries {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntry, s)
}

// Request carries the entry point inputs. Dataset and Meta are the
// serialized snapshots exactly as the caller holds them.
type Request struct {
	Framing  selector.Framing
	Variable selector.Variable
	Dataset  []byte
	Meta     []byte
}

func (r Request) validate(framed bool) error {
	if !r.Variable.Valid() {
		return fmt.Errorf("%w: %d", selector.ErrUnknownVariable, r.Variable)
	}
	if framed && !r.Framing.Valid() {
		return fmt.Errorf("%w: %d", selector.ErrUnknownFraming, r.Framing)
	}
	return nil
}

const (
	KindGraph = "graph"
	KindTable = "table"
)

// Artifact is what a placeholder displays.
type Artifact struct {
	ID     Entry                 `json:"id"`
	Kind   string                `json:"kind"`
	Config *charts.DisplayConfig `json:"config,omitempty"`
	Figure charts.Figure         `json:"figure,omitempty"`
	Table  *charts.Table         `json:"table,omitempty"`
}

// ArtifactCodec serializes artifacts for the shared cache tier.
func ArtifactCodec() memo.Codec[*Artifact] {
	return memo.Codec[*Artifact]{
		Encode: func(a *Artifact) ([]byte, error) { return sonic.Marshal(a) },
		Decode: func(b []byte) (*Artifact, error) {
			var a Artifact
			if err := sonic.Unmarshal(b, &a); err != nil {
				return nil, fmt.Errorf("decode artifact: %w", err)
			}
			return &a, nil
		},
	}
}

// Context is the render context injected into every entry point.
type Context struct {
	Gen    charts.Generators
	Cache  *memo.Cache[*Artifact]
	PNG    *memo.Cache[[]byte]
	Logger *slog.Logger
}

// NewContext builds the artifact and PNG caches from the same options.
func NewContext(gen charts.Generators, opts memo.Options) (*Context, error) {
	art, err := memo.New(opts, ArtifactCodec())
	if err != nil {
		return nil, fmt.Errorf("artifact cache: %w", err)
	}
	png, err := memo.New(opts, memo.Bytes())
	if err != nil {
		return nil, fmt.Errorf("png cache: %w", err)
	}
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Context{Gen: gen, Cache: art, PNG: png, Logger: l}, nil
}

func (c *Context) Yearly(ctx context.Context, req Request) (*Artifact, error) {
	return c.graph(ctx, EntryYearly, "yearly", c.Gen.Yearly, req)
}

func (c *Context) Daily(ctx context.Context, req Request) (*Artifact, error) {
	return c.graph(ctx, EntryDaily, "daily", c.Gen.Daily, req)
}

func (c *Context) Heatmap(ctx context.Context, req Request) (*Artifact, error) {
	return c.graph(ctx, EntryHeatmap, "heatmap", c.Gen.Heatmap, req)
}

// Table ignores framing and metadata; the key only covers the variable and
// the dataset.
func (c *Context) Table(ctx context.Context, req Request) (*Artifact, error) {
	if err := req.validate(false); err != nil {
		return nil, err
	}
	key := keys.Render(string(EntryTable), "", req.Variable.Code(), req.Dataset, nil)
	return c.do(ctx, EntryTable, key, func(ctx context.Context) (*Artifact, error) {
		f, err := frame.DecodeSplit(req.Dataset)
		if err != nil {
			return nil, err
		}
		t, err := c.Gen.Table(f, req.Variable)
		if err != nil {
			return nil, fmt.Errorf("%s table: %w", req.Variable, err)
		}
		return &Artifact{ID: EntryTable, Kind: KindTable, Table: t}, nil
	})
}

// Render dispatches to the entry point named e.
func (c *Context) Render(ctx context.Context, e Entry, req Request) (*Artifact, error) {
	switch e {
	case EntryYearly:
		return c.Yearly(ctx, req)
	case EntryDaily:
		return c.Daily(ctx, req)
	case EntryHeatmap:
		return c.Heatmap(ctx, req)
	case EntryTable:
		return c.Table(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntry, e)
	}
}

// ExportYearlyPNG renders the yearly chart as a static image.
func (c *Context) ExportYearlyPNG(ctx context.Context, req Request) ([]byte, error) {
	if err := req.validate(true); err != nil {
		return nil, err
	}
	key := keys.Render("yearly-png", req.Framing.String(), req.Variable.Code(), req.Dataset, nil)
	b, outcome, err := c.PNG.Do(ctx, "yearly-png", key, func(context.Context) ([]byte, error) {
		f, err := frame.DecodeSplit(req.Dataset)
		if err != nil {
			return nil, err
		}
		img, err := c.Gen.YearlyPNG(f, req.Variable, req.Framing)
		if err != nil {
			return nil, fmt.Errorf("%s yearly png: %w", req.Variable, err)
		}
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	c.Logger.DebugContext(ctx, "png export", "outcome", outcome, "bytes", len(b))
	return b, nil
}

func (c *Context) graph(ctx context.Context, e Entry, kind string, gen charts.ChartFunc, req Request) (*Artifact, error) {
	if err := req.validate(true); err != nil {
		return nil, err
	}
	key := keys.Render(string(e), req.Framing.String(), req.Variable.Code(), req.Dataset, req.Meta)
	return c.do(ctx, e, key, func(ctx context.Context) (*Artifact, error) {
		f, err := frame.DecodeSplit(req.Dataset)
		if err != nil {
			return nil, err
		}
		meta, err := frame.DecodeMeta(req.Meta)
		if err != nil {
			return nil, err
		}
		fig, err := gen(f, req.Variable, req.Framing)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Variable, kind, err)
		}
		cfg := c.Gen.Name(Identifier(req.Variable, kind), meta)
		return &Artifact{ID: e, Kind: KindGraph, Config: &cfg, Figure: fig}, nil
	})
}

func (c *Context) do(ctx context.Context, e Entry, key string, fn func(context.Context) (*Artifact, error)) (*Artifact, error) {
	ctx = logger.WithEntry(ctx, string(e))
	start := time.Now()
	a, outcome, err := c.Cache.Do(ctx, string(e), key, fn)
	if err != nil {
		c.Logger.WarnContext(ctx, "render failed", "err", err)
		return nil, err
	}
	c.Logger.DebugContext(ctx, "render",
		"outcome", outcome,
		"duration", time.Since(start),
	)
	return a, nil
}

// Identifier is the chart name suffix, e.g. tdb_yearly_t_rh.
func Identifier(v selector.Variable, kind string) string {
	return v.Prefix() + "_" + kind + "_t_rh"
}
