// Package router holds the HTTP handlers of the dashboard API.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/trh-dashboard/internal/charts"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/observability"
	"github.com/mohammed-shakir/trh-dashboard/internal/events"
	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
	"github.com/mohammed-shakir/trh-dashboard/internal/layout"
	mylog "github.com/mohammed-shakir/trh-dashboard/internal/logger"
	"github.com/mohammed-shakir/trh-dashboard/internal/render"
	"github.com/mohammed-shakir/trh-dashboard/internal/scheme"
	"github.com/mohammed-shakir/trh-dashboard/internal/selector"
	"github.com/mohammed-shakir/trh-dashboard/internal/session"
)

var errBadRequest = errors.New("bad request")

// Renderer is satisfied by *render.Context.
type Renderer interface {
	events.Renderer
	ExportYearlyPNG(ctx context.Context, req render.Request) ([]byte, error)
}

type Deps struct {
	Render   Renderer
	Sessions session.Store
	Scheme   *scheme.Scheme
	Title    string
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// observed wraps h with the HTTP metrics of route.
func observed(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

// Body is the JSON body of the render and update routes. Either df (with an
// optional meta) or session must be given; df and meta may be inline JSON
// or a JSON string holding the serialization.
type Body struct {
	GlobalLocal string          `json:"global_local"`
	Dropdown    string          `json:"dropdown"`
	DF          json.RawMessage `json:"df,omitempty"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	Session     string          `json:"session,omitempty"`
	Changed     string          `json:"changed,omitempty"`
}

func decodeBody(r *http.Request, v any) error {
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: decode body: %w", errBadRequest, err)
	}
	return nil
}

// ParseRequest resolves selector values and snapshots into a render request.
func ParseRequest(ctx context.Context, b Body, sessions session.Store) (render.Request, error) {
	v, err := selector.ParseVariable(b.Dropdown)
	if err != nil {
		return render.Request{}, err
	}
	fr, err := selector.ParseFraming(b.GlobalLocal)
	if err != nil {
		return render.Request{}, err
	}
	req := render.Request{Framing: fr, Variable: v}

	switch {
	case len(b.DF) > 0 && string(b.DF) != "null":
		req.Dataset, req.Meta = []byte(b.DF), []byte(b.Meta)
	case strings.TrimSpace(b.Session) != "":
		if sessions == nil {
			return render.Request{}, fmt.Errorf("%w: sessions are not enabled", errBadRequest)
		}
		snap, err := sessions.Get(ctx, strings.TrimSpace(b.Session))
		if err != nil {
			return render.Request{}, err
		}
		req.Dataset, req.Meta = snap.Dataset, snap.Meta
	default:
		return render.Request{}, fmt.Errorf("%w: df or session is required", errBadRequest)
	}
	return req, nil
}

func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, selector.ErrUnknownVariable),
		errors.Is(err, selector.ErrUnknownFraming),
		errors.Is(err, frame.ErrMalformed),
		errors.Is(err, frame.ErrNoColumn),
		errors.Is(err, render.ErrUnknownEntry),
		errors.Is(err, events.ErrUnknownInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func fail(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error: "+err.Error(), code)
		return
	}
	logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "code", code, "err", err)
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

// HandleRender serves POST /api/render/{entry}.
func HandleRender(logger *slog.Logger, d Deps) http.HandlerFunc {
	return observed("/api/render/{entry}", func(w http.ResponseWriter, r *http.Request) {
		e, err := render.ParseEntry(chi.URLParam(r, "entry"))
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		var b Body
		if err := decodeBody(r, &b); err != nil {
			fail(logger, w, r, err)
			return
		}
		ctx := mylog.WithSession(r.Context(), b.Session)
		req, err := ParseRequest(ctx, b, d.Sessions)
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		a, err := d.Render.Render(ctx, e, req)
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	})
}

// HandleUpdate serves POST /api/update: re-renders every entry point the
// changed input affects.
func HandleUpdate(logger *slog.Logger, d Deps) http.HandlerFunc {
	dispatch := events.NewDispatcher(d.Render)
	return observed("/api/update", func(w http.ResponseWriter, r *http.Request) {
		var b Body
		if err := decodeBody(r, &b); err != nil {
			fail(logger, w, r, err)
			return
		}
		in := events.Input(strings.TrimSpace(b.Changed))
		if _, err := events.Affected(in); err != nil {
			fail(logger, w, r, err)
			return
		}
		ctx := mylog.WithSession(r.Context(), b.Session)
		req, err := ParseRequest(ctx, b, d.Sessions)
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		arts, err := dispatch.Update(ctx, in, req)
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"artifacts": arts})
	})
}

// HandleExportYearly serves GET /api/export/yearly.png.
func HandleExportYearly(logger *slog.Logger, d Deps) http.HandlerFunc {
	return observed("/api/export/yearly.png", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		b := Body{
			GlobalLocal: q.Get("global_local"),
			Dropdown:    q.Get("dropdown"),
			Session:     q.Get("session"),
		}
		if strings.TrimSpace(b.Session) == "" {
			fail(logger, w, r, fmt.Errorf("%w: session is required", errBadRequest))
			return
		}
		req, err := ParseRequest(r.Context(), b, d.Sessions)
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		img, err := d.Render.ExportYearlyPNG(r.Context(), req)
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		name := charts.ChartName(render.Identifier(req.Variable, "yearly"), mustMeta(req.Meta)).ToImage.Filename
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, name+".png"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
	})
}

func mustMeta(raw []byte) frame.Meta {
	m, err := frame.DecodeMeta(raw)
	if err != nil {
		return frame.Meta{}
	}
	return m
}

type putSession struct {
	DF      json.RawMessage `json:"df"`
	Meta    json.RawMessage `json:"meta,omitempty"`
	Version uint64          `json:"version,omitempty"`
}

// HandlePutSession serves PUT /api/sessions/{id}. Snapshots are decoded
// once so malformed uploads are rejected before they are stored.
func HandlePutSession(logger *slog.Logger, d Deps) http.HandlerFunc {
	return observed("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			fail(logger, w, r, fmt.Errorf("%w: session id is required", errBadRequest))
			return
		}
		var b putSession
		if err := decodeBody(r, &b); err != nil {
			fail(logger, w, r, err)
			return
		}
		if _, err := frame.DecodeSplit(b.DF); err != nil {
			fail(logger, w, r, err)
			return
		}
		if _, err := frame.DecodeMeta(b.Meta); err != nil {
			fail(logger, w, r, err)
			return
		}
		snap := session.Snapshot{Dataset: b.DF, Meta: b.Meta, Version: b.Version, UpdatedAt: time.Now().UTC()}
		if err := d.Sessions.Put(r.Context(), id, snap); err != nil {
			fail(logger, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// HandleGetMeta serves GET /api/sessions/{id}/meta.
func HandleGetMeta(logger *slog.Logger, d Deps) http.HandlerFunc {
	return observed("/api/sessions/{id}/meta", func(w http.ResponseWriter, r *http.Request) {
		raw, err := d.Sessions.GetMeta(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		doc, err := frame.Unwrap(raw)
		if err != nil {
			fail(logger, w, r, err)
			return
		}
		if len(doc) == 0 {
			doc = []byte("{}")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	})
}

// HandleLayout serves GET /api/layout.
func HandleLayout(d Deps) http.HandlerFunc {
	tree := layout.Build(d.Scheme)
	return observed("/api/layout", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tree)
	})
}

// HandleIndex serves the HTML shell.
func HandleIndex(logger *slog.Logger, d Deps) http.HandlerFunc {
	tree := layout.Build(d.Scheme)
	return observed("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := layout.WriteHTML(w, d.Title, tree); err != nil {
			logger.ErrorContext(r.Context(), "write index", "err", err)
		}
	})
}
