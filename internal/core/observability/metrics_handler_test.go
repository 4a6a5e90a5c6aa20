package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsHandler_Smoke(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg, true)
	Init(reg, true) // second registration is a no-op

	ObserveHTTP("POST", "/api/render/{entry}", 200, 0.001)
	ObserveRenderCache("yearly-chart", OutcomeMiss)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"http_requests_total", `render_cache_results_total{entry="yearly-chart",outcome="miss"}`} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics payload missing %q; got:\n%s", want, body)
		}
	}
}

func TestRenderCacheCounter_Increments(t *testing.T) {
	c := RenderCacheCounter("heatmap", OutcomeHitLocal)
	before := testutil.ToFloat64(c)
	ObserveRenderCache("heatmap", OutcomeHitLocal)
	ObserveRenderCache("heatmap", OutcomeHitLocal)
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Fatalf("delta=%v want 2", got)
	}
}
