package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammed-shakir/trh-dashboard/internal/core/observability"
)

func assertHasMetricLine(t *testing.T, body, metric string, wantLabels ...string) {
	t.Helper()
	for ln := range strings.SplitSeq(body, "\n") {
		if !strings.HasPrefix(ln, metric+"{") {
			continue
		}
		ok := true
		for _, s := range wantLabels {
			if !strings.Contains(ln, s) {
				ok = false
				break
			}
		}
		if ok && (len(ln) > 0 && ln[len(ln)-1] >= '0' && ln[len(ln)-1] <= '9') {
			return
		}
	}
	t.Fatalf("expected a %s line with labels %v; got:\n%s", metric, wantLabels, body)
}

func Test_AppMetrics_CustomRegistry_Smoke(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Version: "test"}})
	observability.Init(p.Registerer(), true)

	observability.ObserveRenderCache("daily", observability.OutcomeHitRemote)
	observability.ObserveRender("daily", 0.004)
	observability.ObserveCacheOp("get", nil, 0.002)
	observability.ObserveCacheOp("set", errors.New("boom"), 0.002)
	observability.IncSnapshotIngest("applied")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	mustContain := []string{
		`render_duration_seconds_bucket`,
		`redis_operation_duration_seconds_count`,
		`snapshot_ingest_total{result="applied"} `,
	}
	for _, s := range mustContain {
		if !strings.Contains(body, s) {
			t.Fatalf("expected metrics to contain %q;\n---\n%s", s, body)
		}
	}

	assertHasMetricLine(t, body, "render_cache_results_total",
		`entry="daily"`, `outcome="hit_remote"`)
	assertHasMetricLine(t, body, "cache_op_total", `op="set"`, `result="error"`)
	assertHasMetricLine(t, body, "app_build_info", `version="test"`)
}
