package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mohammed-shakir/trh-dashboard/internal/core/observability"
)

func TestProvider_ExposesRuntimeBuildAndRenderMetrics(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Version: "test", Revision: "r", Branch: "b", BuildDate: "now"}})

	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "smoke"})
	p.Register(g)
	g.Set(42)

	if n := testutil.CollectAndCount(g); n == 0 {
		t.Fatalf("expected at least 1 sample from test_gauge, got %d", n)
	}

	observability.Init(p.Registerer(), true)
	observability.ObserveRenderCache("table-tmp-hum", observability.OutcomeMiss)
	observability.IncSnapshotIngest("applied")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()

	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go_goroutines in payload; got:\n%s", body)
	}
	if !strings.Contains(body, "process_cpu_seconds_total") && !strings.Contains(body, "process_start_time_seconds") {
		t.Fatalf("expected process_* metrics in payload; got:\n%s", body)
	}
	for _, want := range []string{
		`app_build_info{branch="b",build_date="now",revision="r",version="test"} 1`,
		`render_cache_results_total{entry="table-tmp-hum",outcome="miss"}`,
		`snapshot_ingest_total{result="applied"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in payload; got:\n%s", want, body)
		}
	}
}
