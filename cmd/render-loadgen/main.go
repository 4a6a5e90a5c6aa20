// render-loadgen replays a skewed mix of render requests against a running
// dashboard session and reports latency percentiles, to size the render
// cache timeout and capacity.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"gonum.org/v1/gonum/stat"

	"github.com/mohammed-shakir/trh-dashboard/internal/core/httpclient"
	"github.com/mohammed-shakir/trh-dashboard/internal/render"
)

type Config struct {
	BaseURL        string
	Session        string
	Concurrency    int
	Duration       time.Duration
	ZipfS          float64
	ZipfV          float64
	OutputPrefix   string
	RequestTimeout time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "target", "http://localhost:8050", "Dashboard base URL")
	flag.StringVar(&cfg.Session, "session", "", "Session id loaded with snapshot-loader")
	flag.IntVar(&cfg.Concurrency, "concurrency", 16, "Concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "Test duration")
	flag.Float64Var(&cfg.ZipfS, "zipf-s", 1.3, "Zipf parameter s (>1)")
	flag.Float64Var(&cfg.ZipfV, "zipf-v", 1.0, "Zipf parameter v (>=1)")
	flag.StringVar(&cfg.OutputPrefix, "out", "results/render", "Output file prefix (JSON/CSV)")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()
	return cfg
}

// one render call; the pool is every entry x variable x framing
type combo struct {
	Entry    render.Entry
	Variable string
	Framing  string
}

func (c combo) String() string { return fmt.Sprintf("%s/%s/%s", c.Entry, c.Variable, c.Framing) }

// makeCombos shuffles the pool so the hot head of the Zipf draw is not
// always the yearly chart.
func makeCombos(r *rand.Rand) []combo {
	var out []combo
	for _, e := range render.Entries {
		for _, v := range []string{"DBT", "RH"} {
			for _, f := range []string{"global", "local"} {
				out = append(out, combo{e, v, f})
			}
		}
	}
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

type sample struct {
	Timestamp time.Time
	Latency   time.Duration
	Status    int
	ErrorMsg  string
	Combo     string
}

type summary struct {
	StartTime     time.Time `json:"start"`
	EndTime       time.Time `json:"end"`
	DurationSec   float64   `json:"duration_sec"`
	TotalRequests int64     `json:"total"`
	SuccessCount  int64     `json:"success"`
	ErrorCount    int64     `json:"errors"`
	ThroughputRPS float64   `json:"throughput_rps"`
	P50Ms         float64   `json:"p50_ms"`
	P95Ms         float64   `json:"p95_ms"`
	P99Ms         float64   `json:"p99_ms"`
	Concurrency   int       `json:"concurrency"`
	ZipfS         float64   `json:"zipf_s"`
	ZipfV         float64   `json:"zipf_v"`
	TargetURL     string    `json:"target"`
	Session       string    `json:"session"`
}

type aggregatedResult struct {
	total   int64
	success int64
	errors  int64
	latMs   []float64
}

func main() {
	cfg := loadConfig()
	if cfg.Session == "" {
		log.Fatalf("-session is required")
	}
	if cfg.ZipfS <= 1 || cfg.ZipfV < 1 || cfg.Concurrency <= 0 {
		log.Fatalf("need zipf-s > 1, zipf-v >= 1 and concurrency > 0")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPrefix), 0o750); err != nil {
		log.Fatalf("mkdir results: %v", err)
	}
	prefix := fmt.Sprintf("%s_%s", cfg.OutputPrefix, time.Now().UTC().Format("20060102_150405Z"))

	seed := time.Now().UnixNano()
	combos := makeCombos(rand.New(rand.NewSource(seed)))
	imax := uint64(len(combos)) - 1

	client := httpclient.NewOutbound(cfg.RequestTimeout, 2*cfg.Concurrency)
	base := strings.TrimRight(cfg.BaseURL, "/")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	csvPath := prefix + "_samples.csv"
	jsonPath := prefix + "_summary.json"
	csvFile, err := os.Create(filepath.Clean(csvPath))
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer func() { _ = csvFile.Close() }()
	csvWriter := csv.NewWriter(csvFile)

	samplesChan := make(chan sample, 4096)
	resultsChan := make(chan aggregatedResult, 1)
	go func() {
		_ = csvWriter.Write([]string{"timestamp", "latency_ms", "status", "error", "combo"})
		var res aggregatedResult
		for s := range samplesChan {
			res.total++
			ms := float64(s.Latency.Microseconds()) / 1000.0
			if s.ErrorMsg == "" {
				res.success++
				res.latMs = append(res.latMs, ms)
			} else {
				res.errors++
			}
			_ = csvWriter.Write([]string{
				s.Timestamp.UTC().Format(time.RFC3339Nano),
				fmt.Sprintf("%.3f", ms),
				fmt.Sprintf("%d", s.Status),
				s.ErrorMsg,
				s.Combo,
			})
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			log.Printf("csv flush error: %v", err)
		}
		resultsChan <- res
	}()

	startTime := time.Now()
	log.Printf("loadgen start target=%s session=%s dur=%s conc=%d zipf(s=%.2f,v=%.2f) combos=%d",
		base, cfg.Session, cfg.Duration, cfg.Concurrency, cfg.ZipfS, cfg.ZipfV, len(combos))

	var wg sync.WaitGroup
	for id := range cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			zipf := rand.NewZipf(rand.New(rand.NewSource(seed+int64(id)+1)), cfg.ZipfS, cfg.ZipfV, imax)
			for ctx.Err() == nil {
				c := combos[zipf.Uint64()]
				s := call(ctx, client, base, cfg.Session, c)
				select {
				case samplesChan <- s:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		<-ctx.Done()
		wg.Wait()
		close(samplesChan)
	}()

	agg := <-resultsChan
	endTime := time.Now()
	elapsed := endTime.Sub(startTime).Seconds()

	sort.Float64s(agg.latMs)
	runSummary := summary{
		StartTime:     startTime.UTC(),
		EndTime:       endTime.UTC(),
		DurationSec:   elapsed,
		TotalRequests: agg.total,
		SuccessCount:  agg.success,
		ErrorCount:    agg.errors,
		ThroughputRPS: float64(agg.total) / elapsed,
		P50Ms:         percentile(agg.latMs, 0.50),
		P95Ms:         percentile(agg.latMs, 0.95),
		P99Ms:         percentile(agg.latMs, 0.99),
		Concurrency:   cfg.Concurrency,
		ZipfS:         cfg.ZipfS,
		ZipfV:         cfg.ZipfV,
		TargetURL:     base,
		Session:       cfg.Session,
	}

	if b, err := sonic.ConfigStd.MarshalIndent(runSummary, "", "  "); err == nil {
		if err := os.WriteFile(filepath.Clean(jsonPath), b, 0o600); err != nil {
			log.Printf("write summary: %v", err)
		}
	}

	log.Printf("done: total=%d succ=%d err=%d thr=%.2f rps p50=%.1fms p95=%.1fms p99=%.1fms",
		agg.total, agg.success, agg.errors, runSummary.ThroughputRPS,
		runSummary.P50Ms, runSummary.P95Ms, runSummary.P99Ms)
	log.Printf("wrote %s and %s", jsonPath, csvPath)
}

func call(ctx context.Context, client *http.Client, base, session string, c combo) sample {
	body := fmt.Sprintf(`{"global_local":%q,"dropdown":%q,"session":%q}`, c.Framing, c.Variable, session)
	start := time.Now()
	s := sample{Timestamp: start, Combo: c.String()}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/render/"+string(c.Entry), strings.NewReader(body))
	if err != nil {
		s.ErrorMsg = err.Error()
		return s
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	s.Latency = time.Since(start)
	if err != nil {
		s.ErrorMsg = err.Error()
		return s
	}
	s.Status = resp.StatusCode
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.ErrorMsg = fmt.Sprintf("status=%d", resp.StatusCode)
	}
	return s
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}
