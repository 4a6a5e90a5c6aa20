package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type SnapshotFeedCfg struct {
	Enabled bool
	Topic   string
	Brokers string
	GroupID string
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr               string
	LogLevel           string
	LogConsole         bool
	LogSampleN         int
	RedisAddr          string
	SchemeFile         string
	RenderCacheTimeout time.Duration
	RenderCacheSize    int
	CacheOpTimeout     time.Duration
	SessionTTL         time.Duration
	SessionMemorySize  int
	SnapshotFeed       SnapshotFeedCfg
	Metrics            MetricsCfg
}

func FromEnv() Config {
	cacheSize := getint("RENDER_CACHE_SIZE", 512)
	if cacheSize <= 0 {
		cacheSize = 512
	}
	timeout := getduration("RENDER_CACHE_TIMEOUT", 10*time.Minute)
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	return Config{
		Addr:               getenv("ADDR", ":8050"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogConsole:         getbool("LOG_CONSOLE", false),
		LogSampleN:         getint("LOG_SAMPLE_N", 0),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		SchemeFile:         strings.TrimSpace(os.Getenv("SCHEME_FILE")),
		RenderCacheTimeout: timeout,
		RenderCacheSize:    cacheSize,
		CacheOpTimeout:     getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		SessionTTL:         getduration("SESSION_TTL", 24*time.Hour),
		SessionMemorySize:  getint("SESSION_MEMORY_SIZE", 256),
		SnapshotFeed: SnapshotFeedCfg{
			Enabled: getbool("SNAPSHOT_FEED_ENABLED", false),
			Topic:   getenv("KAFKA_TOPIC", "trh-snapshots"),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "trh-dashboard"),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", false),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

// splits a comma separated broker list, dropping blanks
func SplitCSV(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
