// snapshot-loader reads an hourly weather CSV and a metadata JSON file and
// loads them as a dashboard session, either straight into Redis or through
// the snapshot feed topic.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mohammed-shakir/trh-dashboard/internal/cache/redisstore"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/config"
	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
	"github.com/mohammed-shakir/trh-dashboard/internal/ingest"
	"github.com/mohammed-shakir/trh-dashboard/internal/logger"
	"github.com/mohammed-shakir/trh-dashboard/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	csvPath := flag.String("csv", "", "CSV file with timestamp,DBT,RH columns")
	metaPath := flag.String("meta", "", "metadata JSON file (optional)")
	sessionID := flag.String("session", "", "session id to load into")
	seq := flag.Uint64("seq", uint64(time.Now().Unix()), "snapshot sequence number")
	mode := flag.String("mode", "redis", "redis | kafka")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("load .env", "err", err)
	}
	cfg := config.FromEnv()
	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Service:   "trh-dashboard",
		Component: "snapshot-loader",
	}, os.Stderr)
	log := logger.NewSlog(&zl)

	if *csvPath == "" || *sessionID == "" {
		log.Error("both -csv and -session are required")
		flag.Usage()
		return 2
	}

	ev, err := buildEvent(*csvPath, *metaPath, *sessionID, *seq)
	if err != nil {
		log.Error("build snapshot", "err", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch *mode {
	case "redis":
		if cfg.RedisAddr == "" {
			log.Error("REDIS_ADDR is required in redis mode")
			return 2
		}
		rc, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis connect", "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		if err := session.NewRedisStore(rc, cfg.SessionTTL).Put(ctx, ev.Session, ev.Snapshot()); err != nil {
			log.Error("store session", "err", err)
			return 1
		}
		log.Info("session stored", "session", ev.Session, "seq", ev.Seq, "df_bytes", len(ev.DF))
	case "kafka":
		pub, err := ingest.NewPublisher(config.SplitCSV(cfg.SnapshotFeed.Brokers), cfg.SnapshotFeed.Topic)
		if err != nil {
			log.Error("kafka producer", "err", err)
			return 1
		}
		defer func() { _ = pub.Close() }()
		part, off, err := pub.Publish(ev)
		if err != nil {
			log.Error("publish snapshot", "err", err)
			return 1
		}
		log.Info("snapshot published", "session", ev.Session, "seq", ev.Seq, "partition", part, "offset", off)
	default:
		log.Error("unknown mode", "mode", *mode)
		return 2
	}
	return 0
}

func buildEvent(csvPath, metaPath, id string, seq uint64) (ingest.Event, error) {
	fh, err := os.Open(csvPath)
	if err != nil {
		return ingest.Event{}, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = fh.Close() }()

	f, err := frame.ReadCSV(fh)
	if err != nil {
		return ingest.Event{}, err
	}
	df, err := frame.EncodeSplit(f)
	if err != nil {
		return ingest.Event{}, err
	}

	var meta []byte
	if metaPath != "" {
		if meta, err = os.ReadFile(metaPath); err != nil {
			return ingest.Event{}, fmt.Errorf("read meta: %w", err)
		}
		if _, err := frame.DecodeMeta(meta); err != nil {
			return ingest.Event{}, err
		}
	}

	ev := ingest.Event{Version: 1, Session: id, Seq: seq, TS: time.Now().UTC(), DF: df, Meta: meta}
	return ev, ev.Validate()
}
