package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mohammed-shakir/trh-dashboard/internal/cache"
	"github.com/mohammed-shakir/trh-dashboard/internal/cache/memo"
	"github.com/mohammed-shakir/trh-dashboard/internal/cache/redisstore"
	"github.com/mohammed-shakir/trh-dashboard/internal/charts"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/config"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/health"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/observability"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/router"
	"github.com/mohammed-shakir/trh-dashboard/internal/core/server"
	"github.com/mohammed-shakir/trh-dashboard/internal/ingest/kafkaconsumer"
	"github.com/mohammed-shakir/trh-dashboard/internal/logger"
	"github.com/mohammed-shakir/trh-dashboard/internal/metrics"
	"github.com/mohammed-shakir/trh-dashboard/internal/render"
	"github.com/mohammed-shakir/trh-dashboard/internal/scheme"
	"github.com/mohammed-shakir/trh-dashboard/internal/session"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("load .env", "err", err)
	}
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "trh-dashboard",
		Component: "dashboard",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)
	slog.SetDefault(appLog)

	appLog.Info("starting dashboard",
		"addr", cfg.Addr,
		"version", Version,
		"redis", cfg.RedisAddr != "",
		"snapshot_feed", cfg.SnapshotFeed.Enabled)

	sc := scheme.Default()
	if cfg.SchemeFile != "" {
		s, err := scheme.LoadFile(cfg.SchemeFile)
		if err != nil {
			appLog.Error("load scheme", "file", cfg.SchemeFile, "err", err)
			return 1
		}
		sc = s
	}

	build := metrics.BuildInfo{
		Version:   os.Getenv("BUILD_VERSION"),
		Revision:  os.Getenv("BUILD_REVISION"),
		Branch:    os.Getenv("BUILD_BRANCH"),
		BuildDate: os.Getenv("BUILD_DATE"),
	}
	if build.Version == "" {
		build.Version = Version
	}
	prov := metrics.Init(metrics.Config{Addr: cfg.Metrics.Addr, Path: cfg.Metrics.Path, Build: build})
	observability.Init(prov.Registerer(), true)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		remote   cache.Store
		sessions session.Store
	)
	ready := map[string]health.Pinger{}
	if cfg.RedisAddr != "" {
		rc, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis connect", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		remote = rc
		sessions = session.NewRedisStore(rc, cfg.SessionTTL)
		ready["redis"] = rc
	} else {
		sessions = session.NewMemoryStore(cfg.SessionMemorySize, cfg.SessionTTL)
	}
	ready["session_store"] = sessions

	rc, err := render.NewContext(charts.Default(sc), memo.Options{
		Size:      cfg.RenderCacheSize,
		TTL:       cfg.RenderCacheTimeout,
		OpTimeout: cfg.CacheOpTimeout,
		Remote:    remote,
		Logger:    appLog,
	})
	if err != nil {
		appLog.Error("render context", "err", err)
		return 1
	}

	h := server.Routes(appLog, router.Deps{
		Render:   rc,
		Sessions: sessions,
		Scheme:   sc,
		Title:    "Temperature and humidity",
	}, ready, prov.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, cfg, appLog, h) })
	if cfg.Metrics.Enabled {
		g.Go(func() error { return prov.Serve(gctx, appLog) })
	}
	if cfg.SnapshotFeed.Enabled {
		consumer := kafkaconsumer.New(kafkaconsumer.FromConfig(cfg.SnapshotFeed), appLog, &zl, sessions)
		g.Go(func() error { return consumer.Start(gctx) })
	}

	if err := g.Wait(); err != nil {
		appLog.Error("dashboard exited with error", "err", err)
		return 1
	}
	appLog.Info("dashboard stopped")
	return 0
}
