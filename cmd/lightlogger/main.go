package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/lightlogger/internal/adapter/eventsink"
	cfhttp "github.com/Strob0t/lightlogger/internal/adapter/http"
	cfnats "github.com/Strob0t/lightlogger/internal/adapter/nats"
	"github.com/Strob0t/lightlogger/internal/adapter/natskv"
	cfotel "github.com/Strob0t/lightlogger/internal/adapter/otel"
	"github.com/Strob0t/lightlogger/internal/adapter/postgres"
	"github.com/Strob0t/lightlogger/internal/adapter/ristretto"
	"github.com/Strob0t/lightlogger/internal/adapter/tiered"
	"github.com/Strob0t/lightlogger/internal/config"
	"github.com/Strob0t/lightlogger/internal/logger"
	"github.com/Strob0t/lightlogger/internal/middleware"
	"github.com/Strob0t/lightlogger/internal/port/cache"
	sinkport "github.com/Strob0t/lightlogger/internal/port/eventsink"
	"github.com/Strob0t/lightlogger/internal/resilience"
	"github.com/Strob0t/lightlogger/internal/service"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionPurgeInterval = 10 * time.Minute
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(flags); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(flags config.CLIFlags) error {
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer closeLog.Close()

	slog.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Server.Port,
		"workers", cfg.Server.Workers,
		"log_level", cfg.Logging.Level,
		"nats", cfg.NATS.URL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---

	shutdownOtel, err := cfotel.Setup(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOtel(sctx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := cfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	store := postgres.NewStore(pool)

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer l1.Close()
	var projectCache cache.Cache = l1

	var sink sinkport.Sink = eventsink.NewLogSink(slog.Default())
	var queue *cfnats.Queue
	if cfg.NATS.URL != "" {
		queue, err = cfnats.Connect(ctx, cfg.NATS)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()

		kv, err := natskv.Open(ctx, queue.JetStream(), cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
		if err != nil {
			slog.Warn("project cache L2 unavailable, using L1 only", "error", err)
		} else {
			projectCache = tiered.New(l1, kv, cfg.Cache.ProjectTTL)
		}

		breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
		breaker.OnStateChange(func(from, to resilience.State) {
			slog.Warn("event sink breaker changed state", "from", from.String(), "to", to.String())
		})
		sink = eventsink.NewQueueSink(queue, cfg.NATS.SubjectPrefix, breaker)
	}

	// --- Services ---

	sessions := service.NewSessionService(store, cfg.Auth.SessionLifetime)
	authSvc := service.NewAuthService(store, sessions, &cfg.Auth)
	authSvc.SetMetrics(metrics)
	projectSvc := service.NewProjectService(store, projectCache, cfg.Cache.ProjectTTL)
	projectSvc.SetMetrics(metrics)
	ingestSvc := service.NewIngestService(sink)
	ingestSvc.SetMetrics(metrics)

	// --- HTTP ---

	handlers := &cfhttp.Handlers{
		Auth:      authSvc,
		Projects:  projectSvc,
		Ingest:    ingestSvc,
		DB:        store,
		BodyLimit: cfg.Server.BodyLimit,
	}
	if queue != nil {
		handlers.Queue = queue
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	srv := cfhttp.NewServer(":"+cfg.Server.Port,
		cfhttp.NewServerHandler(cfg.Server, cfg.OTEL.ServiceName, handlers, limiter))

	g, gctx := errgroup.WithContext(ctx)
	limiter.StartCleanup(gctx, cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(sessionPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := sessions.PurgeExpired(gctx); err != nil && gctx.Err() == nil {
					slog.Warn("session purge failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		if queue != nil {
			if derr := queue.Drain(); derr != nil {
				slog.Warn("nats drain failed", "error", derr)
			}
		}
		return err
	})

	return g.Wait()
}
