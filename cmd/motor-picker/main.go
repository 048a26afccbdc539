// cmd/motor-picker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"motor-picker/internal/api"
	"motor-picker/internal/bootstrap"
	"motor-picker/internal/common/camunda"
	"motor-picker/internal/common/config"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/common/observability"

	calcreq "motor-picker/internal/workers/motors/calculate-requirements"
	findmotors "motor-picker/internal/workers/motors/find-suitable-motors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting motor-picker",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("catalogSource", cfg.Catalog.Source),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Build(ctx, cfg, bootstrap.DefaultRetry, log)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}
	defer deps.Close()

	if deps.Indexer != nil {
		indexCatalog(ctx, deps, zapLog)
	}

	// --- Zeebe workers ---
	var (
		zeebe   *camunda.Client
		workers *camunda.Manager
	)
	if cfg.Camunda.Enabled {
		err = bootstrap.RetryWithBackoff(ctx, func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, cfg.Camunda)
			return err
		}, bootstrap.DefaultRetry.Attempts, bootstrap.DefaultRetry.InitialDelay, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		deps.Checks["zeebe"] = zeebe
		workers = camunda.NewManager(zeebe.Zeebe(), log)

		calcCfg := config.GetWorkerConfig(cfg, calcreq.TaskType)
		workers.Register(calcreq.TaskType, calcCfg, calcreq.NewHandler(
			&calcreq.Config{Timeout: time.Duration(calcCfg.Timeout) * time.Millisecond},
			deps.Validator, log,
		))

		findCfg := config.GetWorkerConfig(cfg, findmotors.TaskType)
		workers.Register(findmotors.TaskType, findCfg, findmotors.NewHandler(
			&findmotors.Config{Timeout: time.Duration(findCfg.Timeout) * time.Millisecond},
			deps.Matcher, deps.Validator, log,
		))
		zapLog.Info("workers registered", zap.Strings("taskTypes", workers.TaskTypes()))
	}

	// --- HTTP API ---
	srv := api.NewServer(api.Options{
		Config:        cfg.Server,
		Matcher:       deps.Matcher,
		Searcher:      deps.Searcher,
		Validator:     deps.Validator,
		Observability: obs,
		Checks:        deps.Checks,
		Logger:        log,
	}).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("shutdown signal received")
	case err := <-errCh:
		zapLog.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}

	if workers != nil {
		workers.Close()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("motor-picker stopped")
}

// indexCatalog pushes the loaded catalog into the search index. Search is
// optional, so failures are logged and startup continues.
func indexCatalog(ctx context.Context, deps *bootstrap.Deps, zapLog *zap.Logger) {
	if err := deps.Indexer.EnsureIndex(ctx); err != nil {
		zapLog.Warn("search index unavailable", zap.Error(err))
		return
	}
	n, err := deps.Indexer.Index(ctx, deps.Catalog)
	if err != nil {
		zapLog.Warn("catalog indexing failed", zap.Error(err))
		return
	}
	zapLog.Info("catalog indexed", zap.Int("documents", n))
}
