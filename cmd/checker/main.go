package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoPolymarket/xterio-checker/internal/config"
	"github.com/GoPolymarket/xterio-checker/internal/handler"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/logger"
	"github.com/GoPolymarket/xterio-checker/internal/proxy"
	"github.com/GoPolymarket/xterio-checker/internal/report"
	"github.com/GoPolymarket/xterio-checker/internal/repository"
	"github.com/GoPolymarket/xterio-checker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Options{})
		logger.LogError(context.Background(), boot.Logger, err, "failed to load config")
		return exitCode(err)
	}

	// 2. Initialize Logger
	logs := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer logs.Close()

	runID := uuid.New().String()
	log := logs.With("run_id", runID)

	// 3. Load Inputs
	wallets, err := repository.LoadWallets(cfg.Files.Wallets, log)
	if err != nil {
		logger.LogError(context.Background(), log, err, "cannot start batch")
		return exitCode(err)
	}
	endpoints, err := repository.LoadProxies(cfg.Files.Proxies, log)
	if err != nil {
		logger.LogError(context.Background(), log, err, "cannot start batch")
		return exitCode(err)
	}
	rotator := proxy.NewRotator(endpoints)

	// 4. Initialize Core Services
	checker := service.NewChecker(cfg, rotator, log)
	pipeline := service.NewPipeline(checker, cfg.Checker.Workers, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Optional status server
	var srv *http.Server
	if cfg.Status.Enabled {
		gin.SetMode(gin.ReleaseMode)
		srv = &http.Server{
			Addr:              cfg.Status.Addr,
			Handler:           handler.NewRouter(handler.NewStatusHandler(runID, pipeline), log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("status server started", "addr", cfg.Status.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("status server failed", "error", err)
			}
		}()
	}

	// 6. Run
	log.Info("batch started",
		"wallets", len(wallets),
		"proxies", rotator.Len(),
		"workers", cfg.Checker.Workers,
	)
	started := time.Now()
	summary := pipeline.RunAll(ctx, wallets)
	if ctx.Err() != nil {
		log.Warn("batch interrupted, writing partial report")
	}

	code := 0
	if err := writeReport(cfg.Files.Result, summary); err != nil {
		logger.LogError(context.Background(), log, err, "failed to write report", "path", cfg.Files.Result)
		code = exitCode(err)
	} else {
		log.Info("report written", "path", cfg.Files.Result)
	}

	log.Info("batch complete",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"total_points", summary.Total,
		"elapsed", time.Since(started).String(),
	)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("status server forced to shutdown", "error", err)
		}
	}
	return code
}

// writeReport treats an unwritable result path like any other bad file setting.
func writeReport(path string, summary service.Summary) error {
	if err := report.WriteFile(path, summary.Results, summary.Total); err != nil {
		return apperrors.NewConfiguration("failed to write report", err)
	}
	return nil
}

// exitCode maps a startup or shutdown error to the process status. Only
// configuration errors end the run with a failure; wallet failures never do.
func exitCode(err error) int {
	if apperrors.IsFatal(err) {
		return 1
	}
	return 0
}
