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

	h "downtrack/internal/api/http"
	cfgpkg "downtrack/internal/config"
	"downtrack/internal/domain"
	"downtrack/internal/metrics"
	"downtrack/internal/poller"
	"downtrack/internal/remote"
	svc "downtrack/internal/service"
	"downtrack/internal/store"
)

func main() {
	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully", "api_base", cfg.APIBase)

	logger := slog.Default()

	taskStore := store.New(logger)
	client := remote.NewClient(cfg, logger)

	// The save hand-off: announce the finished file and where the host
	// page can fetch it. Fetching it is not the tracker's job.
	onFileReady := func(task domain.Task) {
		logger.Info("file ready",
			"task_id", task.ID,
			"title", task.Title,
			"filename", task.Filename,
			"url", client.FileURL(task.Filename),
		)
	}

	taskPoller := poller.New(taskStore, client, cfg, onFileReady, logger)
	tracker := svc.NewTracker(taskStore, client, taskPoller, cfg, logger)

	metrics.RegisterActiveTasks(taskStore.Len)

	router := h.NewRouter(tracker, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}

	taskPoller.Close()
	slog.Info("poll loops drained")
}
