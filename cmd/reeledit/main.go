package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alveera224/ReelEdit/config"
	"github.com/alveera224/ReelEdit/internal/adapter/converter/ffmpeg"
	HTTPAdapter "github.com/alveera224/ReelEdit/internal/adapter/http"
	sqlitestore "github.com/alveera224/ReelEdit/internal/adapter/storage/sqlite"
	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting reeledit on port %d, data=%s", cfg.Port, cfg.DataDir)

	for _, dir := range []string{cfg.DataDir, filepath.Join(cfg.DataDir, "uploads"), filepath.Join(cfg.DataDir, "segments")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error.Printf("failed to create %s: %v", dir, err)
			os.Exit(1)
		}
	}

	store, err := sqlitestore.NewStore()
	if err != nil {
		logger.Error.Printf("failed to create store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	jobQueue := sqlitestore.NewJobQueue(store)
	eventBus := service.NewEventBus()

	videoSvc := service.NewVideoService(store, cfg.DataDir)
	orchestrator := service.NewOrchestrator(store, jobQueue)
	runner := service.NewSegmentRunner(ffmpeg.NewProber(), ffmpeg.NewSegmenter(), eventBus, cfg.DataDir)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	workerPool := service.NewWorkerPool(jobQueue, store, runner, eventBus, cfg.Workers)
	workerPool.Start(workerCtx)

	server := HTTPAdapter.NewServer(videoSvc, orchestrator, eventBus, cfg.MaxUploadSizeMB, cfg.CORSOrigins)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     server,
		ReadTimeout: 5 * time.Minute,
		IdleTimeout: 120 * time.Second,
		// No WriteTimeout: SSE streams and long range downloads stay open
		// for as long as the client needs them.
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		// Stop workers (lets in-flight jobs finish their current claim)
		workerCancel()

		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
}
