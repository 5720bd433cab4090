package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alberthlima/saas-legal/internal/config"
	"github.com/alberthlima/saas-legal/internal/db"
	"github.com/alberthlima/saas-legal/internal/logger"
	"github.com/alberthlima/saas-legal/internal/notify"
	"github.com/alberthlima/saas-legal/internal/rag"
	"github.com/alberthlima/saas-legal/internal/server"
	"github.com/alberthlima/saas-legal/internal/storage"
)

func main() {

	logger.Init()
	logger.Info("Starting legal services back office")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	store := storage.New(cfg.StorageDir, cfg.PublicBaseURL+"/storage")

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken)
		if err != nil {
			logger.Fatalf("Failed to init Telegram notifier: %v", err)
		}
		notifier = tg
		logger.Info("Telegram notifier initialized")
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, notifications disabled")
	}

	ragClient := rag.New(cfg.RAGBaseURL, cfg.RAGTimeout)

	srv := server.New(database, rdb, cfg, store, notifier, ragClient)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
