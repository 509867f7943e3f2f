package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/bucket-list/internal/config"
	"github.com/Dias221467/bucket-list/internal/database"
	"github.com/Dias221467/bucket-list/internal/handlers"
	"github.com/Dias221467/bucket-list/internal/jobs"
	"github.com/Dias221467/bucket-list/internal/repository"
	cron "github.com/Dias221467/bucket-list/internal/scheduler"
	"github.com/Dias221467/bucket-list/internal/services"
	"github.com/Dias221467/bucket-list/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(logger.Options{Level: cfg.LogLevel})
	logger.Log.Info("Logger initialized")

	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	var (
		repo     repository.BlobRepository
		mongoCli *mongo.Client
	)
	switch {
	case cfg.StorageBackend == config.BackendFile:
		fileRepo, err := repository.NewFileBlobRepository(cfg.DataDir)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to open data directory")
		}
		repo = fileRepo
		logger.Log.WithField("dir", cfg.DataDir).Info("Using file storage")
	case cfg.StorageCredentialMissing():
		// The endpoint still serves, reporting the misconfiguration on every call.
		logger.Log.Error("MONGO_URI is missing, document storage is disabled")
	default:
		db, err := database.ConnectDB(ctx, cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Database connection error")
		}
		mongoCli = db.Client()
		repo = repository.NewMongoBlobRepository(db)
	}

	// --- Services ---
	documentService := services.NewDocumentService(repo, cfg.DocumentKey)

	// --- Jobs ---
	if cfg.BackupSchedule != "" && repo != nil {
		snapshotter := jobs.NewDocumentSnapshotter(documentService, cfg.BackupRetention)
		c, err := cron.StartBackupCronJobs(snapshotter, cfg.BackupSchedule)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to start backup cron")
		}
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(documentService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
	if mongoCli != nil {
		if err := mongoCli.Disconnect(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("Failed to disconnect from MongoDB")
		}
	}
}
