package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/FilesManager/internal/config"
	"github.com/arzan03/FilesManager/internal/db"
	"github.com/arzan03/FilesManager/internal/logger"
	"github.com/arzan03/FilesManager/internal/queue"
	"github.com/arzan03/FilesManager/internal/repository"
	"github.com/arzan03/FilesManager/internal/storage"
	"github.com/arzan03/FilesManager/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalw("worker failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	mongoDB, err := db.ConnectMongoDB(ctx, cfg.MongoConnectionURI(), cfg.DBDatabase)
	if err != nil {
		return err
	}
	defer func() { _ = mongoDB.Close(context.Background()) }()

	redisClient, err := db.ConnectRedis(ctx, db.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var content storage.Store
	if cfg.StorageBackend == "minio" {
		content, err = storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	} else {
		content, err = storage.NewLocalStore(cfg.FolderPath)
	}
	if err != nil {
		return err
	}

	q := queue.New(redisClient, cfg.QueueName)
	moved, err := q.Requeue(ctx)
	if err != nil {
		return err
	}
	if moved > 0 {
		log.Warnw("requeued abandoned jobs", "queue", q.Name(), "count", moved)
	}

	if cfg.WorkerMetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.WorkerMetricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	files := repository.NewFileRepository(mongoDB.DB)
	w := worker.New(q, files, content, log, cfg.WorkerConcurrency)
	log.Infow("consuming thumbnail jobs", "queue", q.Name(), "concurrency", cfg.WorkerConcurrency)
	return w.Run(ctx)
}
