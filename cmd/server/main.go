package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/FilesManager/internal/config"
	"github.com/arzan03/FilesManager/internal/db"
	"github.com/arzan03/FilesManager/internal/handlers"
	"github.com/arzan03/FilesManager/internal/logger"
	"github.com/arzan03/FilesManager/internal/metrics"
	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/queue"
	"github.com/arzan03/FilesManager/internal/repository"
	"github.com/arzan03/FilesManager/internal/services"
	"github.com/arzan03/FilesManager/internal/session"
	"github.com/arzan03/FilesManager/internal/storage"
	"go.uber.org/zap"
)

const bodyLimit = 64 << 20

// countingPublisher records every publish attempt before handing it on.
type countingPublisher struct {
	next *queue.Queue
}

func (p countingPublisher) Publish(ctx context.Context, fileID, userID string) (models.ThumbnailJob, error) {
	job, err := p.next.Publish(ctx, fileID, userID)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ThumbnailJobsEnqueued.WithLabelValues(result).Inc()
	return job, err
}

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
		log.Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	mongoDB, err := db.ConnectMongoDB(ctx, cfg.MongoConnectionURI(), cfg.DBDatabase)
	if err != nil {
		return err
	}
	defer func() { _ = mongoDB.Close(context.Background()) }()
	log.Infow("connected to MongoDB", "database", cfg.DBDatabase)

	redisClient, err := db.ConnectRedis(ctx, db.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Infow("connected to Redis", "addr", cfg.RedisAddr)

	var sessions session.Store
	switch cfg.SessionBackend {
	case "memory":
		sessions = session.NewMemoryStore(cfg.SessionTTL, cfg.SessionMemoryCapacity)
	default:
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
	}

	content, err := newContentStore(ctx, cfg)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(mongoDB.DB)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	files := repository.NewFileRepository(mongoDB.DB)
	q := queue.New(redisClient, cfg.QueueName)
	jobs := countingPublisher{next: q}

	// The memory session backend is always alive; report the Redis the
	// queue depends on instead.
	h := handlers.NewHandler(
		services.NewAppService(users, files, q, mongoDB),
		services.NewAuthService(users, sessions, log),
		services.NewFileService(files, content, jobs, log, services.FileServiceOptions{
			ListOwnerScoped: cfg.ListOwnerScoped,
		}),
		log,
	)
	app := handlers.NewApp(h, handlers.AppOptions{BodyLimit: bodyLimit})

	errCh := make(chan error, 1)
	go func() {
		log.Infow("starting server", "addr", cfg.ListenAddr(), "storage", cfg.StorageBackend, "sessions", cfg.SessionBackend)
		errCh <- app.Listen(cfg.ListenAddr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func newContentStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "minio" {
		return storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	}
	return storage.NewLocalStore(cfg.FolderPath)
}
