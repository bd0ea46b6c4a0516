package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	Port int `env:"PORT" envDefault:"5000" validate:"min=1,max=65535"`

	// MongoDB. MongoURI wins over host/port when set.
	MongoURI   string `env:"MONGO_URI"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"27017" validate:"min=1,max=65535"`
	DBDatabase string `env:"DB_DATABASE" envDefault:"files_manager" validate:"required"`

	// Redis backs sessions and the thumbnail queue.
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379" validate:"required"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"min=0"`

	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"redis" validate:"oneof=redis memory"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h" validate:"gt=0"`

	// Live sessions kept by the memory backend before the oldest is evicted.
	SessionMemoryCapacity int `env:"SESSION_MEMORY_CAPACITY" envDefault:"100000" validate:"min=1"`

	// Content storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local" validate:"oneof=local minio"`
	FolderPath     string `env:"FOLDER_PATH" envDefault:"/tmp/files_manager" validate:"required"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"files-manager"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Thumbnail pipeline
	QueueName         string `env:"QUEUE_NAME" envDefault:"fileQueue" validate:"required"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" envDefault:"1" validate:"min=1,max=64"`
	WorkerMetricsAddr string `env:"WORKER_METRICS_ADDR" envDefault:":9101"`

	// Restricts GET /files to the requester's own records.
	ListOwnerScoped bool `env:"FILES_LIST_OWNER_SCOPED" envDefault:"false"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

var validate = validator.New()

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config: %s failed on '%s' (value: %v)", e.Field(), e.Tag(), e.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	if cfg.StorageBackend == "minio" && cfg.MinioBucket == "" {
		return fmt.Errorf("config: MINIO_BUCKET is required for the minio storage backend")
	}
	return nil
}

// MongoConnectionURI returns MONGO_URI or one built from DB_HOST and DB_PORT.
func (c *Config) MongoConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return fmt.Sprintf("mongodb://%s:%d", c.DBHost, c.DBPort)
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
