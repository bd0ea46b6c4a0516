package services

import (
	"context"
	"fmt"

	"github.com/arzan03/FilesManager/internal/repository"
)

// HealthChecker is implemented by every backing client that can report
// whether it is usable right now.
type HealthChecker interface {
	IsAlive(ctx context.Context) bool
}

type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// AppService reports on the health and size of the deployment.
type AppService struct {
	users repository.UserRepository
	files repository.FileRepository
	cache HealthChecker
	db    HealthChecker
}

func NewAppService(users repository.UserRepository, files repository.FileRepository, cache, db HealthChecker) *AppService {
	return &AppService{users: users, files: files, cache: cache, db: db}
}

func (s *AppService) Status(ctx context.Context) Status {
	return Status{
		Redis: s.cache.IsAlive(ctx),
		DB:    s.db.IsAlive(ctx),
	}
}

func (s *AppService) Stats(ctx context.Context) (Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	files, err := s.files.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count files: %w", err)
	}
	return Stats{Users: users, Files: files}, nil
}
