package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/queue"
	"github.com/arzan03/FilesManager/internal/repository/repotest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticHealth bool

func (h staticHealth) IsAlive(context.Context) bool { return bool(h) }

func TestAppService_StatusFollowsQueueRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	svc := NewAppService(repotest.NewUsers(), repotest.NewFiles(), queue.New(client, "fileQueue"), staticHealth(true))
	ctx := context.Background()

	assert.Equal(t, Status{Redis: true, DB: true}, svc.Status(ctx))

	mr.Close()
	assert.Equal(t, Status{Redis: false, DB: true}, svc.Status(ctx))
}

func TestAppService_Stats(t *testing.T) {
	users := repotest.NewUsers()
	svc := NewAppService(users, repotest.NewFiles(), staticHealth(true), staticHealth(false))
	ctx := context.Background()

	_, err := users.Create(ctx, &models.User{Email: "alice@test.io", Password: "x"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 1, Files: 0}, stats)
	assert.False(t, svc.Status(ctx).DB)
}
