package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "files_manager", cfg.DBDatabase)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoConnectionURI())
	assert.Equal(t, "/tmp/files_manager", cfg.FolderPath)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "fileQueue", cfg.QueueName)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 100000, cfg.SessionMemoryCapacity)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.False(t, cfg.ListOwnerScoped)
	assert.Equal(t, ":5000", cfg.ListenAddr())
}

func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("DB_HOST", "mongo")
	t.Setenv("DB_PORT", "27018")
	t.Setenv("FOLDER_PATH", "/data/files")
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("SESSION_MEMORY_CAPACITY", "500")
	t.Setenv("FILES_LIST_OWNER_SCOPED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.ListenAddr())
	assert.Equal(t, "mongodb://mongo:27018", cfg.MongoConnectionURI())
	assert.Equal(t, "/data/files", cfg.FolderPath)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, 500, cfg.SessionMemoryCapacity)
	assert.True(t, cfg.ListOwnerScoped)

	t.Setenv("MONGO_URI", "mongodb://user:pw@cluster/files")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://user:pw@cluster/files", cfg.MongoConnectionURI())
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("unknown storage backend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "ftp")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero workers", func(t *testing.T) {
		t.Setenv("WORKER_CONCURRENCY", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := Load()
		assert.Error(t, err)
	})
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
