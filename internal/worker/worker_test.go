package worker

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/queue"
	"github.com/arzan03/FilesManager/internal/repository/repotest"
	"github.com/arzan03/FilesManager/internal/storage"
	"github.com/disintegration/imaging"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	files *repotest.Files
	store *storage.LocalStore
	queue *queue.Queue
	w     *Worker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	q := queue.New(client, "fileQueue")

	files := repotest.NewFiles()
	w := New(q, files, store, zap.NewNop().Sugar(), 2)
	w.reserveTimeout = time.Second
	return &fixture{files: files, store: store, queue: q, w: w}
}

func (f *fixture) uploadImage(t *testing.T, userID string, data []byte) *models.File {
	t.Helper()
	ctx := context.Background()
	path, err := f.store.Store(ctx, data, "photo.png")
	require.NoError(t, err)
	file, err := f.files.Create(ctx, &models.File{
		UserID:    userID,
		Name:      "photo.png",
		Type:      models.FileTypeImage,
		ParentID:  models.RootParentID,
		LocalPath: path,
	})
	require.NoError(t, err)
	return file
}

func TestWorker_ProcessWritesAllSizes(t *testing.T) {
	f := newFixture(t)
	original := pngBytes(t, 800, 600)
	file := f.uploadImage(t, "u1", original)

	err := f.w.Process(context.Background(), models.ThumbnailJob{FileID: file.ID.Hex(), UserID: "u1"})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, size := range storage.Sizes {
		path := storage.DerivativePath(file.LocalPath, size)
		data, err := os.ReadFile(path)
		require.NoError(t, err, "size %d", size)

		img, err := imaging.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
		assert.Equal(t, size*600/800, img.Bounds().Dy())
		assert.Less(t, img.Bounds().Dx(), 800)

		assert.False(t, seen[string(data)], "size %d duplicates another size", size)
		seen[string(data)] = true
	}

	// The original is left untouched.
	data, err := os.ReadFile(file.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestWorker_ProcessNeverUpscales(t *testing.T) {
	f := newFixture(t)
	file := f.uploadImage(t, "u1", pngBytes(t, 300, 150))

	err := f.w.Process(context.Background(), models.ThumbnailJob{FileID: file.ID.Hex(), UserID: "u1"})
	require.NoError(t, err)

	want := map[int]int{500: 300, 250: 250, 100: 100}
	for _, size := range storage.Sizes {
		data, err := os.ReadFile(storage.DerivativePath(file.LocalPath, size))
		require.NoError(t, err, "size %d", size)

		img, err := imaging.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, want[size], img.Bounds().Dx(), "size %d", size)
		assert.LessOrEqual(t, img.Bounds().Dx(), 300, "size %d", size)
		assert.Equal(t, want[size]/2, img.Bounds().Dy(), "size %d", size)
	}
}

func TestWorker_ProcessFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	file := f.uploadImage(t, "u1", pngBytes(t, 64, 64))

	t.Run("missing ids", func(t *testing.T) {
		assert.Error(t, f.w.Process(ctx, models.ThumbnailJob{UserID: "u1"}))
		assert.Error(t, f.w.Process(ctx, models.ThumbnailJob{FileID: file.ID.Hex()}))
	})

	t.Run("record of another user", func(t *testing.T) {
		err := f.w.Process(ctx, models.ThumbnailJob{FileID: file.ID.Hex(), UserID: "u2"})
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("record gone", func(t *testing.T) {
		err := f.w.Process(ctx, models.ThumbnailJob{FileID: "65f0c0ffee0000000000abcd", UserID: "u1"})
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("not an image", func(t *testing.T) {
		bogus := f.uploadImage(t, "u1", []byte("plain text"))
		err := f.w.Process(ctx, models.ThumbnailJob{FileID: bogus.ID.Hex(), UserID: "u1"})
		assert.Error(t, err)
		for _, size := range storage.Sizes {
			ok, _ := f.store.Exists(ctx, storage.DerivativePath(bogus.LocalPath, size))
			assert.False(t, ok)
		}
	})

	t.Run("original removed", func(t *testing.T) {
		gone := f.uploadImage(t, "u1", pngBytes(t, 32, 32))
		require.NoError(t, os.Remove(gone.LocalPath))
		err := f.w.Process(ctx, models.ThumbnailJob{FileID: gone.ID.Hex(), UserID: "u1"})
		assert.ErrorIs(t, err, storage.ErrNotExist)
	})
}

func TestWorker_RunSettlesJobs(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	good := f.uploadImage(t, "u1", pngBytes(t, 640, 480))
	_, err := f.queue.Publish(ctx, good.ID.Hex(), "u1")
	require.NoError(t, err)
	_, err = f.queue.Publish(ctx, "65f0c0ffee0000000000abcd", "u1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- f.w.Run(ctx) }()

	assert.Eventually(t, func() bool {
		pending, processing, failed, err := f.queue.Stats(context.Background())
		return err == nil && pending == 0 && processing == 0 && failed == 1
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}

	for _, size := range storage.Sizes {
		ok, err := f.store.Exists(context.Background(), storage.DerivativePath(good.LocalPath, size))
		require.NoError(t, err)
		assert.True(t, ok, "size %d", size)
	}

	failed, err := f.queue.Failed(context.Background())
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "file not found", failed[0].Error)
}
