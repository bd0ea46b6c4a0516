// Package worker consumes thumbnail jobs and writes the resized copies of
// each uploaded image next to the original.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/FilesManager/internal/metrics"
	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/queue"
	"github.com/arzan03/FilesManager/internal/repository"
	"github.com/arzan03/FilesManager/internal/storage"
	"github.com/arzan03/FilesManager/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrFileNotFound = errors.New("file not found")

const defaultReserveTimeout = 5 * time.Second

// JobSource is the consuming side of the thumbnail queue.
type JobSource interface {
	Reserve(ctx context.Context, timeout time.Duration) (*queue.Delivery, error)
	Ack(ctx context.Context, d *queue.Delivery) error
	Fail(ctx context.Context, d *queue.Delivery, cause error) error
}

// FileLoader looks up the record a job refers to.
type FileLoader interface {
	GetByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error)
}

type Worker struct {
	jobs        JobSource
	files       FileLoader
	content     storage.Store
	log         *zap.SugaredLogger
	concurrency int

	reserveTimeout time.Duration
}

func New(jobs JobSource, files FileLoader, content storage.Store, log *zap.SugaredLogger, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		jobs:           jobs,
		files:          files,
		content:        content,
		log:            log,
		concurrency:    concurrency,
		reserveTimeout: defaultReserveTimeout,
	}
}

// Run reserves and processes jobs until ctx is cancelled. Jobs already
// handed to the pool run to completion before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	pool := utils.NewWorkerPool(w.concurrency)
	defer func() {
		pool.Close()
		pool.Wait()
	}()

	w.log.Infow("worker started", "concurrency", w.concurrency)
	for {
		if ctx.Err() != nil {
			w.log.Infow("worker stopping")
			return nil
		}

		d, err := w.jobs.Reserve(ctx, w.reserveTimeout)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Errorw("reserve job", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		pool.AddTask(func() { w.handle(context.WithoutCancel(ctx), d) })
	}
}

// handle processes one delivery and settles it in the queue.
func (w *Worker) handle(ctx context.Context, d *queue.Delivery) {
	start := time.Now()
	log := w.log.With("job_id", d.Job.ID, "file_id", d.Job.FileID)

	if err := w.Process(ctx, d.Job); err != nil {
		metrics.ThumbnailJobsProcessed.WithLabelValues("failed").Inc()
		log.Errorw("thumbnail job failed", "error", err)
		if ferr := w.jobs.Fail(ctx, d, err); ferr != nil {
			log.Errorw("record failed job", "error", ferr)
		}
		return
	}

	metrics.ThumbnailJobsProcessed.WithLabelValues("completed").Inc()
	metrics.ThumbnailJobDuration.Observe(time.Since(start).Seconds())
	log.Infow("thumbnails generated", "duration", time.Since(start))
	if err := w.jobs.Ack(ctx, d); err != nil {
		log.Errorw("ack job", "error", err)
	}
}

// Process generates every thumbnail size for the job's image. It never
// touches the metadata record. The job fails unless every write succeeds.
func (w *Worker) Process(ctx context.Context, job models.ThumbnailJob) error {
	if job.FileID == "" {
		return errors.New("missing fileId")
	}
	if job.UserID == "" {
		return errors.New("missing userId")
	}

	file, err := w.files.GetByIDAndOwner(ctx, job.FileID, job.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}
	if file.LocalPath == "" {
		return fmt.Errorf("file %s has no content", job.FileID)
	}

	rc, err := w.content.Open(ctx, file.LocalPath)
	if err != nil {
		return fmt.Errorf("open original: %w", err)
	}
	src, err := decodeImage(rc)
	rc.Close()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, size := range storage.Sizes {
		size := size
		g.Go(func() error {
			data, err := thumbnail(src, size)
			if err != nil {
				return err
			}
			path := storage.DerivativePath(file.LocalPath, size)
			if err := w.content.Put(gctx, path, data); err != nil {
				return fmt.Errorf("write %dpx thumbnail: %w", size, err)
			}
			return nil
		})
	}
	return g.Wait()
}
