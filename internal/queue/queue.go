// Package queue carries thumbnail jobs from the API server to the worker
// processes through Redis lists.
//
// A job moves pending -> processing when a worker reserves it, then leaves
// processing on Ack (completed) or on Fail, which parks it in the failed list
// for an operator. Nothing is retried automatically.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/FilesManager/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Reserve when no job arrived before the timeout.
var ErrEmpty = errors.New("queue is empty")

// Delivery is a reserved job together with the raw entry that has to be
// removed from the processing list once the job is settled.
type Delivery struct {
	Job models.ThumbnailJob
	raw string
}

// FailedEntry is what ends up in the failed list.
type FailedEntry struct {
	Job      models.ThumbnailJob `json:"job"`
	Error    string              `json:"error"`
	FailedAt time.Time           `json:"failedAt"`
}

type Queue struct {
	client     *redis.Client
	name       string
	pending    string
	processing string
	failed     string
}

func New(client *redis.Client, name string) *Queue {
	prefix := "queue:" + name
	return &Queue{
		client:     client,
		name:       name,
		pending:    prefix + ":pending",
		processing: prefix + ":processing",
		failed:     prefix + ":failed",
	}
}

func (q *Queue) Name() string {
	return q.name
}

// IsAlive reports whether the Redis server behind the queue answers.
func (q *Queue) IsAlive(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return q.client.Ping(ctx).Err() == nil
}

// Publish enqueues a job for fileID owned by userID.
func (q *Queue) Publish(ctx context.Context, fileID, userID string) (models.ThumbnailJob, error) {
	job := models.ThumbnailJob{
		ID:         uuid.NewString(),
		FileID:     fileID,
		UserID:     userID,
		EnqueuedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return job, err
	}
	if err := q.client.LPush(ctx, q.pending, payload).Err(); err != nil {
		return job, fmt.Errorf("enqueue job for file %s: %w", fileID, err)
	}
	return job, nil
}

// Reserve blocks up to timeout for the next job and moves it to processing.
func (q *Queue) Reserve(ctx context.Context, timeout time.Duration) (*Delivery, error) {
	raw, err := q.client.BRPopLPush(ctx, q.pending, q.processing, timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("reserve job: %w", err)
	}

	d := &Delivery{raw: raw}
	if err := json.Unmarshal([]byte(raw), &d.Job); err != nil {
		// Keep the entry for inspection rather than dropping it.
		_ = q.settle(ctx, d, &FailedEntry{Error: "malformed payload: " + err.Error(), FailedAt: time.Now().UTC()})
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return d, nil
}

// Ack marks a reserved job completed.
func (q *Queue) Ack(ctx context.Context, d *Delivery) error {
	return q.settle(ctx, d, nil)
}

// Fail marks a reserved job failed and records why.
func (q *Queue) Fail(ctx context.Context, d *Delivery, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return q.settle(ctx, d, &FailedEntry{Job: d.Job, Error: msg, FailedAt: time.Now().UTC()})
}

func (q *Queue) settle(ctx context.Context, d *Delivery, failed *FailedEntry) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.processing, 1, d.raw)
	if failed != nil {
		payload, err := json.Marshal(failed)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, q.failed, payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("settle job %s: %w", d.Job.ID, err)
	}
	return nil
}

// Requeue moves jobs abandoned in processing back to pending. It is meant to
// run before any worker of the queue starts reserving.
func (q *Queue) Requeue(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.RPopLPush(ctx, q.processing, q.pending).Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("requeue: %w", err)
		}
		moved++
	}
}

// Failed lists the failed entries, oldest first.
func (q *Queue) Failed(ctx context.Context) ([]FailedEntry, error) {
	raws, err := q.client.LRange(ctx, q.failed, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]FailedEntry, 0, len(raws))
	for _, raw := range raws {
		var e FailedEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Stats reports the length of each list.
func (q *Queue) Stats(ctx context.Context) (pending, processing, failed int64, err error) {
	pipe := q.client.Pipeline()
	p := pipe.LLen(ctx, q.pending)
	r := pipe.LLen(ctx, q.processing)
	f := pipe.LLen(ctx, q.failed)
	if _, err = pipe.Exec(ctx); err != nil {
		return 0, 0, 0, err
	}
	return p.Val(), r.Val(), f.Val(), nil
}
