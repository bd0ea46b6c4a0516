package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var done atomic.Int32
	for i := 0; i < 50; i++ {
		pool.AddTask(func() { done.Add(1) })
	}
	pool.Wait()

	assert.Equal(t, int32(50), done.Load())
}

func TestWorkerPool_BoundsParallelism(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var running, peak atomic.Int32
	for i := 0; i < 10; i++ {
		pool.AddTask(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		})
	}
	pool.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 2, pool.Size())
}

func TestWorkerPool_MinimumOneWorker(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()
	assert.Equal(t, 1, pool.Size())

	ran := false
	pool.AddTask(func() { ran = true })
	pool.Wait()
	assert.True(t, ran)

	pool.Close()
}
