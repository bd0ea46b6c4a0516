package utils

import (
	"sync"
)

// WorkerPool runs tasks on a fixed number of goroutines. AddTask blocks until
// a worker is free, so callers never hold more work than the pool can run.
type WorkerPool struct {
	maxWorkers int
	taskChan   chan func()
	wg         sync.WaitGroup
	once       sync.Once
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	pool := &WorkerPool{
		maxWorkers: maxWorkers,
		taskChan:   make(chan func()),
	}

	for i := 0; i < maxWorkers; i++ {
		go pool.worker()
	}

	return pool
}

func (p *WorkerPool) Size() int {
	return p.maxWorkers
}

func (p *WorkerPool) worker() {
	for task := range p.taskChan {
		task()
		p.wg.Done()
	}
}

// AddTask hands a task to the next idle worker.
func (p *WorkerPool) AddTask(task func()) {
	p.wg.Add(1)
	p.taskChan <- task
}

// Wait waits for all tasks to complete
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Close stops the workers once queued tasks are done. It is safe to call
// more than once; AddTask must not be called afterwards.
func (p *WorkerPool) Close() {
	p.once.Do(func() { close(p.taskChan) })
}
