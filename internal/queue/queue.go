package queue

import (
	"context"
	"log"
	"sync"
)

type TaskKind string

const (
	CheckPayment TaskKind = "check_payment"
	CheckRefund  TaskKind = "check_refund"
)

// Task identifies one reconciliation job.
type Task struct {
	Kind TaskKind
	ID   uint
}

// TaskQueue accepts fire-and-forget jobs; producers never await a result.
type TaskQueue interface {
	Enqueue(Task)
}

// Handler executes one task.
type Handler interface {
	Handle(ctx context.Context, t Task)
}

// WorkerPool is an in-process TaskQueue: a buffered channel drained by a
// fixed set of workers.
type WorkerPool struct {
	tasks   chan Task
	handler Handler
	workers int
	wg      sync.WaitGroup
}

func NewWorkerPool(handler Handler, workers, buffer int) *WorkerPool {
	if workers <= 0 {
		workers = 4
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &WorkerPool{
		tasks:   make(chan Task, buffer),
		handler: handler,
		workers: workers,
	}
}

// Start launches the workers. They run until ctx is canceled.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-p.tasks:
					p.handler.Handle(ctx, t)
				}
			}
		}()
	}
}

// Enqueue never blocks; when the buffer is full the task is dropped. Dropped
// checks are picked up again by the periodic sweep.
func (p *WorkerPool) Enqueue(t Task) {
	select {
	case p.tasks <- t:
	default:
		log.Printf("[Queue] dropping %s id=%d: queue full", t.Kind, t.ID)
	}
}

// Wait blocks until all workers have exited.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}
