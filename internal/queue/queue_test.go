package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

type countingHandler struct {
	mu    sync.Mutex
	tasks []Task
	done  chan struct{}
	want  int
}

func (h *countingHandler) Handle(ctx context.Context, t Task) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks = append(h.tasks, t)
	if len(h.tasks) == h.want {
		close(h.done)
	}
}

func TestWorkerPoolProcessesTasks(t *testing.T) {
	h := &countingHandler{done: make(chan struct{}), want: 5}
	pool := NewWorkerPool(h, 2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := uint(1); i <= 5; i++ {
		pool.Enqueue(Task{Kind: CheckPayment, ID: i})
	}

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks not processed in time")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	seen := map[uint]bool{}
	for _, task := range h.tasks {
		if task.Kind != CheckPayment {
			t.Errorf("unexpected kind %s", task.Kind)
		}
		seen[task.ID] = true
	}
	for i := uint(1); i <= 5; i++ {
		if !seen[i] {
			t.Errorf("task %d never handled", i)
		}
	}
}

func TestWorkerPoolStopsOnCancel(t *testing.T) {
	h := &countingHandler{done: make(chan struct{}), want: 1}
	pool := NewWorkerPool(h, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		pool.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit on cancel")
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	// No workers running, buffer of one: the second enqueue must not block.
	pool := NewWorkerPool(&countingHandler{done: make(chan struct{}), want: 0}, 1, 1)
	done := make(chan struct{})
	go func() {
		pool.Enqueue(Task{Kind: CheckPayment, ID: 1})
		pool.Enqueue(Task{Kind: CheckPayment, ID: 2})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full buffer")
	}
}

func TestWorkerPoolDefaults(t *testing.T) {
	pool := NewWorkerPool(&countingHandler{}, 0, 0)
	if pool.workers != 4 {
		t.Errorf("workers = %d, want 4", pool.workers)
	}
	if cap(pool.tasks) != 64 {
		t.Errorf("buffer = %d, want 64", cap(pool.tasks))
	}
}
