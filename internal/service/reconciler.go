package service

import (
	"context"
	"log"

	"tikiti/internal/queue"
)

// Reconciler adapts PaymentService to the task queue: each task reloads one
// record and reconciles it. Errors are logged; the queue never retries on its
// own, the sweep and callbacks do.
type Reconciler struct {
	Service *PaymentService
}

func (r *Reconciler) Handle(ctx context.Context, t queue.Task) {
	switch t.Kind {
	case queue.CheckPayment:
		if err := r.Service.CheckPayment(ctx, t.ID); err != nil {
			log.Printf("[Queue] check payment %d: %v", t.ID, err)
		}
	case queue.CheckRefund:
		if err := r.Service.CheckRefund(ctx, t.ID); err != nil {
			log.Printf("[Queue] check refund %d: %v", t.ID, err)
		}
	default:
		log.Printf("[Queue] unknown task kind %q", t.Kind)
	}
}
