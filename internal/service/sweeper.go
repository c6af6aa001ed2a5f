package service

import (
	"context"
	"log"
	"time"

	"tikiti/internal/domain"
	"tikiti/internal/queue"
)

// Sweeper periodically re-enqueues reconciliation for attempts stuck in a
// non-terminal state: payments still PENDING and refunds still in TRANSIT.
// Only records created within the window are rechecked; anything older is
// considered abandoned and left alone.
type Sweeper struct {
	payments PaymentStore
	refunds  RefundStore
	tasks    queue.TaskQueue
	interval time.Duration
	window   time.Duration
}

func NewSweeper(payments PaymentStore, refunds RefundStore, tasks queue.TaskQueue, interval, window time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Sweeper{
		payments: payments,
		refunds:  refunds,
		tasks:    tasks,
		interval: interval,
		window:   window,
	}
}

// Run ticks until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	tick := time.NewTicker(s.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.Sweep()
		}
	}
}

// Sweep enqueues one check per live record inside the window.
func (s *Sweeper) Sweep() {
	since := time.Now().Add(-s.window)

	payments, err := s.payments.ListInStateSince(domain.ProviderMTNMoMo, domain.PaymentStatePending, since)
	if err != nil {
		log.Printf("[Sweep] list pending payments: %v", err)
	} else {
		for _, p := range payments {
			s.tasks.Enqueue(queue.Task{Kind: queue.CheckPayment, ID: p.ID})
		}
	}

	refunds, err := s.refunds.ListInStateSince(domain.ProviderMTNMoMo, domain.RefundStateTransit, since)
	if err != nil {
		log.Printf("[Sweep] list in-transit refunds: %v", err)
	} else {
		for _, r := range refunds {
			s.tasks.Enqueue(queue.Task{Kind: queue.CheckRefund, ID: r.ID})
		}
	}
}
