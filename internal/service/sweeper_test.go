package service

import (
	"testing"
	"time"

	"tikiti/internal/domain"
	"tikiti/internal/models"
	"tikiti/internal/queue"
)

type captureQueue struct {
	tasks []queue.Task
}

func (q *captureQueue) Enqueue(t queue.Task) {
	q.tasks = append(q.tasks, t)
}

type sweepPayments struct {
	fakePayments
	since    time.Time
	payments []models.Payment
}

func (f *sweepPayments) ListInStateSince(provider, state string, since time.Time) ([]models.Payment, error) {
	f.since = since
	return f.payments, nil
}

type sweepRefunds struct {
	fakeRefunds
	since   time.Time
	refunds []models.Refund
}

func (f *sweepRefunds) ListInStateSince(provider, state string, since time.Time) ([]models.Refund, error) {
	f.since = since
	return f.refunds, nil
}

func TestSweepEnqueuesLiveRecords(t *testing.T) {
	payments := &sweepPayments{payments: []models.Payment{
		{ID: 1, State: domain.PaymentStatePending},
		{ID: 2, State: domain.PaymentStatePending},
	}}
	refunds := &sweepRefunds{refunds: []models.Refund{
		{ID: 5, State: domain.RefundStateTransit},
	}}
	q := &captureQueue{}
	s := NewSweeper(payments, refunds, q, time.Minute, 24*time.Hour)

	s.Sweep()

	want := []queue.Task{
		{Kind: queue.CheckPayment, ID: 1},
		{Kind: queue.CheckPayment, ID: 2},
		{Kind: queue.CheckRefund, ID: 5},
	}
	if len(q.tasks) != len(want) {
		t.Fatalf("enqueued %d tasks, want %d", len(q.tasks), len(want))
	}
	for i, w := range want {
		if q.tasks[i] != w {
			t.Errorf("task[%d] = %+v, want %+v", i, q.tasks[i], w)
		}
	}
}

func TestSweepWindow(t *testing.T) {
	payments := &sweepPayments{}
	refunds := &sweepRefunds{}
	s := NewSweeper(payments, refunds, &captureQueue{}, time.Minute, 24*time.Hour)

	before := time.Now().Add(-24 * time.Hour)
	s.Sweep()
	after := time.Now().Add(-24 * time.Hour)

	for name, since := range map[string]time.Time{"payments": payments.since, "refunds": refunds.since} {
		if since.Before(before) || since.After(after) {
			t.Errorf("%s since = %v, want about 24h ago", name, since)
		}
	}
}

func TestSweeperDefaults(t *testing.T) {
	s := NewSweeper(&sweepPayments{}, &sweepRefunds{}, &captureQueue{}, 0, 0)
	if s.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", s.interval)
	}
	if s.window != 24*time.Hour {
		t.Errorf("window = %v, want 24h", s.window)
	}
}
