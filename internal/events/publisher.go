package events

import (
	"encoding/json"
	"log"
	"time"

	"tikiti/internal/models"

	"github.com/IBM/sarama"
)

// Publisher emits payment lifecycle events to a Kafka topic. Sends are fire
// and forget: failures are logged, never propagated to the payment flow. A
// nil Publisher is valid and publishes nothing.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{producer: producer, topic: topic}, nil
}

type lifecycleEvent struct {
	Type        string `json:"type"`
	PaymentID   uint   `json:"payment_id"`
	RefundID    uint   `json:"refund_id,omitempty"`
	OrderID     uint   `json:"order_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

func (p *Publisher) PaymentConfirmed(pay *models.Payment) {
	p.send(lifecycleEvent{
		Type:        "payment.confirmed",
		PaymentID:   pay.ID,
		OrderID:     pay.OrderID,
		AmountCents: pay.AmountCents,
		Currency:    pay.Currency,
		Reference:   pay.Reference(),
	})
}

func (p *Publisher) PaymentFailed(pay *models.Payment) {
	p.send(lifecycleEvent{
		Type:        "payment.failed",
		PaymentID:   pay.ID,
		OrderID:     pay.OrderID,
		AmountCents: pay.AmountCents,
		Currency:    pay.Currency,
		Reference:   pay.Reference(),
	})
}

func (p *Publisher) RefundDone(ref *models.Refund) {
	p.send(lifecycleEvent{
		Type:        "refund.done",
		PaymentID:   ref.PaymentID,
		RefundID:    ref.ID,
		OrderID:     ref.OrderID,
		AmountCents: ref.AmountCents,
		Currency:    ref.Currency,
		Reference:   ref.Reference(),
	})
}

func (p *Publisher) send(ev lifecycleEvent) {
	if p == nil || p.producer == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	b, _ := json.Marshal(ev)
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(b),
	})
	if err != nil {
		log.Printf("[Events] publish %s failed: %v", ev.Type, err)
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
