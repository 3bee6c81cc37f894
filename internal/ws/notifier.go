package ws

import (
	"context"
	"encoding/json"
	"time"
)

// PaymentEvent is one recorded payment, ordered by the transactions table's
// sequence column.
type PaymentEvent struct {
	Seq           int64
	TransactionID string
	LoanID        string
	CustomerID    string
	AmountMinor   int64
	RecordedAt    time.Time
}

type RealtimeRepository interface {
	ListPaymentEventsSince(ctx context.Context, lastSeq int64, limit int32) ([]PaymentEvent, error)
}

// Notifier polls for new payment transactions and pushes them to subscribed
// dashboard clients.
type Notifier struct {
	repo         RealtimeRepository
	hub          *Hub
	pollInterval time.Duration
	lastSeq      int64
}

func NewNotifier(repo RealtimeRepository, hub *Hub, pollInterval time.Duration) *Notifier {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Notifier{repo: repo, hub: hub, pollInterval: pollInterval}
}

func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (n *Notifier) tick(ctx context.Context) error {
	events, err := n.repo.ListPaymentEventsSince(ctx, n.lastSeq, 100)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Seq > n.lastSeq {
			n.lastSeq = ev.Seq
		}
		payload, _ := json.Marshal(map[string]any{
			"event": "payment_received",
			"data": map[string]any{
				"transaction_id": ev.TransactionID,
				"loan_id":        ev.LoanID,
				"customer_id":    ev.CustomerID,
				"amount_minor":   ev.AmountMinor,
				"recorded_at":    ev.RecordedAt.UTC().Format(time.RFC3339),
			},
		})
		n.hub.Publish("loan:payments:"+ev.LoanID, payload)
		n.hub.Publish("customer:payments:"+ev.CustomerID, payload)
	}
	return nil
}
