package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	topicApplicationSubmitted = "application_submitted"
	topicApplicationRejected  = "application_rejected"
	topicLoanApproved         = "loan_approved"
	topicPaymentReceived      = "payment_received"
)

type OutboxJob struct {
	ID          int64
	Topic       string
	Payload     []byte
	Status      string
	Attempts    int32
	LastError   string
	AvailableAt time.Time
}

type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int32) ([]OutboxJob, error)
	MarkDone(ctx context.Context, jobID int64) error
	MarkRetry(ctx context.Context, jobID int64, nextAvailableAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, jobID int64, lastError string) error
}

// Notification is the rendered message handed to the delivery channel.
type Notification struct {
	CustomerID string
	Kind       string
	Fields     map[string]any
}

// Notifier delivers a notification to the customer. Actual transport (email,
// SMS) lives outside this service.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type Worker struct {
	outboxRepo   OutboxRepository
	notifier     Notifier
	maxAttempts  int32
	now          func() time.Time
	retryBackoff func(attempt int32) time.Duration
}

func NewWorker(outboxRepo OutboxRepository, notifier Notifier) *Worker {
	return &Worker{
		outboxRepo:  outboxRepo,
		notifier:    notifier,
		maxAttempts: 5,
		now:         func() time.Time { return time.Now().UTC() },
		retryBackoff: func(attempt int32) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			return time.Duration(attempt*15) * time.Second
		},
	}
}

func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	claimed, err := w.outboxRepo.ClaimPending(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, job := range claimed {
		if err := w.processJob(ctx, job); err != nil {
			return err
		}
	}

	return nil
}

func (w *Worker) Run(ctx context.Context, batchSize int32, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx, batchSize); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job OutboxJob) error {
	switch job.Topic {
	case topicApplicationSubmitted, topicApplicationRejected, topicLoanApproved, topicPaymentReceived:
		return w.processNotification(ctx, job)
	default:
		if job.Attempts >= w.maxAttempts {
			return w.outboxRepo.MarkFailed(ctx, job.ID, "unsupported_topic")
		}
		next := w.now().Add(w.retryBackoff(job.Attempts))
		return w.outboxRepo.MarkRetry(ctx, job.ID, next, "unsupported_topic")
	}
}

func (w *Worker) processNotification(ctx context.Context, job OutboxJob) error {
	var fields map[string]any
	if err := json.Unmarshal(job.Payload, &fields); err != nil {
		return w.handleJobError(ctx, job, fmt.Errorf("invalid_payload"))
	}
	customerID, _ := fields["customer_id"].(string)
	if customerID == "" {
		return w.handleJobError(ctx, job, fmt.Errorf("missing_customer_id"))
	}

	if err := w.notifier.Send(ctx, Notification{
		CustomerID: customerID,
		Kind:       job.Topic,
		Fields:     fields,
	}); err != nil {
		return w.handleJobError(ctx, job, err)
	}

	return w.outboxRepo.MarkDone(ctx, job.ID)
}

func (w *Worker) handleJobError(ctx context.Context, job OutboxJob, err error) error {
	msg := err.Error()
	if job.Attempts >= w.maxAttempts {
		return w.outboxRepo.MarkFailed(ctx, job.ID, msg)
	}
	next := w.now().Add(w.retryBackoff(job.Attempts))
	return w.outboxRepo.MarkRetry(ctx, job.ID, next, msg)
}
