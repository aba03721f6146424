package services

import (
	"context"
	"fmt"
	"log/slog"

	"storyadmin/internal/lib/loading"
	"storyadmin/internal/lib/logger/sl"

	"github.com/google/uuid"
)

type SubscriberLister interface {
	ListSubscribers(ctx context.Context, token string) ([]string, error)
}

type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// NotifyResult reports a notification run. Failed holds the recipients whose
// delivery failed; the run itself succeeds as long as the subscriber list
// could be fetched.
type NotifyResult struct {
	JobID  string   `json:"job_id"`
	Sent   int      `json:"sent"`
	Failed []string `json:"failed,omitempty"`
}

// NotifyService fans a new-content announcement out to every subscriber, one
// email per recipient.
type NotifyService struct {
	log         *slog.Logger
	subscribers SubscriberLister
	mailer      Mailer
	loading     *loading.Registry
}

func NewNotifyService(log *slog.Logger, subscribers SubscriberLister, mailer Mailer, reg *loading.Registry) *NotifyService {
	return &NotifyService{
		log:         log,
		subscribers: subscribers,
		mailer:      mailer,
		loading:     reg,
	}
}

// NotifySubscribers fetches the subscriber list and sends the announcement to
// each address. Per-recipient failures are collected, not fatal.
func (s *NotifyService) NotifySubscribers(ctx context.Context, token, subject, body string) (NotifyResult, error) {
	const op = "notify_service.NotifySubscribers"

	jobID := uuid.NewString()
	log := s.log.With(slog.String("op", op), slog.String("job_id", jobID))

	done := s.loading.Begin("notify", "Notifying subscribers...")
	defer done()

	recipients, err := s.subscribers.ListSubscribers(ctx, token)
	if err != nil {
		log.Error("failed to list subscribers", sl.Err(err))
		return NotifyResult{}, fmt.Errorf("%s: %w", op, err)
	}

	result := NotifyResult{JobID: jobID}
	for _, recipient := range recipients {
		if err := s.mailer.Send(ctx, recipient, subject, body); err != nil {
			log.Warn("failed to notify subscriber",
				slog.String("recipient", recipient),
				sl.Err(err),
			)
			result.Failed = append(result.Failed, recipient)
			continue
		}
		result.Sent++
	}

	log.Info("notification run finished",
		slog.Int("sent", result.Sent),
		slog.Int("failed", len(result.Failed)),
	)

	return result, nil
}
