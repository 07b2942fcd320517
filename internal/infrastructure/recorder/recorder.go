package recorder

import (
	"context"
	"errors"
	"time"

	"github.com/Garwin4j/paypal-bridge/internal/domain/event"
	dompay "github.com/Garwin4j/paypal-bridge/internal/domain/payment"
	"github.com/Garwin4j/paypal-bridge/internal/infrastructure/memory"
	"github.com/Garwin4j/paypal-bridge/internal/observability"
)

const component = "attempt_recorder"

// Worker subscribes to payment lifecycle events and keeps the attempt
// repository current: started attempts are inserted, resolved attempts get
// their terminal result attached.
type Worker struct {
	subscriber event.Subscriber
	repo       *memory.AttemptRepository
	log        observability.Logger
}

func New(subscriber event.Subscriber, repo *memory.AttemptRepository, logger observability.Logger) *Worker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Worker{
		subscriber: subscriber,
		repo:       repo,
		log:        logger.With(observability.F("component", component)),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(dompay.PaymentStartedEvent{}.EventName(), w.handleStarted)
	w.subscriber.Subscribe(dompay.PaymentResolvedEvent{}.EventName(), w.handleResolved)
}

func (w *Worker) handleStarted(ctx context.Context, e event.Event) error {
	evt, ok := e.(dompay.PaymentStartedEvent)
	if !ok {
		return nil
	}

	err := w.repo.Insert(ctx, &memory.Attempt{
		ID:        evt.Snapshot.AttemptID,
		Snapshot:  evt.Snapshot,
		StartedAt: evt.OccurredAt,
	})
	if errors.Is(err, memory.ErrConflict) {
		// The resolved event got there first and left a stub; backfill it.
		existing, getErr := w.repo.Get(ctx, evt.Snapshot.AttemptID)
		if getErr != nil {
			w.log.Warn("attempt_record_failed",
				observability.F("attempt_id", evt.Snapshot.AttemptID),
				observability.F("error", getErr.Error()),
			)
			return getErr
		}
		existing.Snapshot = evt.Snapshot
		existing.StartedAt = evt.OccurredAt
		if updErr := w.repo.Update(ctx, existing); updErr != nil {
			w.log.Warn("attempt_record_failed",
				observability.F("attempt_id", evt.Snapshot.AttemptID),
				observability.F("error", updErr.Error()),
			)
			return updErr
		}
		w.log.Info("attempt_backfilled",
			observability.F("attempt_id", evt.Snapshot.AttemptID),
		)
		return nil
	}
	if err != nil {
		w.log.Warn("attempt_record_failed",
			observability.F("attempt_id", evt.Snapshot.AttemptID),
			observability.F("error", err.Error()),
		)
		return err
	}

	w.log.Info("attempt_recorded",
		observability.F("attempt_id", evt.Snapshot.AttemptID),
	)
	return nil
}

func (w *Worker) handleResolved(ctx context.Context, e event.Event) error {
	evt, ok := e.(dompay.PaymentResolvedEvent)
	if !ok {
		return nil
	}

	resolvedAt := evt.OccurredAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now().UTC()
	}

	attempt, err := w.repo.Get(ctx, evt.AttemptID)
	if errors.Is(err, memory.ErrNotFound) {
		// Resolved before the started event was processed; record what we have.
		attempt = &memory.Attempt{
			ID:       evt.AttemptID,
			Snapshot: dompay.Snapshot{AttemptID: evt.AttemptID},
		}
		result := evt.Result
		attempt.Result = &result
		attempt.ResolvedAt = resolvedAt
		insertErr := w.repo.Insert(ctx, attempt)
		if insertErr != nil {
			w.log.Warn("attempt_resolve_record_failed",
				observability.F("attempt_id", evt.AttemptID),
				observability.F("error", insertErr.Error()),
			)
		}
		return insertErr
	}
	if err != nil {
		return err
	}

	result := evt.Result
	attempt.Result = &result
	attempt.ResolvedAt = resolvedAt

	if err := w.repo.Update(ctx, attempt); err != nil {
		w.log.Warn("attempt_resolve_record_failed",
			observability.F("attempt_id", evt.AttemptID),
			observability.F("error", err.Error()),
		)
		return err
	}

	w.log.Info("attempt_resolved_recorded",
		observability.F("attempt_id", evt.AttemptID),
		observability.F("code", evt.Result.Code),
	)
	return nil
}
