package payment

import "time"

// PaymentStartedEvent is emitted when an attempt has been accepted by the
// gateway and is in flight.
type PaymentStartedEvent struct {
	Snapshot   Snapshot
	OccurredAt time.Time
}

func (PaymentStartedEvent) EventName() string { return "payment.started" }

func NewPaymentStartedEvent(snap Snapshot) PaymentStartedEvent {
	return PaymentStartedEvent{
		Snapshot:   snap,
		OccurredAt: time.Now().UTC(),
	}
}

// PaymentResolvedEvent is emitted when the gateway delivered the terminal
// result for an attempt.
type PaymentResolvedEvent struct {
	AttemptID  string
	Result     Result
	OccurredAt time.Time
}

func (PaymentResolvedEvent) EventName() string { return "payment.resolved" }

func NewPaymentResolvedEvent(attemptID string, result Result) PaymentResolvedEvent {
	return PaymentResolvedEvent{
		AttemptID:  attemptID,
		Result:     result,
		OccurredAt: time.Now().UTC(),
	}
}
