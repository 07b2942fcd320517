package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	dompay "github.com/Garwin4j/paypal-bridge/internal/domain/payment"
)

var (
	ErrNotFound = errors.New("attempts: not found")
	ErrConflict = errors.New("attempts: already recorded")
)

// Attempt is one dispatched payment and, once delivered, its terminal result.
type Attempt struct {
	ID         string
	Snapshot   dompay.Snapshot
	Result     *dompay.Result
	StartedAt  time.Time
	ResolvedAt time.Time
}

// AttemptRepository keeps dispatched attempts in memory. It exists for the
// demo wiring and tests; durable attempt history belongs to the host
// application, not this bridge.
type AttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string]*Attempt
}

func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{attempts: make(map[string]*Attempt)}
}

func (r *AttemptRepository) Insert(ctx context.Context, attempt *Attempt) error {
	_ = ctx
	if attempt == nil || attempt.ID == "" {
		return fmt.Errorf("attempt repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.attempts[attempt.ID]; exists {
		return ErrConflict
	}
	r.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

func (r *AttemptRepository) Get(ctx context.Context, id string) (*Attempt, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	attempt, ok := r.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAttempt(attempt), nil
}

func (r *AttemptRepository) Update(ctx context.Context, attempt *Attempt) error {
	_ = ctx
	if attempt == nil || attempt.ID == "" {
		return fmt.Errorf("attempt repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.attempts[attempt.ID]; !exists {
		return ErrNotFound
	}
	r.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

// List returns every recorded attempt, in no particular order.
func (r *AttemptRepository) List(ctx context.Context) []*Attempt {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Attempt, 0, len(r.attempts))
	for _, attempt := range r.attempts {
		out = append(out, cloneAttempt(attempt))
	}
	return out
}

func cloneAttempt(attempt *Attempt) *Attempt {
	if attempt == nil {
		return nil
	}
	clone := *attempt
	if attempt.Result != nil {
		res := *attempt.Result
		clone.Result = &res
	}
	if attempt.Snapshot.Details != nil {
		details := *attempt.Snapshot.Details
		clone.Snapshot.Details = &details
	}
	return &clone
}
