package payment

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// detailMaxLen caps the rendered length of a detail amount; the native SDK
// rejects monetary strings longer than this or with more than two decimals.
const detailMaxLen = 10

// Details is an optional breakdown of a payment amount. Setting details
// replaces any prior breakdown wholesale.
type Details struct {
	Shipping float64
	Subtotal float64
	Tax      float64
}

// Snapshot is the immutable copy of a payment's fields handed to the gateway
// when an attempt is dispatched.
type Snapshot struct {
	AttemptID     string
	Amount        float64
	Currency      string
	Description   string
	Custom        string
	InvoiceNumber string
	BnCode        string
	Details       *Details
}

// DispatchFunc hands a payment snapshot to the external gateway. A nil error
// means the attempt was accepted and exactly one result will follow; a non-nil
// error means no result will ever arrive for this attempt.
type DispatchFunc func(ctx context.Context, snap Snapshot, onResult ResultCallback) error

// Payment is a mutable builder-style value representing one payment in
// progress. A Payment is owned exclusively by its caller and must not be shared
// across concurrent Start attempts; the internal mutex only guards the hand-off
// between the caller and the gateway's result goroutine.
//
// Setters validate their argument, mutate in place, and return the same Payment
// to support chaining. A failed validation leaves the field untouched and
// retains the first error, readable immediately via Err; Start refuses to
// dispatch while a validation error is pending.
type Payment struct {
	mu        sync.Mutex
	attemptID string

	amount        float64
	currency      string
	description   string
	custom        string
	invoiceNumber string
	bnCode        string
	details       *Details

	state    lifecycleState
	result   *Result
	err      error
	dispatch DispatchFunc
}

// New creates a not-started payment bound to the given dispatcher. Amount
// defaults to 0 and currency to "USD".
func New(dispatch DispatchFunc) *Payment {
	return &Payment{
		attemptID: uuid.NewString(),
		currency:  "USD",
		state:     notStartedState{},
		dispatch:  dispatch,
	}
}

func (p *Payment) SetAmount(amount float64) *Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mutableLocked() {
		return p
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		p.failLocked(fmt.Errorf("%w: amount %v must be a non-negative number", ErrInvalidArgument, amount))
		return p
	}
	p.amount = amount
	return p
}

func (p *Payment) SetCurrency(code string) *Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mutableLocked() {
		return p
	}
	if strings.TrimSpace(code) == "" {
		p.failLocked(fmt.Errorf("%w: currency code must not be empty", ErrInvalidArgument))
		return p
	}
	p.currency = code
	return p
}

func (p *Payment) SetDescription(description string) *Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mutableLocked() {
		return p
	}
	p.description = description
	return p
}

func (p *Payment) SetCustom(custom string) *Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mutableLocked() {
		return p
	}
	p.custom = custom
	return p
}

func (p *Payment) SetInvoiceNumber(invoiceNumber string) *Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mutableLocked() {
		return p
	}
	p.invoiceNumber = invoiceNumber
	return p
}

// SetBnCode sets the partner tracking (build notation) code. Chainable like
// every other setter.
func (p *Payment) SetBnCode(bnCode string) *Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mutableLocked() {
		return p
	}
	p.bnCode = bnCode
	return p
}

// SetDetails validates shipping, subtotal and tax jointly; on success it
// replaces any prior breakdown. On failure the previous details are kept.
func (p *Payment) SetDetails(shipping, subtotal, tax float64) *Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mutableLocked() {
		return p
	}
	for _, part := range []struct {
		name  string
		value float64
	}{
		{"shipping", shipping},
		{"subtotal", subtotal},
		{"tax", tax},
	} {
		if !validDetailAmount(part.value) {
			p.failLocked(fmt.Errorf("%w: detail %s %v exceeds %d characters or 2 decimal places",
				ErrInvalidArgument, part.name, part.value, detailMaxLen))
			return p
		}
	}
	p.details = &Details{Shipping: shipping, Subtotal: subtotal, Tax: tax}
	return p
}

// Err returns the first setter validation error, or the lifecycle error of the
// last rejected mutation. It is sticky until the payment is discarded.
func (p *Payment) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Payment) AttemptID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attemptID
}

func (p *Payment) Amount() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.amount
}

func (p *Payment) Currency() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currency
}

func (p *Payment) Description() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.description
}

func (p *Payment) Custom() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.custom
}

func (p *Payment) InvoiceNumber() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.invoiceNumber
}

func (p *Payment) BnCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bnCode
}

// Details returns a copy of the current breakdown, or nil when none is set.
func (p *Payment) Details() *Details {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.details == nil {
		return nil
	}
	d := *p.details
	return &d
}

func (p *Payment) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Phase()
}

// Result returns a copy of the terminal result once the payment is resolved.
func (p *Payment) Result() *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return nil
	}
	r := *p.result
	return &r
}

// Start transitions the payment from not-started to in-flight and hands the
// current field snapshot to the gateway. A nil return means the attempt was
// dispatched; it says nothing about the payment outcome, which arrives later
// through exactly one callback invocation. When the gateway rejects the
// hand-off the payment reverts to not-started, ErrDispatchRejected is returned
// and no callback will ever fire for the attempt. Starting an in-flight or
// resolved payment returns ErrInvalidState.
//
// The callback may be nil; the outcome is then observable only through the
// gateway's diagnostic logs.
func (p *Payment) Start(ctx context.Context, callback ResultCallback) error {
	p.mu.Lock()
	if p.err != nil {
		err := p.err
		p.mu.Unlock()
		return err
	}
	if p.dispatch == nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: no dispatcher bound", ErrDispatchRejected)
	}
	next, err := p.state.OnDispatch(p)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidState, p.state.Phase())
	}
	p.state = next
	snap := p.snapshotLocked()
	dispatch := p.dispatch
	p.mu.Unlock()

	if err := dispatch(ctx, snap, p.resolveOnce(callback)); err != nil {
		p.mu.Lock()
		p.state = notStartedState{}
		p.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrDispatchRejected, err)
	}
	return nil
}

// resolveOnce wraps the caller's callback into a one-shot completion signal:
// whatever the gateway does, at most one result transitions the payment and
// reaches the caller.
func (p *Payment) resolveOnce(callback ResultCallback) ResultCallback {
	var once sync.Once
	return func(r Result) {
		once.Do(func() {
			p.mu.Lock()
			if next, err := p.state.OnResult(p, r); err == nil {
				p.state = next
			}
			p.mu.Unlock()
			if callback != nil {
				callback(r)
			}
		})
	}
}

func (p *Payment) snapshotLocked() Snapshot {
	snap := Snapshot{
		AttemptID:     p.attemptID,
		Amount:        p.amount,
		Currency:      p.currency,
		Description:   p.description,
		Custom:        p.custom,
		InvoiceNumber: p.invoiceNumber,
		BnCode:        p.bnCode,
	}
	if p.details != nil {
		d := *p.details
		snap.Details = &d
	}
	return snap
}

// mutableLocked reports whether setters may run; mutation is only legal before
// the first dispatch.
func (p *Payment) mutableLocked() bool {
	if p.state.Phase() == PhaseNotStarted {
		return true
	}
	p.failLocked(fmt.Errorf("%w: mutate while %s", ErrInvalidState, p.state.Phase()))
	return false
}

func (p *Payment) failLocked(err error) {
	if p.err == nil {
		p.err = err
	}
}

func validDetailAmount(v float64) bool {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if len(s) > detailMaxLen {
		return false
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > 2 {
		return false
	}
	return true
}
