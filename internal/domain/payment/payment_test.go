package payment

import (
	"context"
	"errors"
	"testing"
)

func acceptingDispatch(deliver *ResultCallback) DispatchFunc {
	return func(_ context.Context, _ Snapshot, onResult ResultCallback) error {
		if deliver != nil {
			*deliver = onResult
		}
		return nil
	}
}

func TestSetterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Payment)
		wantErr error
		check   func(t *testing.T, p *Payment)
	}{
		{
			name:    "negative amount rejected",
			mutate:  func(p *Payment) { p.SetAmount(-5) },
			wantErr: ErrInvalidArgument,
			check: func(t *testing.T, p *Payment) {
				if p.Amount() != 0 {
					t.Errorf("amount: got %v, want 0", p.Amount())
				}
			},
		},
		{
			name:   "valid amount stored",
			mutate: func(p *Payment) { p.SetAmount(12.5) },
			check: func(t *testing.T, p *Payment) {
				if p.Amount() != 12.5 {
					t.Errorf("amount: got %v, want 12.5", p.Amount())
				}
			},
		},
		{
			name:    "empty currency rejected",
			mutate:  func(p *Payment) { p.SetCurrency("  ") },
			wantErr: ErrInvalidArgument,
			check: func(t *testing.T, p *Payment) {
				if p.Currency() != "USD" {
					t.Errorf("currency: got %q, want default USD", p.Currency())
				}
			},
		},
		{
			name:   "currency replaced",
			mutate: func(p *Payment) { p.SetCurrency("EUR") },
			check: func(t *testing.T, p *Payment) {
				if p.Currency() != "EUR" {
					t.Errorf("currency: got %q, want EUR", p.Currency())
				}
			},
		},
		{
			name:   "valid details stored exactly",
			mutate: func(p *Payment) { p.SetDetails(1.5, 10, 0.75) },
			check: func(t *testing.T, p *Payment) {
				d := p.Details()
				if d == nil || d.Shipping != 1.5 || d.Subtotal != 10 || d.Tax != 0.75 {
					t.Errorf("details: got %+v", d)
				}
			},
		},
		{
			name:    "details with three decimals rejected",
			mutate:  func(p *Payment) { p.SetDetails(1.005, 10, 0.75) },
			wantErr: ErrInvalidArgument,
			check: func(t *testing.T, p *Payment) {
				if p.Details() != nil {
					t.Errorf("details should stay unset, got %+v", p.Details())
				}
			},
		},
		{
			name:    "details longer than ten characters rejected",
			mutate:  func(p *Payment) { p.SetDetails(1, 12345678901, 0) },
			wantErr: ErrInvalidArgument,
			check: func(t *testing.T, p *Payment) {
				if p.Details() != nil {
					t.Errorf("details should stay unset, got %+v", p.Details())
				}
			},
		},
		{
			name:    "negative tax rejected",
			mutate:  func(p *Payment) { p.SetDetails(1, 10, -0.5) },
			wantErr: ErrInvalidArgument,
		},
		{
			name:   "bn code chainable and stored",
			mutate: func(p *Payment) { p.SetBnCode("Partner_BN").SetInvoiceNumber("inv-9") },
			check: func(t *testing.T, p *Payment) {
				if p.BnCode() != "Partner_BN" || p.InvoiceNumber() != "inv-9" {
					t.Errorf("bnCode/invoice: got %q %q", p.BnCode(), p.InvoiceNumber())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(nil)
			tt.mutate(p)
			if tt.wantErr != nil {
				if !errors.Is(p.Err(), tt.wantErr) {
					t.Fatalf("Err(): got %v, want %v", p.Err(), tt.wantErr)
				}
			} else if p.Err() != nil {
				t.Fatalf("Err(): unexpected %v", p.Err())
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestSettersReturnSamePayment(t *testing.T) {
	p := New(nil)
	chained := p.SetAmount(3).SetCurrency("GBP").SetDescription("tea").SetCustom("c").SetBnCode("bn")
	if chained != p {
		t.Fatalf("chained setters must return the same payment")
	}
}

func TestSetDetailsReplacesPriorBreakdown(t *testing.T) {
	p := New(nil)
	p.SetDetails(1, 2, 3)
	p.SetDetails(4, 5, 6)

	d := p.Details()
	if d.Shipping != 4 || d.Subtotal != 5 || d.Tax != 6 {
		t.Fatalf("details not replaced: %+v", d)
	}

	// A rejected triple must leave the previous breakdown intact.
	p.SetDetails(-1, 5, 6)
	d = p.Details()
	if d.Shipping != 4 || d.Subtotal != 5 || d.Tax != 6 {
		t.Fatalf("details changed by rejected triple: %+v", d)
	}
}

func TestStartLifecycle(t *testing.T) {
	var deliver ResultCallback
	p := New(acceptingDispatch(&deliver))

	if p.Phase() != PhaseNotStarted {
		t.Fatalf("phase: got %s", p.Phase())
	}

	calls := 0
	var got Result
	if err := p.Start(context.Background(), func(r Result) { calls++; got = r }); err != nil {
		t.Fatalf("start: %v", err)
	}
	if p.Phase() != PhaseInFlight {
		t.Fatalf("phase after start: got %s", p.Phase())
	}

	// Second start while in flight must fail without producing a result.
	if err := p.Start(context.Background(), nil); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second start: got %v, want ErrInvalidState", err)
	}

	deliver(SuccessResult("abc123"))
	if calls != 1 {
		t.Fatalf("callback invocations: got %d, want 1", calls)
	}
	if got.Code != CodeSuccess || got.Key != "abc123" {
		t.Fatalf("result: got %+v", got)
	}
	if p.Phase() != PhaseResolved {
		t.Fatalf("phase after result: got %s", p.Phase())
	}
	if r := p.Result(); r == nil || r.Key != "abc123" {
		t.Fatalf("stored result: got %+v", r)
	}

	// Duplicate delivery from a misbehaving gateway is swallowed.
	deliver(FailedResult("late duplicate"))
	if calls != 1 {
		t.Fatalf("duplicate delivery reached callback: %d calls", calls)
	}
	if p.Result().Code != CodeSuccess {
		t.Fatalf("stored result overwritten: %+v", p.Result())
	}

	// A resolved payment is immutable.
	p.SetAmount(99)
	if !errors.Is(p.Err(), ErrInvalidState) {
		t.Fatalf("mutation after resolve: got %v, want ErrInvalidState", p.Err())
	}
	if p.Amount() != 0 {
		t.Fatalf("amount mutated after resolve: %v", p.Amount())
	}

	if err := p.Start(context.Background(), nil); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("start after resolve: got %v, want ErrInvalidState", err)
	}
}

func TestStartRejectedByGateway(t *testing.T) {
	rejections := 0
	p := New(func(context.Context, Snapshot, ResultCallback) error {
		rejections++
		if rejections == 1 {
			return errors.New("gateway unreachable")
		}
		return nil
	})

	err := p.Start(context.Background(), nil)
	if !errors.Is(err, ErrDispatchRejected) {
		t.Fatalf("rejected start: got %v, want ErrDispatchRejected", err)
	}
	if p.Phase() != PhaseNotStarted {
		t.Fatalf("phase after rejection: got %s, want not_started", p.Phase())
	}

	// The entity reverted, so a fresh start attempt is legal.
	if err := p.Start(context.Background(), nil); err != nil {
		t.Fatalf("start after revert: %v", err)
	}
	if p.Phase() != PhaseInFlight {
		t.Fatalf("phase after second start: got %s", p.Phase())
	}
}

func TestStartRefusedWithPendingValidationError(t *testing.T) {
	dispatched := false
	p := New(func(context.Context, Snapshot, ResultCallback) error {
		dispatched = true
		return nil
	})

	p.SetAmount(-1)
	err := p.Start(context.Background(), nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("start with pending error: got %v, want ErrInvalidArgument", err)
	}
	if dispatched {
		t.Fatalf("payment with pending validation error must not dispatch")
	}
	if p.Phase() != PhaseNotStarted {
		t.Fatalf("phase: got %s", p.Phase())
	}
}

func TestStartWithoutDispatcher(t *testing.T) {
	p := New(nil)
	if err := p.Start(context.Background(), nil); !errors.Is(err, ErrDispatchRejected) {
		t.Fatalf("start without dispatcher: got %v, want ErrDispatchRejected", err)
	}
}

func TestSnapshotCarriesAllFields(t *testing.T) {
	var snap Snapshot
	p := New(func(_ context.Context, s Snapshot, _ ResultCallback) error {
		snap = s
		return nil
	})

	p.SetAmount(12.5).
		SetCurrency("EUR").
		SetDescription("widgets").
		SetCustom("opaque").
		SetInvoiceNumber("inv-1").
		SetBnCode("bn-1").
		SetDetails(2.5, 9, 1)

	if err := p.Start(context.Background(), nil); err != nil {
		t.Fatalf("start: %v", err)
	}

	if snap.AttemptID != p.AttemptID() {
		t.Errorf("attempt id: got %q, want %q", snap.AttemptID, p.AttemptID())
	}
	if snap.Amount != 12.5 || snap.Currency != "EUR" || snap.Description != "widgets" ||
		snap.Custom != "opaque" || snap.InvoiceNumber != "inv-1" || snap.BnCode != "bn-1" {
		t.Errorf("snapshot fields: %+v", snap)
	}
	if snap.Details == nil || snap.Details.Shipping != 2.5 || snap.Details.Subtotal != 9 || snap.Details.Tax != 1 {
		t.Errorf("snapshot details: %+v", snap.Details)
	}
}

func TestResultErr(t *testing.T) {
	if err := SuccessResult("k").Err(); err != nil {
		t.Fatalf("success result err: %v", err)
	}

	err := CanceledResult("user backed out").Err()
	var terminal *TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("canceled result err: got %T", err)
	}
	if terminal.Code != CodeCanceled {
		t.Fatalf("canceled code: got %d", terminal.Code)
	}

	if FailedResult("declined").Err() == nil {
		t.Fatalf("failed result must produce an error")
	}
}

func TestValidDetailAmount(t *testing.T) {
	tests := []struct {
		value float64
		want  bool
	}{
		{0, true},
		{0.75, true},
		{999999.99, true},
		{1234567890, true},
		{12345678901, false},
		{1.005, false},
		{-0.01, false},
	}
	for _, tt := range tests {
		if got := validDetailAmount(tt.value); got != tt.want {
			t.Errorf("validDetailAmount(%v): got %v, want %v", tt.value, got, tt.want)
		}
	}
}
