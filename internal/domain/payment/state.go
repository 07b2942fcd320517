package payment

// Phase names the lifecycle position of a payment.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInFlight   Phase = "in_flight"
	PhaseResolved   Phase = "resolved"
)

// lifecycleState implements the state pattern for payment lifecycle transitions.
// Only forward transitions exist: not_started -> in_flight -> resolved. A caller
// wanting to retry after resolution must construct a new Payment.
type lifecycleState interface {
	Phase() Phase
	OnDispatch(p *Payment) (lifecycleState, error)
	OnResult(p *Payment, r Result) (lifecycleState, error)
}

type notStartedState struct{}

func (notStartedState) Phase() Phase { return PhaseNotStarted }

func (notStartedState) OnDispatch(*Payment) (lifecycleState, error) {
	return inFlightState{}, nil
}

func (notStartedState) OnResult(*Payment, Result) (lifecycleState, error) {
	return nil, ErrInvalidStateTransition
}

type inFlightState struct{}

func (inFlightState) Phase() Phase { return PhaseInFlight }

func (inFlightState) OnDispatch(*Payment) (lifecycleState, error) {
	return nil, ErrInvalidStateTransition
}

func (inFlightState) OnResult(p *Payment, r Result) (lifecycleState, error) {
	p.result = &r
	return resolvedState{}, nil
}

type resolvedState struct{}

func (resolvedState) Phase() Phase { return PhaseResolved }

func (resolvedState) OnDispatch(*Payment) (lifecycleState, error) {
	return nil, ErrInvalidStateTransition
}

func (resolvedState) OnResult(*Payment, Result) (lifecycleState, error) {
	return nil, ErrInvalidStateTransition
}
