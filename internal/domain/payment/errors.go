package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a malformed field value passed to a setter.
	ErrInvalidArgument = errors.New("payment: invalid argument")
	// ErrInvalidState reports an operation attempted in the wrong lifecycle
	// state, e.g. Start on an in-flight payment or a setter on a resolved one.
	ErrInvalidState = errors.New("payment: invalid state")
	// ErrDispatchRejected reports that the gateway refused the hand-off; no
	// result callback will ever fire for the attempt.
	ErrDispatchRejected = errors.New("payment: dispatch rejected")

	ErrInvalidStateTransition = errors.New("payment: invalid state transition")
)

// TerminalError is the error form of a non-zero Result. It covers both user
// cancellation and provider failure, distinguished only by code and message.
type TerminalError struct {
	Code    int
	Message string
}

func (e *TerminalError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment: terminal failure (code %d)", e.Code)
	}
	return fmt.Sprintf("payment: terminal failure (code %d): %s", e.Code, e.Message)
}
