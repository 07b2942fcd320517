package payment

// Result codes. Zero is the only success value; user cancellation and provider
// errors share the Result shape and are told apart by code and message only.
const (
	CodeSuccess  = 0
	CodeCanceled = 1
	CodeFailed   = 2
)

// Result is the immutable terminal outcome of a started payment. It is produced
// by the gateway exactly once per dispatched attempt.
type Result struct {
	Code    int
	Key     string // opaque confirmation key, present iff Code == CodeSuccess
	Message string
}

// ResultCallback receives the terminal outcome of a payment. It is invoked at
// most once per started payment.
type ResultCallback func(Result)

func (r Result) Success() bool { return r.Code == CodeSuccess }

// Err returns nil for a successful result and a *TerminalError otherwise.
func (r Result) Err() error {
	if r.Success() {
		return nil
	}
	return &TerminalError{Code: r.Code, Message: r.Message}
}

func SuccessResult(key string) Result {
	return Result{Code: CodeSuccess, Key: key}
}

func CanceledResult(message string) Result {
	return Result{Code: CodeCanceled, Message: message}
}

func FailedResult(message string) Result {
	return Result{Code: CodeFailed, Message: message}
}
