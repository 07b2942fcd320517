package logging

import (
	"fmt"
	"sync"
)

// Sink receives one diagnostic message per call.
type Sink func(msg string)

// Registry is an append-only, ordered list of diagnostic sinks. Sinks are never
// removed and never deduplicated: a sink registered twice receives every message
// twice. Broadcast is synchronous, in registration order, and best-effort — a
// panicking sink is isolated so that logging can never raise into the caller.
type Registry struct {
	mu    sync.Mutex
	sinks []Sink
}

func NewRegistry() *Registry {
	return &Registry{}
}

// AddLogger appends a sink to the registry. There is no removal API.
func (r *Registry) AddLogger(sink Sink) {
	if sink == nil {
		return
	}
	r.mu.Lock()
	r.sinks = append(r.sinks, sink)
	r.mu.Unlock()
}

// Log broadcasts msg to every registered sink, in registration order.
func (r *Registry) Log(msg string) {
	r.mu.Lock()
	sinks := append([]Sink(nil), r.sinks...)
	r.mu.Unlock()

	for _, sink := range sinks {
		invoke(sink, msg)
	}
}

// Logf formats the message and broadcasts it.
func (r *Registry) Logf(format string, args ...any) {
	r.Log(fmt.Sprintf(format, args...))
}

func invoke(sink Sink, msg string) {
	defer func() {
		_ = recover()
	}()
	sink(msg)
}
