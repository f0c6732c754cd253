package dispatch

import (
	"sync"

	"github.com/modseven/dispatch/message"
)

// RequestTracker records the currently active request chain for diagnostic
// tooling. The internal transport pushes a request before dispatching its
// handler and pops it on every exit path, so Current always reflects the
// innermost request even when a handler issues a nested dispatch.
//
// The tracker assumes one active request chain per execution context;
// concurrent top-level calls must use independent trackers.
type RequestTracker struct {
	mu    sync.Mutex
	stack []*message.Request
}

// NewRequestTracker creates an empty tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{}
}

// Push records req as the currently active request, saving the previous one.
func (t *RequestTracker) Push(req *message.Request) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stack = append(t.stack, req)
}

// Pop restores the previously active request.
func (t *RequestTracker) Pop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.stack); n > 0 {
		t.stack[n-1] = nil
		t.stack = t.stack[:n-1]
	}
}

// Current returns the innermost active request, or nil when no dispatch is
// in flight.
func (t *RequestTracker) Current() *message.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.stack); n > 0 {
		return t.stack[n-1]
	}
	return nil
}

// Depth returns the number of nested requests currently in flight.
func (t *RequestTracker) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stack)
}

// Initial returns the outermost request of the active chain, or nil.
func (t *RequestTracker) Initial() *message.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.stack) > 0 {
		return t.stack[0]
	}
	return nil
}

// defaultTracker backs CurrentRequest for internal transports that are not
// given their own tracker.
var defaultTracker = NewRequestTracker()

// CurrentRequest returns the innermost request being dispatched through
// internal transports using the shared default tracker.
func CurrentRequest() *message.Request {
	return defaultTracker.Current()
}

// InitialRequest returns the outermost request of the active chain on the
// shared default tracker.
func InitialRequest() *message.Request {
	return defaultTracker.Initial()
}
