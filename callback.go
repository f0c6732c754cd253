package dispatch

import (
	"context"

	"github.com/modseven/dispatch/message"
)

// CallbackResult is what a header callback hands back to the client.
// A nil result means "continue to the next callback". A Request triggers a
// nested execute on a child client with the depth counter incremented. A
// Response replaces the current response and halts callback iteration for
// this call.
type CallbackResult struct {
	Request  *message.Request
	Response *message.Response
}

// Callback is a header-triggered hook invoked when its header is present on
// the response.
type Callback func(ctx context.Context, c *Client, req *message.Request, resp *message.Response) (*CallbackResult, error)

type callbackEntry struct {
	header string
	fn     Callback
}

// CallbackRegistry is an ordered mapping from response header name to
// callback. Iteration follows insertion order; re-registering a header
// replaces the callback in place.
type CallbackRegistry struct {
	entries []callbackEntry
}

// NewCallbackRegistry creates a registry with the default Location entry.
func NewCallbackRegistry() *CallbackRegistry {
	r := &CallbackRegistry{}
	r.Register("Location", FollowLocation)
	return r
}

// NewEmptyCallbackRegistry creates a registry with no entries.
func NewEmptyCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{}
}

// Register adds or replaces the callback for header, preserving insertion
// order for existing entries.
func (r *CallbackRegistry) Register(header string, fn Callback) {
	for i := range r.entries {
		if r.entries[i].header == header {
			r.entries[i].fn = fn
			return
		}
	}
	r.entries = append(r.entries, callbackEntry{header: header, fn: fn})
}

// Deregister removes the callback for header.
func (r *CallbackRegistry) Deregister(header string) {
	for i := range r.entries {
		if r.entries[i].header == header {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered callbacks.
func (r *CallbackRegistry) Len() int {
	return len(r.entries)
}

// Clone returns a copy of the registry sharing the callback functions.
func (r *CallbackRegistry) Clone() *CallbackRegistry {
	return &CallbackRegistry{entries: append([]callbackEntry(nil), r.entries...)}
}
