package dispatch

import (
	"context"
	"fmt"

	"github.com/modseven/dispatch/errors"
	"github.com/modseven/dispatch/logger"
	"github.com/modseven/dispatch/message"
)

// Internal dispatches a request to an in-process handler resolved from a
// registry. It never lets an error escape: dispatch failures of every kind
// are rendered as response messages, so the caller always receives a
// response from this transport.
type Internal struct {
	handlers *HandlerRegistry
	tracker  *RequestTracker
	log      *logger.Logger
}

// InternalOption customizes an Internal transport.
type InternalOption func(*Internal)

// WithTracker replaces the shared default active-request tracker. Use an
// independent tracker per execution context when dispatching concurrently.
func WithTracker(t *RequestTracker) InternalOption {
	return func(i *Internal) { i.tracker = t }
}

// NewInternal creates an internal transport over the given handler registry.
func NewInternal(handlers *HandlerRegistry, opts ...InternalOption) *Internal {
	t := &Internal{
		handlers: handlers,
		tracker:  defaultTracker,
		log:      logger.WithComponent("dispatch.internal"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tracker returns the active-request tracker used by this transport.
func (t *Internal) Tracker() *RequestTracker {
	return t.tracker
}

// ExecuteRequest resolves and invokes the handler addressed by the request
// route. The active request is saved before dispatch and restored on every
// exit path. The returned error is always nil; failures surface as error
// responses.
func (t *Internal) ExecuteRequest(ctx context.Context, req *message.Request, resp *message.Response) (*message.Response, error) {
	t.tracker.Push(req)
	defer t.tracker.Pop()

	factory, ok := t.handlers.Lookup(req.Route)
	if !ok {
		nf := NewNotFoundError(req.TargetString())
		t.log.Debug("no handler for route", logger.Fields(
			logger.FieldRequestID, req.ID,
			logger.FieldURI, req.TargetString(),
		))
		return nf.Response(), nil
	}

	out := t.dispatch(ctx, factory, req, resp)
	return out, nil
}

// dispatch invokes the handler and converts every failure mode into a
// response message. Domain status errors render through their own Response
// contract; anything else goes through the global translator.
func (t *Internal) dispatch(ctx context.Context, factory HandlerFactory, req *message.Request, resp *message.Response) (out *message.Response) {
	defer func() {
		if r := recover(); r != nil {
			err := NewDispatchError(fmt.Sprintf("handler panicked: %v", r))
			t.log.Error("handler panicked", logger.ErrorFields("dispatch", err))
			out = errors.Translate(err)
		}
	}()

	handler := factory(req, resp)
	if handler == nil {
		de := NewDispatchError(fmt.Sprintf("handler for %s is not instantiable", QualifiedName(req.Route)))
		return errors.Translate(de)
	}

	result, err := handler.Execute(ctx)
	if err != nil {
		return errors.Translate(err)
	}
	if result == nil {
		de := NewDispatchError(fmt.Sprintf("handler %s failed to return a response", QualifiedName(req.Route)))
		return errors.Translate(de)
	}
	return result
}
