package dispatch

import (
	"context"
	"strings"
	"sync"

	"github.com/modseven/dispatch/message"
	"github.com/modseven/dispatch/util"
)

// Handler is an in-process request handler. Implementations are constructed
// per dispatch with the request and response shell, and Execute returns the
// populated response.
type Handler interface {
	Execute(ctx context.Context) (*message.Response, error)
}

// HandlerFactory constructs a handler for one dispatch attempt. Returning
// nil marks the handler as non-instantiable and fails the dispatch.
type HandlerFactory func(req *message.Request, resp *message.Response) Handler

// HandlerRegistry maps routes to handler factories. It is populated at
// startup and looked up at dispatch time, replacing runtime string-to-type
// resolution with explicit registration.
type HandlerRegistry struct {
	mu        sync.RWMutex
	factories map[string]HandlerFactory
}

// NewHandlerRegistry creates an empty handler registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{factories: make(map[string]HandlerFactory)}
}

// Register binds a factory to a route. Later registrations for the same
// route replace earlier ones.
func (r *HandlerRegistry) Register(route message.Route, factory HandlerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[QualifiedName(route)] = factory
}

// Lookup resolves the factory for a route.
func (r *HandlerRegistry) Lookup(route message.Route) (HandlerFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[QualifiedName(route)]
	return f, ok
}

// Len returns the number of registered handlers.
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// QualifiedName builds the fully-qualified handler identifier for a route:
//
//	<namespace>::Handler::[<directory>::]<Name>
//
// The handler name is PascalCased; any "/" inside it separates further
// nested sub-namespace segments, each PascalCased in turn. For example
// {Namespace: "app", Directory: "admin", Handler: "user/profile_view"}
// yields "app::Handler::Admin::User::ProfileView".
func QualifiedName(route message.Route) string {
	var b strings.Builder
	b.WriteString(route.Namespace)
	b.WriteString("::Handler::")
	if route.Directory != "" {
		b.WriteString(util.PascalCase(route.Directory))
		b.WriteString("::")
	}
	segments := strings.Split(route.Handler, "/")
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(util.PascalCase(seg))
	}
	return b.String()
}

// HandlerFunc adapts a plain function to the Handler contract.
type HandlerFunc func(ctx context.Context) (*message.Response, error)

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context) (*message.Response, error) {
	return f(ctx)
}
