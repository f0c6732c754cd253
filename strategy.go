package dispatch

import (
	"context"

	"github.com/modseven/dispatch/message"
)

// Strategy converts a request message into a response message, either
// in-process or over a wire. The response shell passed in is the one the
// strategy should populate; it may also return a different instance.
type Strategy interface {
	ExecuteRequest(ctx context.Context, req *message.Request, resp *message.Response) (*message.Response, error)
}

// Cache fully replaces the transport and callback pipeline for a call when
// attached to a client. Implementations own all freshness and staleness
// policy and call back into Client.ExecuteRequest on a miss.
type Cache interface {
	Execute(ctx context.Context, c *Client, req *message.Request, resp *message.Response) (*message.Response, error)
}

// Closeable is optionally implemented by strategies and drivers holding
// releasable resources.
type Closeable interface {
	Close(ctx context.Context) error
}

// compile-time assertions
var _ Strategy = (*Internal)(nil)
var _ Strategy = (*External)(nil)
