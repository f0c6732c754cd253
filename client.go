package dispatch

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/modseven/dispatch/logger"
	"github.com/modseven/dispatch/message"
)

const tracerName = "github.com/modseven/dispatch"

// Client orchestrates request execution: recursion bookkeeping, optional
// cache delegation, transport invocation, and the header callback chain.
//
// A Client and its derived children belong to one logical call chain.
// Concurrent top-level calls must use independent Client instances.
type Client struct {
	config         Config
	strategy       Strategy
	cache          Cache
	callbacks      *CallbackRegistry
	callbackParams map[string]any
	callbackDepth  int
	log            *logger.Logger
	tracer         trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithStrategy sets the transport strategy. Defaults to an External
// transport using the highest-priority registered driver.
func WithStrategy(s Strategy) Option {
	return func(c *Client) { c.strategy = s }
}

// WithCache attaches a cache interceptor. When present, the cache fully
// replaces the transport and callback pipeline for each call.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithCallbacks replaces the callback registry.
func WithCallbacks(r *CallbackRegistry) Option {
	return func(c *Client) { c.callbacks = r }
}

// WithCallback registers a single header callback.
func WithCallback(header string, fn Callback) Option {
	return func(c *Client) { c.callbacks.Register(header, fn) }
}

// WithCallbackParam sets an opaque parameter propagated to child clients.
func WithCallbackParam(key string, value any) Option {
	return func(c *Client) { c.callbackParams[key] = value }
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:         cfg,
		callbacks:      NewCallbackRegistry(),
		callbackParams: make(map[string]any),
		callbackDepth:  1,
		log:            logger.WithComponent("dispatch.client"),
		tracer:         otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.strategy == nil {
		ext, err := NewExternal(cfg)
		if err != nil {
			return nil, err
		}
		c.strategy = ext
	}

	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// Cache returns the attached cache interceptor, or nil.
func (c *Client) Cache() Cache {
	return c.cache
}

// Strategy returns the active transport strategy.
func (c *Client) Strategy() Strategy {
	return c.strategy
}

// Callbacks returns the callback registry.
func (c *Client) Callbacks() *CallbackRegistry {
	return c.callbacks
}

// CallbackDepth returns the current chained re-execution depth, starting
// at 1 for a top-level call.
func (c *Client) CallbackDepth() int {
	return c.callbackDepth
}

// CallbackParam returns an opaque parameter set on this call chain.
func (c *Client) CallbackParam(key string) any {
	return c.callbackParams[key]
}

// SetCallbackParam sets an opaque parameter on this call chain.
func (c *Client) SetCallbackParam(key string, value any) {
	c.callbackParams[key] = value
}

// Execute processes the request and returns the final response.
//
// Order of operations: recursion guard, cache delegation (which replaces
// everything below when a cache is attached), transport invocation, then
// the callback chain. A callback deriving a new request re-enters Execute
// on a child client with the depth counter incremented.
func (c *Client) Execute(ctx context.Context, req *message.Request) (*message.Response, error) {
	ctx, span := c.tracer.Start(ctx, "dispatch.execute", trace.WithAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", req.TargetString()),
		attribute.Int("dispatch.depth", c.callbackDepth),
	))
	defer span.End()

	if c.callbackDepth > c.config.MaxCallbackDepth {
		err := NewRecursionError(req.TargetString(), c.callbackDepth)
		span.RecordError(err)
		return nil, err
	}

	resp := message.NewResponse()

	if c.cache != nil {
		c.log.Debug("delegating to cache interceptor", logger.Fields(
			logger.FieldRequestID, req.ID,
			logger.FieldURI, req.TargetString(),
		))
		return c.cache.Execute(ctx, c, req, resp)
	}

	return c.ExecuteRequest(ctx, req, resp)
}

// ExecuteRequest runs the transport and the callback chain, bypassing any
// attached cache. Cache interceptors call this on a miss.
func (c *Client) ExecuteRequest(ctx context.Context, req *message.Request, resp *message.Response) (*message.Response, error) {
	out, err := c.strategy.ExecuteRequest(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	for _, entry := range c.callbacks.entries {
		if !out.Header.Has(entry.header) {
			continue
		}

		result, err := entry.fn(ctx, c, req, out)
		if err != nil {
			return nil, err
		}
		if result == nil {
			continue
		}

		if result.Request != nil {
			c.log.Debug("callback derived a new request", logger.Fields(
				logger.FieldRequestID, req.ID,
				logger.FieldURI, result.Request.TargetString(),
				logger.FieldDepth, c.callbackDepth+1,
			))
			return c.child().Execute(ctx, result.Request)
		}

		if result.Response != nil {
			out = result.Response
			break
		}
	}

	return out, nil
}

// Close releases resources held by the transport strategy, if any.
func (c *Client) Close(ctx context.Context) error {
	if cl, ok := c.strategy.(Closeable); ok {
		return cl.Close(ctx)
	}
	return nil
}

// child clones the client for a nested execution: every property is carried
// over and the depth counter is incremented. The parent's depth is never
// mutated.
func (c *Client) child() *Client {
	return &Client{
		config:         c.config,
		strategy:       c.strategy,
		cache:          c.cache,
		callbacks:      c.callbacks,
		callbackParams: c.callbackParams,
		callbackDepth:  c.callbackDepth + 1,
		log:            c.log,
		tracer:         c.tracer,
	}
}
