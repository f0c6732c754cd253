package dispatch

import (
	"context"

	"github.com/modseven/dispatch/component"
	"github.com/modseven/dispatch/util"
)

// Component wraps a Client with lifecycle management for use in a managed
// application. The client is created lazily in Start.
type Component struct {
	client *Client
	name   string
	config Config
	opts   []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new client component.
func NewComponent(name string, cfg Config, opts ...Option) *Component {
	return &Component{name: name, config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	return util.Coalesce(c.name, "dispatch")
}

// Start creates the client.
func (c *Component) Start(_ context.Context) error {
	cl, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.client = cl
	return nil
}

// Stop releases transport resources.
func (c *Component) Stop(ctx context.Context) error {
	if c.client != nil {
		return c.client.Close(ctx)
	}
	return nil
}

// Health reports whether the client is ready.
func (c *Component) Health(_ context.Context) component.Health {
	status := component.StatusHealthy
	if c.client == nil {
		status = component.StatusUnhealthy
	}
	return component.Health{
		Name:   c.Name(),
		Status: status,
	}
}

// Describe returns the component description for startup reporting.
func (c *Component) Describe() component.Description {
	details := c.config.Driver
	if details == "" {
		if d := DefaultDriver(); d != nil {
			details = d.Name()
		}
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "client",
		Details: details,
	}
}

// Client returns the underlying client. Must be called after Start.
func (c *Component) Client() *Client {
	return c.client
}
