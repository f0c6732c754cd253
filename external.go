package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/modseven/dispatch/logger"
	"github.com/modseven/dispatch/message"
)

// Driver is a wire-level transport. Send returns a populated response or a
// transport error wrapping the underlying I/O fault. Drivers never retry;
// the only automatic re-execution in the pipeline is redirect following,
// which belongs to the Client above.
type Driver interface {
	Name() string
	Send(ctx context.Context, req *message.Request, resp *message.Response) (*message.Response, error)
}

// Known driver names.
const (
	DriverNative = "native"
	DriverStream = "stream"
)

// --- driver registry ---

type driverEntry struct {
	driver   Driver
	priority int
}

var (
	driverMu sync.RWMutex
	drivers  = make(map[string]driverEntry)
)

// RegisterDriver adds a driver to the process-wide registry. The
// highest-priority driver becomes the default; registration normally
// happens at startup from driver init functions.
func RegisterDriver(d Driver, priority int) {
	driverMu.Lock()
	defer driverMu.Unlock()
	drivers[d.Name()] = driverEntry{driver: d, priority: priority}
}

// DriverByName returns the registered driver with the given name.
func DriverByName(name string) (Driver, bool) {
	driverMu.RLock()
	defer driverMu.RUnlock()
	e, ok := drivers[name]
	return e.driver, ok
}

// DefaultDriver returns the registered driver with the highest priority.
func DefaultDriver() Driver {
	driverMu.RLock()
	defer driverMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if drivers[names[i]].priority != drivers[names[j]].priority {
			return drivers[names[i]].priority > drivers[names[j]].priority
		}
		return names[i] < names[j]
	})
	if len(names) == 0 {
		return nil
	}
	return drivers[names[0]].driver
}

// --- external transport ---

// External executes requests over the wire through a Driver, applying the
// shared preprocessing every wire-level dispatch needs: form encoding,
// content length, and the optional exposed user agent.
type External struct {
	driver Driver
	expose bool
	log    *logger.Logger
}

// ExternalOption customizes an External transport.
type ExternalOption func(*External)

// WithDriver overrides the configured driver for this transport.
func WithDriver(d Driver) ExternalOption {
	return func(e *External) { e.driver = d }
}

// NewExternal creates an external transport. The driver is resolved from
// cfg.Driver, or the highest-priority registered driver when unset.
func NewExternal(cfg Config, opts ...ExternalOption) (*External, error) {
	e := &External{
		expose: cfg.Expose,
		log:    logger.WithComponent("dispatch.external"),
	}

	if cfg.Driver != "" {
		d, ok := DriverByName(cfg.Driver)
		if !ok {
			return nil, fmt.Errorf("dispatch: no driver registered under %q", cfg.Driver)
		}
		e.driver = d
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.driver == nil {
		e.driver = DefaultDriver()
	}
	if e.driver == nil {
		return nil, fmt.Errorf("dispatch: no external drivers registered")
	}

	return e, nil
}

// Driver returns the driver this transport sends through.
func (e *External) Driver() Driver {
	return e.driver
}

// ExecuteRequest applies the shared preprocessing and delegates to the
// driver.
func (e *External) ExecuteRequest(ctx context.Context, req *message.Request, resp *message.Response) (*message.Response, error) {
	e.prepare(req)

	e.log.Debug("sending external request", logger.Fields(
		logger.FieldRequestID, req.ID,
		logger.FieldMethod, req.Method,
		logger.FieldURI, req.TargetString(),
		logger.FieldDriver, e.driver.Name(),
	))

	return e.driver.Send(ctx, req, resp)
}

// Close releases driver resources, if the driver holds any.
func (e *External) Close(ctx context.Context) error {
	if cl, ok := e.driver.(Closeable); ok {
		return cl.Close(ctx)
	}
	return nil
}

// prepare performs the preprocessing shared by all drivers: encode form
// fields when no body is set, pin the content length to the final body, and
// expose the library user agent when configured.
func (e *External) prepare(req *message.Request) {
	if len(req.Post) > 0 && len(req.Body) == 0 {
		req.Body = []byte(req.Post.Encode())
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	req.Header.Set("Content-Length", strconv.Itoa(len(req.Body)))

	if e.expose {
		req.Header.Set("User-Agent", UserAgent())
	}
}
