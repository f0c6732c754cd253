package cache

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/modseven/dispatch"
	"github.com/modseven/dispatch/component"
	"github.com/modseven/dispatch/logger"
	"github.com/modseven/dispatch/message"
)

// StatusHeader reports cache disposition on responses that passed through
// the interceptor.
const StatusHeader = "X-Cache-Status"

const (
	statusHit  = "HIT"
	statusMiss = "MISS"
)

// entry is one stored response with its expiry.
type entry struct {
	resp    *message.Response
	expires time.Time
}

// Memory is an in-memory TTL cache interceptor. Responses to safe requests
// are stored for their Cache-Control max-age, falling back to the default
// TTL; everything else bypasses the cache.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	log        *logger.Logger
}

// compile-time assertions
var _ dispatch.Cache = (*Memory)(nil)
var _ component.Component = (*Memory)(nil)

// NewMemory creates a memory cache with the given default TTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		log:        logger.WithComponent("dispatch.cache"),
	}
}

// Execute implements dispatch.Cache. Fresh hits are answered from storage;
// misses re-enter the client's raw execution and store the result when the
// response allows it.
func (m *Memory) Execute(ctx context.Context, c *dispatch.Client, req *message.Request, resp *message.Response) (*message.Response, error) {
	if !cacheableRequest(req) {
		return c.ExecuteRequest(ctx, req, resp)
	}

	key := req.Method + " " + req.TargetString()

	if !hasDirective(req.Header, "no-cache") {
		if hit, ok := m.lookup(key); ok {
			m.log.Debug("cache hit", logger.Fields(
				logger.FieldRequestID, req.ID,
				logger.FieldURI, req.TargetString(),
			))
			hit.Header.Set(StatusHeader, statusHit)
			return hit, nil
		}
	}

	out, err := c.ExecuteRequest(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	if ttl, ok := m.storableFor(out); ok {
		m.store(key, out.Clone(), ttl)
	}
	out.Header.Set(StatusHeader, statusMiss)

	return out, nil
}

// lookup returns a clone of the stored response when present and fresh.
func (m *Memory) lookup(key string) (*message.Response, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.resp.Clone(), true
}

func (m *Memory) store(key string, resp *message.Response, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{resp: resp, expires: time.Now().Add(ttl)}
}

// storableFor decides whether resp may be stored and for how long.
func (m *Memory) storableFor(resp *message.Response) (time.Duration, bool) {
	if resp.Status != http.StatusOK {
		return 0, false
	}
	if hasDirective(resp.Header, "no-store") || hasDirective(resp.Header, "no-cache") || hasDirective(resp.Header, "private") {
		return 0, false
	}
	if maxAge, ok := maxAge(resp.Header); ok {
		if maxAge <= 0 {
			return 0, false
		}
		return maxAge, true
	}
	if m.defaultTTL > 0 {
		return m.defaultTTL, true
	}
	return 0, false
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Purge drops all stored entries.
func (m *Memory) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

// --- component.Component ---

// Name returns the component name.
func (m *Memory) Name() string {
	return "dispatch-cache"
}

// Start is a no-op; the cache is ready on construction.
func (m *Memory) Start(_ context.Context) error {
	return nil
}

// Stop drops all stored entries.
func (m *Memory) Stop(_ context.Context) error {
	m.Purge()
	return nil
}

// Health reports the cache status and entry count.
func (m *Memory) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    m.Name(),
		Status:  component.StatusHealthy,
		Message: strconv.Itoa(m.Len()) + " entries",
	}
}

// --- freshness helpers ---

// cacheableRequest reports whether the request may be served from cache:
// safe methods only, and never when the caller sent no-store.
func cacheableRequest(req *message.Request) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	return !hasDirective(req.Header, "no-store")
}

// hasDirective reports whether the Cache-Control header carries the named
// directive.
func hasDirective(h *message.Header, directive string) bool {
	for _, part := range strings.Split(h.Get("Cache-Control"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(part), "=")
		if strings.EqualFold(name, directive) {
			return true
		}
	}
	return false
}

// maxAge extracts the max-age directive from Cache-Control.
func maxAge(h *message.Header) (time.Duration, bool) {
	for _, part := range strings.Split(h.Get("Cache-Control"), ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && strings.EqualFold(name, "max-age") {
			secs, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return 0, false
			}
			return time.Duration(secs) * time.Second, true
		}
	}
	return 0, false
}
