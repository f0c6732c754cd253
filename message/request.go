package message

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Route identifies an in-process handler: the namespace it lives under, an
// optional directory (sub-namespace), and the handler name. Empty when the
// request targets an external URI.
type Route struct {
	Namespace string
	Directory string
	Handler   string
}

// Request is an outbound request message.
//
// A request is consumed once per dispatch attempt. Automatic re-execution
// (redirect following) always derives a fresh Request; the original is never
// mutated in place.
type Request struct {
	// ID uniquely identifies this request for logging and the
	// active-request tracker.
	ID string
	// Method is the HTTP method. Defaults to GET.
	Method string
	// URL is the target URI.
	URL *url.URL
	// Header is the ordered, case-insensitive request header map.
	Header *Header
	// Query holds URL query parameters merged into the target on send.
	Query url.Values
	// Post holds form fields, encoded as application/x-www-form-urlencoded
	// by the external transport when Body is empty.
	Post url.Values
	// Body is the raw request body.
	Body []byte
	// Proto is the protocol version, e.g. "HTTP/1.1".
	Proto string
	// Cookies are sent with the request.
	Cookies []*http.Cookie
	// Route addresses an in-process handler for internal dispatch.
	Route Route
}

// NewRequest creates a request for the given target URI with a fresh ID and
// GET defaults.
func NewRequest(target string) (*Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("message: parse request target %q: %w", target, err)
	}
	return &Request{
		ID:     uuid.NewString(),
		Method: http.MethodGet,
		URL:    u,
		Header: NewHeader(),
		Query:  url.Values{},
		Post:   url.Values{},
		Proto:  "HTTP/1.1",
	}, nil
}

// Derive creates a new request for target carrying a fresh ID and this
// request's protocol version. Headers, body, and form fields start empty;
// the caller copies over what its policy allows.
func (r *Request) Derive(target *url.URL) *Request {
	return &Request{
		ID:     uuid.NewString(),
		Method: r.Method,
		URL:    target,
		Header: NewHeader(),
		Query:  url.Values{},
		Post:   url.Values{},
		Proto:  r.Proto,
		Route:  r.Route,
	}
}

// TargetString returns the target URI with query parameters applied.
func (r *Request) TargetString() string {
	if r.URL == nil {
		return ""
	}
	u := *r.URL
	if len(r.Query) > 0 {
		q := u.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// AddCookie appends a cookie to the request.
func (r *Request) AddCookie(c *http.Cookie) {
	r.Cookies = append(r.Cookies, c)
}
