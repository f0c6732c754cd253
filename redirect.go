package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/modseven/dispatch/logger"
	"github.com/modseven/dispatch/message"
)

// followStatuses are the response statuses the Location callback acts upon.
var followStatuses = map[int]bool{
	http.StatusCreated:           true,
	http.StatusMovedPermanently:  true,
	http.StatusFound:             true,
	http.StatusSeeOther:          true,
	http.StatusTemporaryRedirect: true,
}

// FollowLocation is the default Location header callback. It derives a
// follow request according to HTTP redirect semantics when the client has
// Follow enabled, and leaves the response untouched otherwise.
//
// Method policy: 301 and 307 preserve the original method, 201 and 303
// force GET, and 302 preserves the method only when StrictRedirect is set.
// Only headers listed in FollowHeaders survive onto the follow request, and
// the original body is reattached when the follow method is not GET.
func FollowLocation(ctx context.Context, c *Client, req *message.Request, resp *message.Response) (*CallbackResult, error) {
	cfg := c.Config()
	if !cfg.Follow || !followStatuses[resp.Status] {
		return nil, nil
	}

	location := resp.Header.Get("Location")
	target, err := resolveRedirect(req.URL, location)
	if err != nil {
		return nil, NewRedirectError(location, err)
	}

	follow := req.Derive(target)
	follow.Method = followMethod(req.Method, resp.Status, cfg.StrictRedirect)

	for _, name := range cfg.FollowHeaders {
		if v := req.Header.Values(name); v != nil {
			for _, value := range v {
				follow.Header.Add(name, value)
			}
		}
	}

	if follow.Method != http.MethodGet {
		follow.Body = req.Body
		for k, vs := range req.Post {
			follow.Post[k] = append([]string(nil), vs...)
		}
	}

	c.log.Debug("following redirect", logger.Fields(
		logger.FieldRequestID, req.ID,
		logger.FieldStatus, resp.Status,
		logger.FieldMethod, follow.Method,
		logger.FieldURI, follow.TargetString(),
	))

	return &CallbackResult{Request: follow}, nil
}

// followMethod applies the redirect method policy for status.
func followMethod(method string, status int, strict bool) string {
	switch status {
	case http.StatusMovedPermanently, http.StatusTemporaryRedirect:
		return method
	case http.StatusCreated, http.StatusSeeOther:
		return http.MethodGet
	case http.StatusFound:
		if strict {
			return method
		}
		return http.MethodGet
	}
	return method
}

// resolveRedirect resolves a Location value against the original request
// URI. Relative targets are allowed; an unparsable or empty target is not.
func resolveRedirect(base *url.URL, location string) (*url.URL, error) {
	if location == "" {
		return nil, errEmptyLocation
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return ref, nil
	}
	return base.ResolveReference(ref), nil
}

var errEmptyLocation = errors.New("empty Location header")
