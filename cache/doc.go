// Package cache provides cache interceptors for the dispatch pipeline.
//
// A cache interceptor attached to a client fully replaces the transport and
// callback pipeline for a call: it answers fresh hits from storage and
// re-enters the client's raw execution on a miss. All freshness and
// staleness policy lives here.
package cache
