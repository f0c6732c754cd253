// Package errors provides the domain HTTP-status error contract used by the
// internal transport: structured errors that know how to render themselves
// as response messages, plus a global best-effort translator for everything
// else.
package errors
