// Package testutil provides helpers for testing lifecycle-managed
// components: start/stop plumbing with automatic cleanup through testing.T.
package testutil
