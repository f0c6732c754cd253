// Package component defines lifecycle interfaces for managed pieces of the
// dispatch pipeline (clients, caches) and a registry that starts them in
// order and stops them in reverse.
package component
