// Package util provides small generic helpers shared across the dispatch
// packages.
package util
