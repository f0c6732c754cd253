// Package logger provides structured logging for the dispatch pipeline,
// built on zerolog.
//
// A global logger serves package-level convenience functions; components tag
// their output with WithComponent. Configuration controls level, format
// (json or console), and output destination.
package logger
