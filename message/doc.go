// Package message provides the request and response value objects exchanged
// by the dispatch pipeline.
//
// Request and Response are plain data carriers: method, target URI, an
// ordered case-insensitive header multimap, query and form parameters, body,
// protocol version, cookies, and status. Transports populate them, the
// client's callback chain inspects them, and callers consume them. A
// redirect never mutates the original request; it derives a new one.
package message
