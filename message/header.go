package message

import (
	"net/http"
	"sort"
	"strings"
)

// Header is an ordered, case-insensitive header multimap.
//
// Unlike net/http.Header, insertion order is preserved: iterating with Names
// visits headers in the order they were first set. Lookup is case-insensitive
// and names are stored in canonical MIME form ("content-type" and
// "Content-Type" address the same entry).
type Header struct {
	entries []headerEntry
}

type headerEntry struct {
	name   string
	values []string
}

// NewHeader creates an empty header map.
func NewHeader() *Header {
	return &Header{}
}

func canonical(name string) string {
	return http.CanonicalHeaderKey(strings.TrimSpace(name))
}

func (h *Header) find(name string) int {
	for i := range h.entries {
		if h.entries[i].name == name {
			return i
		}
	}
	return -1
}

// Set replaces all values for name with value. An existing entry keeps its
// position; a new entry is appended.
func (h *Header) Set(name, value string) {
	name = canonical(name)
	if i := h.find(name); i >= 0 {
		h.entries[i].values = []string{value}
		return
	}
	h.entries = append(h.entries, headerEntry{name: name, values: []string{value}})
}

// Add appends value to the entry for name, creating it if absent.
func (h *Header) Add(name, value string) {
	name = canonical(name)
	if i := h.find(name); i >= 0 {
		h.entries[i].values = append(h.entries[i].values, value)
		return
	}
	h.entries = append(h.entries, headerEntry{name: name, values: []string{value}})
}

// Get returns the first value for name, or "" if absent.
func (h *Header) Get(name string) string {
	if i := h.find(canonical(name)); i >= 0 && len(h.entries[i].values) > 0 {
		return h.entries[i].values[0]
	}
	return ""
}

// Values returns all values for name in insertion order, or nil if absent.
func (h *Header) Values(name string) []string {
	if i := h.find(canonical(name)); i >= 0 {
		return append([]string(nil), h.entries[i].values...)
	}
	return nil
}

// Has reports whether an entry exists for name.
func (h *Header) Has(name string) bool {
	return h.find(canonical(name)) >= 0
}

// Del removes the entry for name.
func (h *Header) Del(name string) {
	if i := h.find(canonical(name)); i >= 0 {
		h.entries = append(h.entries[:i], h.entries[i+1:]...)
	}
}

// Names returns all header names in insertion order.
func (h *Header) Names() []string {
	names := make([]string, len(h.entries))
	for i := range h.entries {
		names[i] = h.entries[i].name
	}
	return names
}

// Len returns the number of distinct header names.
func (h *Header) Len() int {
	return len(h.entries)
}

// Clone returns a deep copy of the header map.
func (h *Header) Clone() *Header {
	c := &Header{entries: make([]headerEntry, len(h.entries))}
	for i := range h.entries {
		c.entries[i] = headerEntry{
			name:   h.entries[i].name,
			values: append([]string(nil), h.entries[i].values...),
		}
	}
	return c
}

// WriteTo serializes the headers as CRLF-terminated "Name: value" lines in
// insertion order, one line per value.
func (h *Header) WriteTo(b *strings.Builder) {
	for i := range h.entries {
		for _, v := range h.entries[i].values {
			b.WriteString(h.entries[i].name)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
}

// ToHTTP converts to a net/http.Header. Order is lost; use only at the
// boundary with the standard library.
func (h *Header) ToHTTP() http.Header {
	out := make(http.Header, len(h.entries))
	for i := range h.entries {
		for _, v := range h.entries[i].values {
			out.Add(h.entries[i].name, v)
		}
	}
	return out
}

// FromHTTP builds a Header from a net/http.Header. Entries are ordered by
// the canonical sorted key order since http.Header carries no order itself.
func FromHTTP(src http.Header) *Header {
	h := NewHeader()
	for _, name := range sortedKeys(src) {
		for _, v := range src[name] {
			h.Add(name, v)
		}
	}
	return h
}

func sortedKeys(src http.Header) []string {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
