package message

import "net/http"

// Response is the result of one dispatch attempt. Transports create a fresh
// Response per attempt; a header callback may swap it wholesale.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// Header is the ordered, case-insensitive response header map.
	Header *Header
	// Body is the raw response body.
	Body []byte
	// Proto is the protocol version reported by the server.
	Proto string
	// Cookies were set by the server.
	Cookies []*http.Cookie
}

// NewResponse creates an empty 200 response shell.
func NewResponse() *Response {
	return &Response{
		Status: http.StatusOK,
		Header: NewHeader(),
		Proto:  "HTTP/1.1",
	}
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	c := &Response{
		Status: r.Status,
		Proto:  r.Proto,
	}
	if r.Header != nil {
		c.Header = r.Header.Clone()
	} else {
		c.Header = NewHeader()
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	if r.Cookies != nil {
		c.Cookies = append([]*http.Cookie(nil), r.Cookies...)
	}
	return c
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsRedirect returns true if the status code is 3xx.
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.Status >= 400
}
