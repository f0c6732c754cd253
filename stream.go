package dispatch

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/modseven/dispatch/message"
)

// streamDriverPriority keeps the stream driver as the fallback behind the
// native driver.
const streamDriverPriority = 50

func init() {
	RegisterDriver(NewStreamDriver(), streamDriverPriority)
}

// StreamDriver speaks HTTP/1.1 over a raw socket: it writes the request
// head and body itself and parses the status line, headers, and body from
// the stream. The connection is closed on every exit path, including parse
// failure.
type StreamDriver struct {
	dialer    net.Dialer
	tlsConfig *tls.Config
}

// NewStreamDriver creates a stream driver.
func NewStreamDriver() *StreamDriver {
	return &StreamDriver{}
}

// Name returns the driver name.
func (d *StreamDriver) Name() string {
	return DriverStream
}

// Send opens a connection to the target, writes the request, and reads the
// response. GET requests open the stream read-only: no body is written.
func (d *StreamDriver) Send(ctx context.Context, req *message.Request, resp *message.Response) (*message.Response, error) {
	if req.URL == nil {
		return nil, NewTransportError("request has no target", nil)
	}

	addr, useTLS, err := dialAddress(req.URL)
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("resolve target %s", req.URL), err)
	}

	conn, err := d.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("open stream to %s", addr), err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if useTLS {
		tlsConn := tls.Client(conn, d.clientTLSConfig(req.URL.Hostname()))
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, NewTransportError(fmt.Sprintf("tls handshake with %s", addr), err)
		}
		conn = tlsConn
	}

	if err := d.writeRequest(conn, req); err != nil {
		return nil, NewTransportError(fmt.Sprintf("write request to %s", addr), err)
	}

	return d.readResponse(conn, resp)
}

// clientTLSConfig returns the TLS configuration for serverName.
func (d *StreamDriver) clientTLSConfig(serverName string) *tls.Config {
	if d.tlsConfig != nil {
		cfg := d.tlsConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = serverName
		}
		return cfg
	}
	return &tls.Config{ServerName: serverName}
}

// writeRequest serializes the request head and, for non-GET methods, the
// body.
func (d *StreamDriver) writeRequest(conn net.Conn, req *message.Request) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", req.Method, requestTarget(req))

	head := req.Header.Clone()
	if !head.Has("Host") {
		head.Set("Host", req.URL.Host)
	}
	// Connection: close lets the body be read to EOF.
	head.Set("Connection", "close")
	if len(req.Cookies) > 0 && !head.Has("Cookie") {
		pairs := make([]string, 0, len(req.Cookies))
		for _, c := range req.Cookies {
			pairs = append(pairs, c.Name+"="+c.Value)
		}
		head.Set("Cookie", strings.Join(pairs, "; "))
	}
	head.WriteTo(&b)
	b.WriteString("\r\n")

	if _, err := io.WriteString(conn, b.String()); err != nil {
		return err
	}

	if req.Method != http.MethodGet && len(req.Body) > 0 {
		if _, err := conn.Write(req.Body); err != nil {
			return err
		}
	}
	return nil
}

// readResponse parses the status line, headers, and body from the stream.
func (d *StreamDriver) readResponse(conn net.Conn, resp *message.Response) (*message.Response, error) {
	br := bufio.NewReader(conn)

	line, err := readLine(br)
	if err != nil {
		return nil, NewTransportError("read status line", err)
	}
	proto, status, err := parseStatusLine(line)
	if err != nil {
		return nil, NewTransportError("parse status line", err)
	}

	header, err := readHeaders(br)
	if err != nil {
		return nil, NewTransportError("read response headers", err)
	}

	body, err := readBody(br, header)
	if err != nil {
		return nil, NewTransportError("read response body", err)
	}

	resp.Proto = proto
	resp.Status = status
	resp.Header = header
	resp.Body = body
	resp.Cookies = (&http.Response{Header: header.ToHTTP()}).Cookies()

	return resp, nil
}

// requestTarget returns the origin-form request target including merged
// query parameters.
func requestTarget(req *message.Request) string {
	u := *req.URL
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	target := u.EscapedPath()
	if target == "" {
		target = "/"
	}
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}

// dialAddress returns the host:port to dial and whether TLS is required.
func dialAddress(u *url.URL) (string, bool, error) {
	host := u.Hostname()
	if host == "" {
		return "", false, fmt.Errorf("missing host in %q", u.String())
	}
	port := u.Port()
	switch u.Scheme {
	case "http":
		if port == "" {
			port = "80"
		}
		return net.JoinHostPort(host, port), false, nil
	case "https":
		if port == "" {
			port = "443"
		}
		return net.JoinHostPort(host, port), true, nil
	default:
		return "", false, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

// parseStatusLine parses an HTTP/1.x status line:
//
//	HTTP/<major>.<minor> SP <3-digit status> [SP <reason>]
//
// The reason phrase is optional and may be empty.
func parseStatusLine(line string) (proto string, status int, err error) {
	rest := line
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		proto, rest = rest[:i], rest[i+1:]
	} else {
		return "", 0, fmt.Errorf("malformed status line %q", line)
	}

	if !validProto(proto) {
		return "", 0, fmt.Errorf("malformed protocol version in status line %q", line)
	}

	code := rest
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		code = rest[:i]
	}
	if len(code) != 3 {
		return "", 0, fmt.Errorf("malformed status code in status line %q", line)
	}
	status, err = strconv.Atoi(code)
	if err != nil || status < 100 {
		return "", 0, fmt.Errorf("malformed status code in status line %q", line)
	}

	return proto, status, nil
}

// validProto reports whether proto matches HTTP/<digit>.<digit> or
// HTTP/<digit>.
func validProto(proto string) bool {
	rest, ok := strings.CutPrefix(proto, "HTTP/")
	if !ok || rest == "" {
		return false
	}
	major, minor, hasMinor := strings.Cut(rest, ".")
	if !isDigits(major) {
		return false
	}
	if hasMinor && !isDigits(minor) {
		return false
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// readHeaders reads "Name: value" lines until the blank line, preserving
// their order.
func readHeaders(br *bufio.Reader) (*message.Header, error) {
	header := message.NewHeader()
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return header, nil
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
}

// readBody reads the response body: exactly Content-Length bytes when
// declared, dechunked when chunked, otherwise everything until EOF.
func readBody(br *bufio.Reader, header *message.Header) ([]byte, error) {
	if strings.EqualFold(header.Get("Transfer-Encoding"), "chunked") {
		return io.ReadAll(httputil.NewChunkedReader(br))
	}
	if cl := header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("malformed Content-Length %q", cl)
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(br, body); err != nil {
			return nil, err
		}
		return body, nil
	}
	return io.ReadAll(br)
}

// readLine reads one CRLF-terminated line, tolerating bare LF.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
