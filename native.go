package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/modseven/dispatch/message"
)

// nativeDriverPriority makes the native driver the preferred default.
const nativeDriverPriority = 100

func init() {
	RegisterDriver(NewNativeDriver(), nativeDriverPriority)
}

// NativeDriver sends requests through net/http. Automatic redirect
// following is disabled at this level: redirect policy belongs to the
// Client's callback chain, so the driver hands back 3xx responses as-is.
type NativeDriver struct {
	client *http.Client
}

// NewNativeDriver creates a native driver with its own http.Client. No
// timeout is set; callers wanting one supply a deadline context.
func NewNativeDriver() *NativeDriver {
	return &NativeDriver{
		client: &http.Client{
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Name returns the driver name.
func (d *NativeDriver) Name() string {
	return DriverNative
}

// Send builds and sends the request, mapping the low-level response onto
// the response message.
func (d *NativeDriver) Send(ctx context.Context, req *message.Request, resp *message.Response) (*message.Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.TargetString(), body)
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("build request for %s", req.TargetString()), err)
	}

	for _, name := range req.Header.Names() {
		for _, v := range req.Header.Values(name) {
			httpReq.Header.Add(name, v)
		}
	}
	for _, c := range req.Cookies {
		httpReq.AddCookie(c)
	}

	httpResp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("send request to %s", req.TargetString()), err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewTransportError("read response body", err)
	}

	resp.Status = httpResp.StatusCode
	resp.Proto = httpResp.Proto
	resp.Header = message.FromHTTP(httpResp.Header)
	resp.Cookies = httpResp.Cookies()
	resp.Body = data

	return resp, nil
}

// Close releases idle connections held by the driver.
func (d *NativeDriver) Close(_ context.Context) error {
	d.client.CloseIdleConnections()
	return nil
}
