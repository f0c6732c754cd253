package dispatch

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/modseven/dispatch/message"
)

// recordingDriver captures the request as prepared by the external transport.
type recordingDriver struct {
	name string
	last *message.Request
}

func (d *recordingDriver) Name() string { return d.name }

func (d *recordingDriver) Send(_ context.Context, req *message.Request, resp *message.Response) (*message.Response, error) {
	d.last = req
	resp.Status = http.StatusOK
	return resp, nil
}

func TestExternal_Prepare_EncodesFormFields(t *testing.T) {
	driver := &recordingDriver{name: "recording"}
	ext, err := NewExternal(Config{}, WithDriver(driver))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := message.NewRequest("http://example.test/form")
	req.Method = http.MethodPost
	req.Post.Set("a", "1")
	req.Post.Set("b", "2")

	if _, err := ext.ExecuteRequest(context.Background(), req, message.NewResponse()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := url.ParseQuery(string(driver.last.Body))
	if err != nil {
		t.Fatalf("body is not form-encoded: %v", err)
	}
	if body.Get("a") != "1" || body.Get("b") != "2" {
		t.Errorf("unexpected form body %q", string(driver.last.Body))
	}
	if got := driver.last.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
		t.Errorf("expected form content type, got %q", got)
	}
}

func TestExternal_Prepare_DoesNotOverrideExistingBody(t *testing.T) {
	driver := &recordingDriver{name: "recording"}
	ext, err := NewExternal(Config{}, WithDriver(driver))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := message.NewRequest("http://example.test/raw")
	req.Method = http.MethodPost
	req.Body = []byte(`{"x":1}`)
	req.Post.Set("ignored", "yes")

	if _, err := ext.ExecuteRequest(context.Background(), req, message.NewResponse()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(driver.last.Body) != `{"x":1}` {
		t.Errorf("existing body must win over form fields, got %q", string(driver.last.Body))
	}
	if got := driver.last.Header.Get("Content-Length"); got != "7" {
		t.Errorf("expected content length 7, got %q", got)
	}
}

func TestExternal_Prepare_SetsContentLength(t *testing.T) {
	driver := &recordingDriver{name: "recording"}
	ext, err := NewExternal(Config{}, WithDriver(driver))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := message.NewRequest("http://example.test/empty")
	if _, err := ext.ExecuteRequest(context.Background(), req, message.NewResponse()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := driver.last.Header.Get("Content-Length"); got != "0" {
		t.Errorf("expected content length always set, got %q", got)
	}
}

func TestExternal_Expose_SetsUserAgent(t *testing.T) {
	driver := &recordingDriver{name: "recording"}
	ext, err := NewExternal(Config{Expose: true}, WithDriver(driver))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := message.NewRequest("http://example.test/")
	if _, err := ext.ExecuteRequest(context.Background(), req, message.NewResponse()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := driver.last.Header.Get("User-Agent"); got != UserAgent() {
		t.Errorf("expected exposed user agent %q, got %q", UserAgent(), got)
	}
}

func TestExternal_NoExpose_NoUserAgent(t *testing.T) {
	driver := &recordingDriver{name: "recording"}
	ext, err := NewExternal(Config{}, WithDriver(driver))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := message.NewRequest("http://example.test/")
	if _, err := ext.ExecuteRequest(context.Background(), req, message.NewResponse()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if driver.last.Header.Has("User-Agent") {
		t.Error("user agent must not be set when expose is disabled")
	}
}

func TestDriverRegistry_DefaultPrefersNative(t *testing.T) {
	d := DefaultDriver()
	if d == nil {
		t.Fatal("expected linked-in drivers to be registered")
	}
	if d.Name() != DriverNative {
		t.Errorf("expected native driver as default, got %q", d.Name())
	}
}

func TestDriverRegistry_LookupByName(t *testing.T) {
	if _, ok := DriverByName(DriverStream); !ok {
		t.Error("expected stream driver registered")
	}
	if _, ok := DriverByName(DriverNative); !ok {
		t.Error("expected native driver registered")
	}
	if _, ok := DriverByName("missing"); ok {
		t.Error("expected lookup miss for unknown driver")
	}
}

func TestNewExternal_ConfiguredDriver(t *testing.T) {
	ext, err := NewExternal(Config{Driver: DriverStream})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Driver().Name() != DriverStream {
		t.Errorf("expected configured stream driver, got %q", ext.Driver().Name())
	}
}

func TestNewExternal_UnknownDriver(t *testing.T) {
	if _, err := NewExternal(Config{Driver: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unregistered driver")
	}
}
