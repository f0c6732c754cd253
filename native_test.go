package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modseven/dispatch/message"
)

func TestNativeDriver_Send_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected page=2, got %q", got)
		}
		if got := r.Header.Get("X-Token"); got != "abc" {
			t.Errorf("expected X-Token header, got %q", got)
		}
		w.Header().Set("X-Answer", "42")
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1"})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	req, err := message.NewRequest(srv.URL + "/items")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Query.Set("page", "2")
	req.Header.Set("X-Token", "abc")

	driver := NewNativeDriver()
	resp, err := driver.Send(context.Background(), req, message.NewResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.Status)
	}
	if string(resp.Body) != "payload" {
		t.Errorf("expected body mapped, got %q", string(resp.Body))
	}
	if got := resp.Header.Get("X-Answer"); got != "42" {
		t.Errorf("expected response header mapped, got %q", got)
	}
	if len(resp.Cookies) != 1 || resp.Cookies[0].Name != "session" {
		t.Errorf("expected session cookie mapped, got %v", resp.Cookies)
	}
}

func TestNativeDriver_Send_POSTBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "a=1&b=2" {
			t.Errorf("expected form body, got %q", string(body))
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	req, _ := message.NewRequest(srv.URL)
	req.Method = http.MethodPost
	req.Body = []byte("a=1&b=2")

	driver := NewNativeDriver()
	resp, err := driver.Send(context.Background(), req, message.NewResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.Status)
	}
}

func TestNativeDriver_Send_DoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
			return
		}
		t.Errorf("driver must not follow redirects, got request for %s", r.URL.Path)
	}))
	defer srv.Close()

	req, _ := message.NewRequest(srv.URL + "/start")

	driver := NewNativeDriver()
	resp, err := driver.Send(context.Background(), req, message.NewResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusFound {
		t.Errorf("expected raw 302 from driver, got %d", resp.Status)
	}
	if got := resp.Header.Get("Location"); got != "/elsewhere" {
		t.Errorf("expected Location preserved, got %q", got)
	}
}

func TestNativeDriver_Send_ConnectionFault(t *testing.T) {
	// Reserve a port and close it so the connection is refused.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	req, _ := message.NewRequest(target)

	driver := NewNativeDriver()
	_, err := driver.Send(context.Background(), req, message.NewResponse())
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestClient_EndToEnd_RedirectOverNative(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			w.Header().Set("Location", "/final")
			w.WriteHeader(http.StatusMovedPermanently)
		case "/final":
			_, _ = w.Write([]byte("made it"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := New(Config{Follow: true, Driver: DriverNative})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := message.NewRequest(srv.URL + "/start")
	resp, err := c.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("expected 200 after following redirect, got %d", resp.Status)
	}
	if string(resp.Body) != "made it" {
		t.Errorf("expected final body, got %q", string(resp.Body))
	}
}
