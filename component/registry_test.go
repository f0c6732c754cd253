package component

import (
	"context"
	"errors"
	"testing"
)

// fakeComponent records lifecycle transitions into a shared journal.
type fakeComponent struct {
	name     string
	journal  *[]string
	startErr error
	stopErr  error
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	*f.journal = append(*f.journal, "start "+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	*f.journal = append(*f.journal, "stop "+f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) Health {
	return Health{Name: f.name, Status: StatusHealthy}
}

func TestRegistry_StartStopOrder(t *testing.T) {
	var journal []string
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		if err := r.Register(&fakeComponent{name: name, journal: &journal}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"start a", "start b", "start c", "stop c", "stop b", "stop a"}
	if len(journal) != len(want) {
		t.Fatalf("journal = %v, want %v", journal, want)
	}
	for i := range want {
		if journal[i] != want[i] {
			t.Errorf("step %d: got %q, want %q", i, journal[i], want[i])
		}
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	var journal []string
	r := NewRegistry()
	if err := r.Register(&fakeComponent{name: "dup", journal: &journal}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "dup", journal: &journal}); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestRegistry_StartFailureStopsEarly(t *testing.T) {
	var journal []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "ok", journal: &journal})
	_ = r.Register(&fakeComponent{name: "broken", journal: &journal, startErr: errors.New("boom")})
	_ = r.Register(&fakeComponent{name: "never", journal: &journal})

	ctx := context.Background()
	if err := r.StartAll(ctx); err == nil {
		t.Fatal("expected start failure to surface")
	}

	for _, step := range journal {
		if step == "start never" {
			t.Error("components after the failure must not start")
		}
	}

	// Only started components are stopped.
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var stops []string
	for _, step := range journal {
		if step == "stop ok" || step == "stop never" || step == "stop broken" {
			stops = append(stops, step)
		}
	}
	if len(stops) != 1 || stops[0] != "stop ok" {
		t.Errorf("expected only the started component stopped, got %v", stops)
	}
}

func TestRegistry_StopCollectsErrors(t *testing.T) {
	var journal []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "flaky", journal: &journal, stopErr: errors.New("hang")})
	_ = r.Register(&fakeComponent{name: "fine", journal: &journal})

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.StopAll(ctx); err == nil {
		t.Fatal("expected stop errors to surface")
	}

	// The failing component must not block the rest of shutdown.
	var sawFine bool
	for _, step := range journal {
		if step == "stop fine" {
			sawFine = true
		}
	}
	if !sawFine {
		t.Error("expected remaining components stopped despite failure")
	}
}

func TestRegistry_GetAndHealth(t *testing.T) {
	var journal []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "cache", journal: &journal})

	if got := r.Get("cache"); got == nil || got.Name() != "cache" {
		t.Errorf("expected lookup by name, got %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("expected nil for unknown name, got %v", got)
	}

	health := r.HealthAll(context.Background())
	if len(health) != 1 || health[0].Status != StatusHealthy {
		t.Errorf("unexpected health report: %v", health)
	}

	if all := r.All(); len(all) != 1 {
		t.Errorf("expected one component, got %d", len(all))
	}
}
