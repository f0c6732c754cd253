package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoaderConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Client.MaxCallbackDepth != 5 {
		t.Errorf("expected default callback depth 5, got %d", cfg.Client.MaxCallbackDepth)
	}
	if len(cfg.Client.FollowHeaders) != 1 || cfg.Client.FollowHeaders[0] != "Authorization" {
		t.Errorf("expected default follow headers, got %v", cfg.Client.FollowHeaders)
	}
	if cfg.Logging.Level == "" {
		t.Error("expected logging defaults applied")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
client:
  driver: stream
  follow: true
  strict_redirect: true
  max_callback_depth: 3
`)

	cfg, err := Load(LoaderConfig{ConfigFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Logging.Level)
	}
	if cfg.Client.Driver != "stream" {
		t.Errorf("expected stream driver, got %q", cfg.Client.Driver)
	}
	if !cfg.Client.Follow || !cfg.Client.StrictRedirect {
		t.Error("expected follow and strict_redirect enabled")
	}
	if cfg.Client.MaxCallbackDepth != 3 {
		t.Errorf("expected depth 3, got %d", cfg.Client.MaxCallbackDepth)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
client:
  driver: native
`)
	t.Setenv("DISPATCH_CLIENT_DRIVER", "stream")

	cfg, err := Load(LoaderConfig{ConfigFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Client.Driver != "stream" {
		t.Errorf("expected env override to win, got %q", cfg.Client.Driver)
	}
}

func TestLoad_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_CLIENT_FOLLOW", "true")

	cfg, err := Load(LoaderConfig{EnvPrefix: "MYAPP"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Client.Follow {
		t.Error("expected follow enabled through prefixed env")
	}
}

func TestLoad_InvalidDriverRejected(t *testing.T) {
	path := writeConfig(t, `
client:
  driver: carrier-pigeon
`)

	if _, err := Load(LoaderConfig{ConfigFile: path}); err == nil {
		t.Fatal("expected validation error for unknown driver")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(LoaderConfig{ConfigFile: "/nonexistent/config.yml"}); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "app.env")
	if err := os.WriteFile(envPath, []byte("DISPATCH_CLIENT_EXPOSE=true\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DISPATCH_CLIENT_EXPOSE") })

	cfg, err := Load(LoaderConfig{EnvFile: envPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Client.Expose {
		t.Error("expected expose enabled via env file")
	}
}
