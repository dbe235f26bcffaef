package configx

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"listen_addr": ":9000", "rate_limit": 10}`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WAHAXTEST_LISTEN_ADDR", ":7000")

	config, err := Load(
		NewDefaults(map[string]any{
			"listen_addr": ":8080",
			"log_level":   "info",
		}),
		NewFileSource(path),
		NewEnvSource("WAHAXTEST_"),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// env > file > defaults
	if got := config.Get("listen_addr").AsString(); got != ":7000" {
		t.Errorf("listen_addr = %q, want :7000", got)
	}
	if got := config.Get("rate_limit").AsInt(); got != 10 {
		t.Errorf("rate_limit = %d, want 10", got)
	}
	if got := config.Get("log_level").AsString(); got != "info" {
		t.Errorf("log_level = %q, want info", got)
	}
}

func TestLoadNestedKeysFlatten(t *testing.T) {
	config, err := Load(NewDefaults(map[string]any{
		"server": map[string]any{"addr": ":8080", "timeout": "30s"},
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := config.Get("server.addr").AsString(); got != ":8080" {
		t.Errorf("server.addr = %q", got)
	}
	if got := config.Get("server.timeout").AsDurationDefault(0); got != 30*time.Second {
		t.Errorf("server.timeout = %v", got)
	}
}

func TestMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.json")

	if _, err := Load(NewFileSource(missing)); err == nil {
		t.Error("required missing file should fail")
	}

	config, err := Load(
		NewDefaults(map[string]any{"log_level": "debug"}),
		NewOptionalFileSource(missing),
	)
	if err != nil {
		t.Fatalf("optional missing file should not fail: %v", err)
	}
	if got := config.Get("log_level").AsString(); got != "debug" {
		t.Errorf("log_level = %q", got)
	}
}

func TestValueConversions(t *testing.T) {
	config, err := Load(NewDefaults(map[string]any{
		"count":    float64(42), // JSON numbers arrive as float64
		"enabled":  "true",
		"interval": "90s",
		"seconds":  15,
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := config.Get("count").AsInt(); got != 42 {
		t.Errorf("count = %d", got)
	}
	if !config.Get("enabled").AsBool() {
		t.Error("enabled should parse as true")
	}
	if got := config.Get("interval").AsDurationDefault(0); got != 90*time.Second {
		t.Errorf("interval = %v", got)
	}
	if got := config.Get("seconds").AsDurationDefault(0); got != 15*time.Second {
		t.Errorf("seconds = %v", got)
	}

	unset := config.Get("missing")
	if unset.IsSet() {
		t.Error("missing key should not be set")
	}
	if got := unset.AsIntDefault(7); got != 7 {
		t.Errorf("AsIntDefault = %d, want 7", got)
	}
	if got := unset.AsStringDefault("fallback"); got != "fallback" {
		t.Errorf("AsStringDefault = %q", got)
	}
}
