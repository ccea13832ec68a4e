package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadFillsDefaults(t *testing.T) {
	p := writeFile(t, "run.yaml", "variant: triangle\nseed: 7\nrecord:\n  dir: /tmp/rounds\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Variant != "triangle" || cfg.Seed != 7 || cfg.Record.Dir != "/tmp/rounds" {
		t.Fatalf("Load() = %+v", cfg)
	}
	if cfg.Budget != 1000 || cfg.Period() != 50*time.Millisecond {
		t.Fatalf("defaults not applied: budget=%d period=%v", cfg.Budget, cfg.Period())
	}
	if cfg.Window.Width != 320 || cfg.Headless.Hz != 60 {
		t.Fatalf("nested defaults not applied: %+v %+v", cfg.Window, cfg.Headless)
	}
}

func TestLoadBadYAML(t *testing.T) {
	p := writeFile(t, "bad.yaml", "variant: [unclosed\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("Load(bad yaml) error = nil")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load(missing) = %v, want ErrNotExist", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate(defaults) = %v", err)
	}
	cfg.Variant = "spiral"
	if err := cfg.Validate(); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("Validate(spiral) = %v, want ErrUnknownVariant", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SPHERECULL_VARIANT", "triangle")
	t.Setenv("SPHERECULL_POINTS", "250")
	t.Setenv("SPHERECULL_SEED", "99")
	t.Setenv("SPHERECULL_S3_BUCKET", "renders")
	t.Setenv("AWS_ACCESS_KEY_ID", "key")

	cfg := Defaults()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Variant != "triangle" || cfg.Points != 250 || cfg.Seed != 99 {
		t.Fatalf("ApplyEnv() = %+v", cfg)
	}
	if !cfg.Snapshot.S3.Enabled() || cfg.Snapshot.S3.AccessKey != "key" {
		t.Fatalf("S3 = %+v", cfg.Snapshot.S3)
	}
	sc := cfg.Sim()
	if sc.Variant != "triangle" || sc.Points != 250 || sc.Period != 50*time.Millisecond {
		t.Fatalf("Sim() = %+v", sc)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	t.Setenv("SPHERECULL_BUDGET", "lots")
	cfg := Defaults()
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatalf("ApplyEnv(bad budget) error = nil")
	}
}

func TestLoadEnv(t *testing.T) {
	const key = "SPHERECULL_TEST_DOTENV"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	p := writeFile(t, ".env", key+"=from-file\n")
	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"), p); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Fatalf("%s = %q, want from-file", key, got)
	}
}
