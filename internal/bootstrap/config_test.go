package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupDefaults(t *testing.T) {
	cfg, err := Setup(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if cfg.StorageBackend != BackendFS {
		t.Fatalf("expected fs backend, got %q", cfg.StorageBackend)
	}
	if cfg.SaveVersion != 48 {
		t.Fatalf("expected save version 48, got %d", cfg.SaveVersion)
	}
	if !cfg.StagedLoad {
		t.Fatalf("expected staged load by default")
	}
}

func TestSetupReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORAGE_BACKEND=redis\nREDIS_PREFIX=slots\nSERVER_PORT=9090\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Setup(path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if cfg.StorageBackend != BackendRedis || cfg.RedisPrefix != "slots" || cfg.ServerPort != "9090" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestSetupEnvOverrides(t *testing.T) {
	t.Setenv("SAVE_DIR", "/tmp/elsewhere")
	cfg, err := Setup("")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if cfg.SaveDir != "/tmp/elsewhere" {
		t.Fatalf("expected env override, got %q", cfg.SaveDir)
	}
}
