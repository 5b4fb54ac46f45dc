package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"packagekit/internal/config"
)

// NewConfig produces a config whose helper directory and lock file live in a
// per-test temp directory.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Backend.Name = "test"
	cfg.Backend.HelperDir = filepath.Join(base, "helpers")
	cfg.Backend.LockPath = filepath.Join(base, "backend.lock")
	cfg.Backend.CancelGraceSeconds = 2
	if err := os.MkdirAll(filepath.Join(cfg.Backend.HelperDir, cfg.Backend.Name), 0o755); err != nil {
		t.Fatalf("create helper dir: %v", err)
	}
	return &cfg
}

// WriteHelper installs an executable shell script as a helper of the test
// backend and returns its path.
func WriteHelper(t testing.TB, cfg *config.Config, name, body string) string {
	t.Helper()
	path := cfg.HelperPath(name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write helper %s: %v", name, err)
	}
	return path
}
