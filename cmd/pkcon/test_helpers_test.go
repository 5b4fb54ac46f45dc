package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"packagekit/internal/config"
	"packagekit/internal/testsupport"
)

const iface = "org.freedesktop.PackageKit"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	bus        *testsupport.FakeBus
}

func setupCLITestEnv(t *testing.T, adjust ...func(*config.Config)) *cliTestEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := testsupport.NewConfig(t)
	cfg.Logging.Level = "error"
	cfg.Network.Force = "online"
	cfg.Network.Monitor = false
	for _, fn := range adjust {
		fn(cfg)
	}

	configPath := filepath.Join(t.TempDir(), "pkcon.toml")
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(configPath, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fake := testsupport.NewFakeBus()
	previous := busDialer
	busDialer = fake.Dial
	t.Cleanup(func() { busDialer = previous })

	return &cliTestEnv{cfg: cfg, configPath: configPath, bus: fake}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) contains(s string) bool {
	return strings.Contains(b.String(), s)
}
