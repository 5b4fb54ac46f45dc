package deps

import (
	"os"
	"path/filepath"
	"testing"

	"packagekit/internal/testsupport"
)

func TestCheckHelpers(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.py")
	plain := filepath.Join(dir, "plain.py")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if err := os.WriteFile(plain, script, 0o644); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Operation: "present", Path: present},
		{Operation: "missing", Path: filepath.Join(dir, "missing.py")},
		{Operation: "plain", Path: plain, Optional: true},
		{Operation: "unset"},
	}

	results := CheckHelpers(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first helper to be available, got %#v", results[0])
	}
	for _, r := range results[1:] {
		if r.Available || r.Detail == "" {
			t.Fatalf("expected %s to be unavailable with detail, got %#v", r.Operation, r)
		}
	}
	required, optional := Missing(results)
	if required != 2 || optional != 1 {
		t.Fatalf("missing = %d required, %d optional", required, optional)
	}
}

func TestHelperRequirementsUseBackendDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteHelper(t, cfg, "resolve.py", "printf 'finished\\n'")

	var resolve *Status
	for _, s := range CheckHelpers(HelperRequirements(cfg)) {
		if s.Operation == "resolve" {
			resolve = &s
		}
	}
	if resolve == nil {
		t.Fatal("resolve helper not listed")
	}
	if !resolve.Available || resolve.Optional {
		t.Fatalf("resolve status = %#v", resolve)
	}
	if resolve.Path != cfg.HelperPath("resolve.py") {
		t.Fatalf("path = %q", resolve.Path)
	}
}
