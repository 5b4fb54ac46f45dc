package logging_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"packagekit/internal/config"
	"packagekit/internal/logging"
)

func newFileLogger(t *testing.T, format, level string) (string, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	noColor := false
	logger, err := logging.New(logging.Options{Format: format, Level: level, OutputPaths: []string{path}, Color: &noColor})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "control").Info("call completed",
		logging.String(logging.FieldOperation, "get-tid"),
		logging.String("note", "has spaces"),
		logging.Error(errors.New("boom")),
	)
	logger.Debug("hidden unless debug")
	return path, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		return string(data)
	}
}

func TestConsoleFormat(t *testing.T) {
	_, read := newFileLogger(t, "console", "info")
	out := read()
	if !strings.Contains(out, "INFO control: call completed") {
		t.Fatalf("missing component prefix: %q", out)
	}
	if !strings.Contains(out, "op=get-tid") || !strings.Contains(out, `note="has spaces"`) || !strings.Contains(out, "error=boom") {
		t.Fatalf("missing attributes: %q", out)
	}
	if strings.Contains(out, "hidden unless debug") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information at info level: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colour disabled but escape codes present: %q", out)
	}
}

func TestConsoleDebugIncludesSource(t *testing.T) {
	_, read := newFileLogger(t, "console", "debug")
	out := read()
	if !strings.Contains(out, "hidden unless debug") {
		t.Fatalf("expected debug line: %q", out)
	}
	if !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("expected caller information at debug level: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	_, read := newFileLogger(t, "json", "info")
	line := strings.TrimSpace(read())
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("invalid json %q: %v", line, err)
	}
	if record["level"] != "info" || record["component"] != "control" || record["op"] != "get-tid" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key: %v", record)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Dir = t.TempDir()
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("warned")
	data, err := os.ReadFile(filepath.Join(cfg.Logging.Dir, "pkcon.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "warned") {
		t.Fatalf("log file missing record: %q", data)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "property ignored", "property_unknown", logging.String(logging.FieldImpact, "value dropped"))
	logging.WarnWithContext(nil, "ignored", "noop")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if record[logging.FieldEventType] != "property_unknown" || record[logging.FieldImpact] != "value dropped" {
		t.Fatalf("unexpected record: %v", record)
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint: %v", record)
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("dropped")
	if logging.NewComponentLogger(nil, "x") == nil {
		t.Fatal("expected logger from nil base")
	}
}
