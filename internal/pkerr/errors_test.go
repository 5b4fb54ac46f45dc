package pkerr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"

	"packagekit/internal/pkerr"
)

func TestNormalizeSpawnFailure(t *testing.T) {
	raw := dbus.Error{Name: pkerr.SpawnChildExited, Body: []any{"Launch helper exited with unknown return code 1"}}
	err := pkerr.Normalize("get-tid", raw)
	if !errors.Is(err, pkerr.ErrCannotStartDaemon) {
		t.Fatalf("expected cannot-start-daemon, got %v", err)
	}
	if errors.Is(err, pkerr.ErrOperationFailed) {
		t.Fatal("spawn failure must not also classify as operation failed")
	}

	ptr := &dbus.Error{Name: pkerr.SpawnChildExited}
	if err := pkerr.Normalize("get-tid", ptr); !errors.Is(err, pkerr.ErrCannotStartDaemon) {
		t.Fatalf("expected pointer form to normalize, got %v", err)
	}
}

func TestNormalizeOtherErrors(t *testing.T) {
	raw := dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied"}
	err := pkerr.Normalize("set-proxy", raw)
	if !errors.Is(err, pkerr.ErrOperationFailed) {
		t.Fatalf("expected operation failed, got %v", err)
	}
	var busErr dbus.Error
	if !errors.As(err, &busErr) {
		t.Fatal("expected original bus error in chain")
	}
	if !strings.Contains(err.Error(), "set-proxy") {
		t.Fatalf("expected operation in message, got %q", err.Error())
	}
}

func TestNormalizeKeepsExistingKind(t *testing.T) {
	err := pkerr.Wrap(pkerr.ErrInvalidWireValue, "get-network-state", "bogus", nil)
	if got := pkerr.Normalize("get-network-state", err); got != err {
		t.Fatalf("expected error unchanged, got %v", got)
	}
	if pkerr.Normalize("x", nil) != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestCode(t *testing.T) {
	err := pkerr.Wrap(pkerr.ErrNoNetwork, "install-packages", "offline", nil)
	if got := pkerr.Code(err); got != "no-network" {
		t.Fatalf("code = %q", got)
	}
	if got := pkerr.Code(errors.New("plain")); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
	if got := pkerr.Wrap(nil, "", "", nil).Error(); got != "operation failed: failure" {
		t.Fatalf("unexpected default message %q", got)
	}
}
