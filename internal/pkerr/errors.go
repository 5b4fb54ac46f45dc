package pkerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

var (
	ErrTransportUnavailable = errors.New("transport unavailable")
	ErrCannotStartDaemon    = errors.New("cannot start daemon")
	ErrOperationFailed      = errors.New("operation failed")
	ErrInvalidEnumName      = errors.New("invalid enum name")
	ErrInvalidWireValue     = errors.New("invalid wire value")
	ErrNoNetwork            = errors.New("no network")
	ErrHelperProcessFailed  = errors.New("helper process failed")
	ErrTransactionBusy      = errors.New("transaction already running")
	ErrNotCancellable       = errors.New("not cancellable")
	ErrClosed               = errors.New("control closed")
)

// SpawnChildExited is the bus error raised when activation of the daemon fails.
const SpawnChildExited = "org.freedesktop.DBus.Error.Spawn.ChildExited"

// Wrap builds an error message that includes operation context while tagging
// it with marker. The marker should be one of the exported sentinels.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrOperationFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Normalize maps a transport error onto CannotStartDaemon or OperationFailed.
// The original error stays in the chain.
func Normalize(operation string, err error) error {
	if err == nil {
		return nil
	}
	if IsKind(err) {
		return err
	}
	var busErr dbus.Error
	if errors.As(err, &busErr) && busErr.Name == SpawnChildExited {
		return Wrap(ErrCannotStartDaemon, operation, "", err)
	}
	var busErrPtr *dbus.Error
	if errors.As(err, &busErrPtr) && busErrPtr != nil && busErrPtr.Name == SpawnChildExited {
		return Wrap(ErrCannotStartDaemon, operation, "", err)
	}
	return Wrap(ErrOperationFailed, operation, "", err)
}

// IsKind reports whether err already carries one of the package sentinels.
func IsKind(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Code returns a stable short name for the kind carried by err, or "" when err
// carries none.
func Code(err error) string {
	for i, kind := range kinds {
		if errors.Is(err, kind) {
			return codes[i]
		}
	}
	return ""
}

var kinds = []error{
	ErrTransportUnavailable,
	ErrCannotStartDaemon,
	ErrOperationFailed,
	ErrInvalidEnumName,
	ErrInvalidWireValue,
	ErrNoNetwork,
	ErrHelperProcessFailed,
	ErrTransactionBusy,
	ErrNotCancellable,
	ErrClosed,
}

var codes = []string{
	"transport-unavailable",
	"cannot-start-daemon",
	"failed",
	"invalid-enum-name",
	"invalid-wire-value",
	"no-network",
	"helper-process-failed",
	"transaction-busy",
	"not-cancellable",
	"closed",
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
