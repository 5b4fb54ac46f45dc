package backend

import (
	"context"
	"fmt"
	"log/slog"

	"packagekit/internal/logging"
	"packagekit/internal/pkerr"
	"packagekit/internal/spawn"
)

// Spawner starts helpers. *spawn.Supervisor satisfies it.
type Spawner interface {
	Spawn(ctx context.Context, req spawn.Request) (*spawn.Job, error)
	Cancel(tid string) error
}

// Backend runs table operations through a Spawner.
type Backend struct {
	spawner Spawner
	logger  *slog.Logger
}

// New wraps spawner.
func New(spawner Spawner, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Backend{spawner: spawner, logger: logging.NewComponentLogger(logger, "backend")}
}

// Run starts operation name for transaction tid. Parameter errors are
// reported as ErrInvalidWireValue before anything is spawned.
func (b *Backend) Run(ctx context.Context, tid, name string, p Params, onEvent func(spawn.Event)) (*spawn.Job, error) {
	op, ok := Lookup(name)
	if !ok {
		return nil, pkerr.Wrap(pkerr.ErrInvalidEnumName, name, "unknown backend operation", nil)
	}
	args, err := op.Args(p)
	if err != nil {
		return nil, pkerr.Wrap(pkerr.ErrInvalidWireValue, op.Name, "", err)
	}
	b.logger.Debug("starting backend operation",
		logging.String(logging.FieldTransactionID, tid),
		logging.String(logging.FieldOperation, op.Name),
		logging.Any("args", args),
	)
	job, err := b.spawner.Spawn(ctx, spawn.Request{
		TransactionID:  tid,
		Helper:         op.Helper,
		Args:           args,
		NeedsNetwork:   op.NeedsNetwork,
		OfflineMessage: op.OfflineMessage,
		OnEvent:        onEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	return job, nil
}

// Cancel stops the helper running for tid.
func (b *Backend) Cancel(tid string) error {
	return b.spawner.Cancel(tid)
}
