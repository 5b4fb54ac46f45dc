package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"packagekit/internal/config"
	"packagekit/internal/enum"
	"packagekit/internal/logging"
	"packagekit/internal/pkerr"
)

const lockRetryDelay = 250 * time.Millisecond

// NetworkChecker reports whether network-bound helpers may run.
type NetworkChecker interface {
	Online(ctx context.Context) bool
}

// Request describes one helper invocation.
type Request struct {
	TransactionID string
	// Helper is the executable name inside the backend's helper directory.
	Helper       string
	Args         []string
	NeedsNetwork bool
	// OfflineMessage replaces the default refusal text when the network is down.
	OfflineMessage string
	// OnEvent receives parsed protocol records from the helper goroutine.
	OnEvent func(Event)
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(s *Supervisor) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithNetwork installs the reachability check for network-bound helpers.
func WithNetwork(network NetworkChecker) Option {
	return func(s *Supervisor) {
		s.network = network
	}
}

// WithLogger sets the supervisor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Supervisor runs backend helpers, one per transaction.
type Supervisor struct {
	cfg      config.Backend
	exec     Executor
	network  NetworkChecker
	logger   *slog.Logger
	lockPath string

	mu   sync.Mutex
	jobs map[string]*Job
	wg   sync.WaitGroup
}

// New constructs a supervisor for the configured backend.
func New(cfg *config.Config, opts ...Option) (*Supervisor, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if strings.TrimSpace(cfg.Backend.Name) == "" {
		return nil, errors.New("backend name required")
	}
	s := &Supervisor{
		cfg:      cfg.Backend,
		logger:   logging.NewNop(),
		lockPath: cfg.Backend.LockPath,
		jobs:     make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "spawn")
	if s.exec == nil {
		s.exec = commandExecutor{grace: cfg.CancelGrace(), logger: s.logger}
	}
	if s.lockPath != "" {
		if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
			return nil, fmt.Errorf("create lock directory: %w", err)
		}
	}
	return s, nil
}

// HelperPath resolves a helper name inside the backend directory.
func (s *Supervisor) HelperPath(helper string) string {
	return filepath.Join(s.cfg.HelperDir, s.cfg.Name, helper)
}

// Spawn starts req's helper and returns immediately. Offline refusals and
// busy transactions are reported synchronously without starting anything.
func (s *Supervisor) Spawn(ctx context.Context, req Request) (*Job, error) {
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	req.Helper = strings.TrimSpace(req.Helper)
	if req.TransactionID == "" {
		return nil, errors.New("transaction id required")
	}
	if req.Helper == "" || strings.ContainsAny(req.Helper, "/\\") {
		return nil, fmt.Errorf("invalid helper name %q", req.Helper)
	}
	if req.NeedsNetwork && s.network != nil && !s.network.Online(ctx) {
		msg := req.OfflineMessage
		if msg == "" {
			msg = "cannot run whilst offline"
		}
		return nil, pkerr.Wrap(pkerr.ErrNoNetwork, req.Helper, msg, nil)
	}

	s.mu.Lock()
	if existing, ok := s.jobs[req.TransactionID]; ok {
		s.mu.Unlock()
		return nil, pkerr.Wrap(pkerr.ErrTransactionBusy, req.Helper,
			fmt.Sprintf("transaction %s is running %s", req.TransactionID, existing.Helper), nil)
	}
	jobCtx, cancel := context.WithCancel(ctx)
	job := newJob(uuid.NewString(), req, cancel)
	s.jobs[req.TransactionID] = job
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(jobCtx, job, req)
	return job, nil
}

// Job returns the running helper for a transaction.
func (s *Supervisor) Job(tid string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[tid]
	return job, ok
}

// Cancel cancels the helper running for tid.
func (s *Supervisor) Cancel(tid string) error {
	job, ok := s.Job(tid)
	if !ok {
		return pkerr.Wrap(pkerr.ErrNotCancellable, "cancel", "no helper running for "+tid, nil)
	}
	return job.Cancel()
}

// Running reports the number of live helpers.
func (s *Supervisor) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Shutdown cancels every helper and waits for them to exit or ctx to end.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, job := range s.jobs {
		job.mu.Lock()
		job.cancelled = true
		job.cancel()
		job.mu.Unlock()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) run(ctx context.Context, job *Job, req Request) {
	defer s.wg.Done()
	defer job.cancel()

	logger := s.logger.With(
		logging.String(logging.FieldTransactionID, job.TransactionID),
		logging.String(logging.FieldOperation, job.Helper),
		logging.String("job_id", job.ID),
	)
	emit := func(ev Event) {
		job.observe(ev)
		if req.OnEvent != nil {
			req.OnEvent(ev)
		}
	}

	var res Result
	unlock, err := s.acquireLock(ctx, emit)
	if err != nil {
		res = job.finish(err, ctx.Err(), false)
	} else {
		binary := s.HelperPath(job.Helper)
		logger.Info("helper started", logging.String("binary", binary), logging.Any("args", job.Args))
		runErr := s.exec.Run(ctx, binary, job.Args, func(line string) {
			ev, ok := ParseLine(line)
			if !ok {
				logger.Debug("dropping malformed helper line", logging.String("line", line))
				return
			}
			emit(ev)
		})
		unlock()
		res = job.finish(runErr, ctx.Err(), s.cfg.ExitZeroFinishes)
	}

	s.mu.Lock()
	delete(s.jobs, job.TransactionID)
	s.mu.Unlock()
	close(job.done)

	switch res.Exit {
	case enum.ExitSuccess:
		logger.Info("helper finished", logging.Duration("duration", res.Duration))
	case enum.ExitCancelled:
		logger.Info("helper cancelled", logging.Duration("duration", res.Duration))
	default:
		logging.WarnWithContext(logger, "helper failed", "helper_failed",
			logging.Error(res.Err),
			logging.String(logging.FieldImpact, "transaction did not complete"),
			logging.String(logging.FieldErrorHint, "check the helper output with --log-level debug"),
		)
	}
}

// acquireLock serializes helpers of the backend across processes. A status
// event announces the wait when another helper holds the lock.
func (s *Supervisor) acquireLock(ctx context.Context, emit func(Event)) (func(), error) {
	if s.lockPath == "" {
		return func() {}, nil
	}
	lock := flock.New(s.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock backend: %w", err)
	}
	if !locked {
		emit(Event{Kind: EventStatus, Status: enum.StatusWaitingForLock})
		locked, err = lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return nil, fmt.Errorf("wait for backend lock: %w", err)
		}
		if !locked {
			return nil, errors.New("backend lock unavailable")
		}
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("release backend lock", logging.Error(err))
		}
	}, nil
}
