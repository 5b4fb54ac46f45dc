package spawn

import (
	"context"
	"sync"
	"time"

	"packagekit/internal/enum"
	"packagekit/internal/pkerr"
)

// Result is the outcome of a finished helper run.
type Result struct {
	Exit     enum.Exit
	Err      error
	Duration time.Duration
}

// Job tracks one running helper.
type Job struct {
	ID            string
	TransactionID string
	Helper        string
	Args          []string
	Started       time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu          sync.Mutex
	terminal    bool
	allowCancel bool
	cancelled   bool
	status      enum.Status
	failure     *Event
	result      Result
}

func newJob(id string, req Request, cancel context.CancelFunc) *Job {
	return &Job{
		ID:            id,
		TransactionID: req.TransactionID,
		Helper:        req.Helper,
		Args:          append([]string(nil), req.Args...),
		Started:       time.Now(),
		cancel:        cancel,
		done:          make(chan struct{}),
		allowCancel:   true,
		status:        enum.StatusSetup,
	}
}

// Done is closed once the helper has exited and the result is recorded.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Status returns the last status the helper reported.
func (j *Job) Status() enum.Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Cancellable reports whether Cancel would currently be honoured.
func (j *Job) Cancellable() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancellableLocked()
}

func (j *Job) cancellableLocked() bool {
	select {
	case <-j.done:
		return false
	default:
	}
	return !j.terminal && j.allowCancel
}

// Cancel asks the helper to stop. It fails with ErrNotCancellable once the
// helper has announced completion or has disabled cancellation.
func (j *Job) Cancel() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.cancellableLocked() {
		return pkerr.Wrap(pkerr.ErrNotCancellable, j.Helper, "helper cannot be cancelled now", nil)
	}
	j.cancelled = true
	j.cancel()
	return nil
}

// Result returns the recorded outcome. It is only meaningful after Done.
func (j *Job) Result() Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Wait blocks until the helper exits or ctx ends.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
		return j.Result(), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (j *Job) observe(ev Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch ev.Kind {
	case EventStatus:
		j.status = ev.Status
	case EventAllowCancel:
		j.allowCancel = ev.Enabled
	case EventError:
		if j.failure == nil {
			failure := ev
			j.failure = &failure
		}
	case EventFinished:
		j.status = enum.StatusFinished
	}
	if ev.Terminal() {
		j.terminal = true
	}
}

// finish classifies the run and records the result. runErr is the executor's
// error; exitZeroFinishes accepts a clean exit as completion.
func (j *Job) finish(runErr error, ctxErr error, exitZeroFinishes bool) Result {
	j.mu.Lock()
	defer j.mu.Unlock()

	res := Result{Duration: time.Since(j.Started)}
	switch {
	case j.failure != nil:
		res.Exit = enum.ExitFailed
		marker := pkerr.ErrHelperProcessFailed
		if j.failure.Code == pkerr.Code(pkerr.ErrNoNetwork) {
			marker = pkerr.ErrNoNetwork
		}
		res.Err = pkerr.Wrap(marker, j.Helper, j.failure.Code+": "+j.failure.Text, nil)
	case (j.cancelled || ctxErr != nil) && !j.terminal:
		res.Exit = enum.ExitCancelled
		if ctxErr == nil {
			ctxErr = context.Canceled
		}
		res.Err = ctxErr
	case runErr != nil:
		res.Exit = enum.ExitFailed
		res.Err = pkerr.Wrap(pkerr.ErrHelperProcessFailed, j.Helper, "helper exited with an error", runErr)
	case !j.terminal && !exitZeroFinishes:
		res.Exit = enum.ExitFailed
		res.Err = pkerr.Wrap(pkerr.ErrHelperProcessFailed, j.Helper, "helper exited without reporting completion", nil)
	default:
		res.Exit = enum.ExitSuccess
	}
	j.terminal = true
	j.result = res
	return res
}
