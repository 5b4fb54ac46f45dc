package spawn_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"packagekit/internal/enum"
	"packagekit/internal/pkerr"
	"packagekit/internal/spawn"
	"packagekit/internal/testsupport"
)

type stubCall struct {
	binary string
	args   []string
}

type stubExecutor struct {
	mu      sync.Mutex
	calls   []stubCall
	lines   []string
	release chan struct{}
	err     error
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	s.mu.Lock()
	s.calls = append(s.calls, stubCall{binary: binary, args: append([]string(nil), args...)})
	lines := append([]string(nil), s.lines...)
	release := s.release
	s.mu.Unlock()
	for _, line := range lines {
		onStdout(line)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *stubExecutor) Calls() []stubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stubCall(nil), s.calls...)
}

type staticNetwork bool

func (n staticNetwork) Online(context.Context) bool { return bool(n) }

type recorder struct {
	mu     sync.Mutex
	events []spawn.Event
}

func (r *recorder) add(ev spawn.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []spawn.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]spawn.EventKind, 0, len(r.events))
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func wait(t *testing.T, job *spawn.Job) spawn.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := job.Wait(ctx)
	if err != nil {
		t.Fatalf("job did not finish: %v", err)
	}
	return res
}

func TestSpawnRunsHelperScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteHelper(t, cfg, "search-name.py", `
printf 'no-percentage-updates\n'
printf 'status\tquery\n'
printf 'package\tavailable\tvim;7.1;x86_64;fedora\tVi IMproved %s\n' "$2"
echo "diagnostic chatter" >&2
printf 'not a record\n'
printf 'finished\n'
`)
	sup, err := spawn.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec := &recorder{}
	job, err := sup.Spawn(context.Background(), spawn.Request{
		TransactionID: "/1_abc",
		Helper:        "search-name.py",
		Args:          []string{"none", "vim"},
		OnEvent:       rec.add,
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	res := wait(t, job)
	if res.Exit != enum.ExitSuccess || res.Err != nil {
		t.Fatalf("result = %+v", res)
	}
	got := rec.kinds()
	want := []spawn.EventKind{spawn.EventNoPercentageUpdates, spawn.EventStatus, spawn.EventPackage, spawn.EventFinished}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	if summary := rec.events[2].Summary; summary != "Vi IMproved vim" {
		t.Fatalf("summary = %q", summary)
	}
	if sup.Running() != 0 {
		t.Fatalf("running = %d after completion", sup.Running())
	}
}

func TestSpawnHelperWithoutCompletionFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteHelper(t, cfg, "get-updates.py", `printf 'percentage\t10\n'`)
	sup, err := spawn.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	job, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: "/2", Helper: "get-updates.py"})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	res := wait(t, job)
	if res.Exit != enum.ExitFailed || !errors.Is(res.Err, pkerr.ErrHelperProcessFailed) {
		t.Fatalf("result = %+v", res)
	}

	cfg.Backend.ExitZeroFinishes = true
	lenient, err := spawn.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	job, err = lenient.Spawn(context.Background(), spawn.Request{TransactionID: "/3", Helper: "get-updates.py"})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if res := wait(t, job); res.Exit != enum.ExitSuccess {
		t.Fatalf("lenient result = %+v", res)
	}
}

func TestSpawnHelperErrorRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteHelper(t, cfg, "remove.py", `
printf 'error\tdep-resolution-failed\tvim is required by gvim\n'
exit 1
`)
	testsupport.WriteHelper(t, cfg, "refresh-cache.py", `
printf 'error\tno-network\tCannot refresh cache whilst offline\n'
exit 1
`)
	testsupport.WriteHelper(t, cfg, "crash.py", `exit 3`)
	sup, err := spawn.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	job, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: "/4", Helper: "remove.py", Args: []string{"no", "vim;7.1;x86_64;fedora"}})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	res := wait(t, job)
	if !errors.Is(res.Err, pkerr.ErrHelperProcessFailed) || !strings.Contains(res.Err.Error(), "vim is required by gvim") {
		t.Fatalf("remove result = %+v", res)
	}

	job, err = sup.Spawn(context.Background(), spawn.Request{TransactionID: "/5", Helper: "refresh-cache.py"})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if res := wait(t, job); !errors.Is(res.Err, pkerr.ErrNoNetwork) {
		t.Fatalf("refresh result = %+v", res)
	}

	job, err = sup.Spawn(context.Background(), spawn.Request{TransactionID: "/6", Helper: "crash.py"})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if res := wait(t, job); res.Exit != enum.ExitFailed || !errors.Is(res.Err, pkerr.ErrHelperProcessFailed) {
		t.Fatalf("crash result = %+v", res)
	}
}

func TestSpawnRefusesOfflineNetworkWork(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &stubExecutor{}
	sup, err := spawn.New(cfg, spawn.WithExecutor(exec), spawn.WithNetwork(staticNetwork(false)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = sup.Spawn(context.Background(), spawn.Request{
		TransactionID:  "/7",
		Helper:         "install.py",
		Args:           []string{"vim;7.1;x86_64;fedora"},
		NeedsNetwork:   true,
		OfflineMessage: "Cannot install when offline",
	})
	if !errors.Is(err, pkerr.ErrNoNetwork) || !strings.Contains(err.Error(), "Cannot install when offline") {
		t.Fatalf("Spawn err = %v", err)
	}
	if calls := exec.Calls(); len(calls) != 0 {
		t.Fatalf("helper executed while offline: %+v", calls)
	}

	exec.lines = []string{"finished"}
	job, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: "/8", Helper: "search-name.py"})
	if err != nil {
		t.Fatalf("local helper refused offline: %v", err)
	}
	wait(t, job)
	calls := exec.Calls()
	if len(calls) != 1 || calls[0].binary != sup.HelperPath("search-name.py") {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestSpawnBusyTransactionAndCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &stubExecutor{release: make(chan struct{})}
	sup, err := spawn.New(cfg, spawn.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	job, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: "/9", Helper: "update-system.py"})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if _, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: "/9", Helper: "refresh-cache.py"}); !errors.Is(err, pkerr.ErrTransactionBusy) {
		t.Fatalf("second Spawn err = %v", err)
	}
	if err := sup.Cancel("/9"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	res := wait(t, job)
	if res.Exit != enum.ExitCancelled {
		t.Fatalf("result = %+v", res)
	}
	if err := job.Cancel(); !errors.Is(err, pkerr.ErrNotCancellable) {
		t.Fatalf("Cancel after exit = %v", err)
	}
	if err := sup.Cancel("/9"); !errors.Is(err, pkerr.ErrNotCancellable) {
		t.Fatalf("Cancel unknown tid = %v", err)
	}
}

func TestCancelRefusedWhenHelperDisallows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	release := make(chan struct{})
	exec := &stubExecutor{lines: []string{"allow-cancel\tfalse", "status\tcommit"}, release: release}
	rec := &recorder{}
	sup, err := spawn.New(cfg, spawn.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	job, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: "/10", Helper: "install.py", OnEvent: rec.add})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for job.Status() != enum.StatusCommit {
		if time.Now().After(deadline) {
			t.Fatal("helper never reported commit status")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := job.Cancel(); !errors.Is(err, pkerr.ErrNotCancellable) {
		t.Fatalf("Cancel = %v", err)
	}
	exec.mu.Lock()
	exec.lines = nil
	exec.mu.Unlock()
	close(release)
	res := wait(t, job)
	if res.Exit != enum.ExitFailed {
		t.Fatalf("result = %+v", res)
	}
}

func TestCancelTerminatesHelperProcessGroup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteHelper(t, cfg, "refresh-cache.py", `
printf 'status\trefresh-cache\n'
sleep 30
printf 'finished\n'
`)
	sup, err := spawn.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	job, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: "/11", Helper: "refresh-cache.py"})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for job.Status() != enum.StatusRefreshCache {
		if time.Now().After(deadline) {
			t.Fatal("helper never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	start := time.Now()
	if err := job.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	res := wait(t, job)
	if res.Exit != enum.ExitCancelled {
		t.Fatalf("result = %+v", res)
	}
	if elapsed := time.Since(start); elapsed > time.Duration(cfg.Backend.CancelGraceSeconds)*time.Second {
		t.Fatalf("cancel took %s", elapsed)
	}
}

func TestSpawnWaitsForBackendLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	holder := flock.New(cfg.Backend.LockPath)
	if ok, err := holder.TryLock(); err != nil || !ok {
		t.Fatalf("hold lock: %v %v", ok, err)
	}
	exec := &stubExecutor{lines: []string{"finished"}}
	rec := &recorder{}
	sup, err := spawn.New(cfg, spawn.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	job, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: "/12", Helper: "get-repo-list.py", OnEvent: rec.add})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if len(exec.Calls()) != 0 {
		t.Fatal("helper ran while backend lock was held")
	}
	if err := holder.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if res := wait(t, job); res.Exit != enum.ExitSuccess {
		t.Fatalf("result = %+v", res)
	}
	kinds := rec.kinds()
	if len(kinds) == 0 || kinds[0] != spawn.EventStatus {
		t.Fatalf("events = %v", kinds)
	}
}

func TestShutdownCancelsRunningHelpers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Backend.LockPath = ""
	exec := &stubExecutor{release: make(chan struct{})}
	sup, err := spawn.New(cfg, spawn.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var jobs []*spawn.Job
	for _, tid := range []string{"/13", "/14"} {
		job, err := sup.Spawn(context.Background(), spawn.Request{TransactionID: tid, Helper: "get-updates.py"})
		if err != nil {
			t.Fatalf("Spawn %s: %v", tid, err)
		}
		jobs = append(jobs, job)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sup.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	for _, job := range jobs {
		if res := job.Result(); res.Exit != enum.ExitCancelled {
			t.Fatalf("%s result = %+v", job.TransactionID, res)
		}
	}
	if sup.Running() != 0 {
		t.Fatalf("running = %d", sup.Running())
	}
}
