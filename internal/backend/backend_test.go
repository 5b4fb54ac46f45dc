package backend_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"packagekit/internal/backend"
	"packagekit/internal/enum"
	"packagekit/internal/packageid"
	"packagekit/internal/pkerr"
	"packagekit/internal/spawn"
	"packagekit/internal/testsupport"
)

type staticNetwork bool

func (n staticNetwork) Online(context.Context) bool { return bool(n) }

func TestRunInstallOfflineSpawnsNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	marker := filepath.Join(t.TempDir(), "ran")
	testsupport.WriteHelper(t, cfg, "install.py", "touch "+marker+"\nprintf 'finished\\n'")
	sup, err := spawn.New(cfg, spawn.WithNetwork(staticNetwork(false)))
	if err != nil {
		t.Fatalf("spawn.New: %v", err)
	}
	b := backend.New(sup, nil)

	_, err = b.Run(context.Background(), "/1", "install-packages", backend.Params{PackageIDs: []packageid.ID{vim}}, nil)
	if !errors.Is(err, pkerr.ErrNoNetwork) || !strings.Contains(err.Error(), "Cannot install when offline") {
		t.Fatalf("Run err = %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, statErr := os.Stat(marker); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("helper executed while offline: %v", statErr)
	}
}

func TestRunSearchPassesRenderedArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteHelper(t, cfg, "search-name.py", `
printf 'package\tinstalled\t%s;1.0;noarch;local\tfilters %s\n' "$2" "$1"
printf 'finished\n'
`)
	sup, err := spawn.New(cfg, spawn.WithNetwork(staticNetwork(false)))
	if err != nil {
		t.Fatalf("spawn.New: %v", err)
	}
	b := backend.New(sup, nil)

	var mu sync.Mutex
	var got []spawn.Event
	job, err := b.Run(context.Background(), "/2", "search-name", backend.Params{
		Filters: enum.FromEnums(enum.FilterInstalled),
		Search:  "power",
	}, func(ev spawn.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := job.Wait(ctx)
	if err != nil || res.Exit != enum.ExitSuccess {
		t.Fatalf("Wait = %+v, %v", res, err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0].PackageID.Name != "power" || got[0].Summary != "filters installed" {
		t.Fatalf("events = %+v", got)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sup, err := spawn.New(cfg)
	if err != nil {
		t.Fatalf("spawn.New: %v", err)
	}
	b := backend.New(sup, nil)
	if _, err := b.Run(context.Background(), "/3", "rollback", backend.Params{}, nil); !errors.Is(err, pkerr.ErrInvalidEnumName) {
		t.Fatalf("unknown op err = %v", err)
	}
	if _, err := b.Run(context.Background(), "/3", "get-files", backend.Params{}, nil); !errors.Is(err, pkerr.ErrInvalidWireValue) {
		t.Fatalf("missing id err = %v", err)
	}
	if sup.Running() != 0 {
		t.Fatalf("running = %d", sup.Running())
	}
}
