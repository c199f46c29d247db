package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/logger"
	"github.com/cloudnotes/cloudnotes/internal/templates"
)

func TestTemplateReloaderBuiltIn(t *testing.T) {
	catalog := templates.NewCatalog()
	tr := NewTemplateReloader("", catalog, logger.New("error", false), time.Hour, make(chan struct{}))

	if err := tr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, ok := catalog.Get("meeting"); !ok {
		t.Error("built-in meeting template missing")
	}
}

func TestTemplateReloaderManualTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	write := func(key string) {
		t.Helper()
		data := "- " + key + ":\n    title: " + key + "\n"
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write templates: %v", err)
		}
	}
	write("first")

	catalog := templates.NewCatalog()
	trigger := make(chan struct{})
	tr := NewTemplateReloader(path, catalog, logger.New("error", false), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := tr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer tr.Stop()

	if _, ok := catalog.Get("first"); !ok {
		t.Fatal("initial load missing first template")
	}

	write("second")
	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := catalog.Get("second"); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("manual trigger did not reload templates")
}

func TestTemplateReloaderKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte("- ok:\n    title: ok\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	catalog := templates.NewCatalog()
	tr := NewTemplateReloader(path, catalog, logger.New("error", false), time.Hour, nil)
	if err := tr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("- bad:\n    category: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := tr.Reload(context.Background()); err == nil {
		t.Fatal("Reload() should fail for an invalid template")
	}
	if _, ok := catalog.Get("ok"); !ok {
		t.Error("previous templates were dropped after a failed reload")
	}
}

type fakePruner struct {
	calls atomic.Int32
	err   error
}

func (f *fakePruner) PruneOwnerIndexes(context.Context) (int, error) {
	f.calls.Add(1)
	return 2, f.err
}

func TestIndexGCCollect(t *testing.T) {
	p := &fakePruner{}
	gc := NewIndexGC(p, logger.New("error", false), time.Hour)
	if err := gc.Collect(context.Background()); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	p.err = errors.New("redis down")
	if err := gc.Collect(context.Background()); err == nil {
		t.Error("Collect() should surface pruner errors")
	}
	if p.calls.Load() != 2 {
		t.Errorf("pruner called %d times, want 2", p.calls.Load())
	}
}

func TestIndexGCStartRunsImmediately(t *testing.T) {
	p := &fakePruner{}
	gc := NewIndexGC(p, logger.New("error", false), time.Hour)
	gc.Start(context.Background())
	defer gc.Stop()

	if p.calls.Load() != 1 {
		t.Errorf("pruner called %d times on start, want 1", p.calls.Load())
	}
}
