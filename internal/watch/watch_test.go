package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

// nameIgnorer ignores any path with a segment in names.
type nameIgnorer []string

func (n nameIgnorer) Ignored(path string, _ bool) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if slices.Contains(n, seg) {
			return true
		}
	}
	return false
}

// collector gathers events from the watcher goroutine.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) waitFor(t *testing.T, want Event) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		found := slices.Contains(c.events, want)
		c.mu.Unlock()
		if found {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Fatalf("timed out waiting for %s %s; got %v", want.Kind, want.Path, c.events)
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func startWatcher(t *testing.T, root string) (*Watcher, *collector) {
	t.Helper()
	w, err := New(root, nameIgnorer{"node_modules"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := &collector{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx, c.handle, nil)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
		<-done
	})
	return w, c
}

func TestKind_String(t *testing.T) {
	if Add.String() != "add" || Change.String() != "change" || Kind(0).String() != "unknown" {
		t.Error("unexpected Kind strings")
	}
}

func TestScan_SkipsIgnored(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.ts"), "")
	mustWrite(t, filepath.Join(root, "src", "b.ts"), "")
	mustWrite(t, filepath.Join(root, "node_modules", "lib", "c.js"), "")

	var got []string
	err := Scan(root, nameIgnorer{"node_modules"}, func(ev Event) {
		if ev.Kind != Add {
			t.Errorf("expected Add, got %s", ev.Kind)
		}
		got = append(got, ev.Path)
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{filepath.Join(root, "a.ts"), filepath.Join(root, "src", "b.ts")}
	if !slices.Equal(got, want) {
		t.Errorf("Scan emitted %v, want %v", got, want)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	err := Scan(filepath.Join(t.TempDir(), "missing"), nameIgnorer{}, func(Event) {})
	if err == nil {
		t.Error("expected error for missing root")
	}
}

func TestNew_WatchesNonIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "src", "a.ts"), "")
	mustWrite(t, filepath.Join(root, "node_modules", "b.js"), "")

	w, _ := startWatcher(t, root)

	list := w.WatchList()
	if !slices.Contains(list, root) || !slices.Contains(list, filepath.Join(root, "src")) {
		t.Errorf("expected root and src to be watched, got %v", list)
	}
	if slices.Contains(list, filepath.Join(root, "node_modules")) {
		t.Errorf("node_modules should not be watched, got %v", list)
	}
}

func TestWatcher_ReportsCreate(t *testing.T) {
	root := t.TempDir()
	_, c := startWatcher(t, root)

	path := filepath.Join(root, "new.ts")
	mustWrite(t, path, "// @ai hello\n")

	c.waitFor(t, Event{Path: path, Kind: Add})
}

func TestWatcher_ReportsChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "existing.ts")
	mustWrite(t, path, "const x = 1\n")
	_, c := startWatcher(t, root)

	mustWrite(t, path, "// @ai rename x\nconst x = 1\n")

	c.waitFor(t, Event{Path: path, Kind: Change})
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	w, c := startWatcher(t, root)

	dir := filepath.Join(root, "pkg")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !slices.Contains(w.WatchList(), dir) {
		if time.Now().After(deadline) {
			t.Fatalf("new directory was not watched: %v", w.WatchList())
		}
		time.Sleep(10 * time.Millisecond)
	}

	path := filepath.Join(dir, "x.ts")
	mustWrite(t, path, "")
	c.waitFor(t, Event{Path: path, Kind: Add})
}

func TestWatcher_SkipsIgnoredEvents(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "node_modules", "keep"), "")
	_, c := startWatcher(t, root)

	mustWrite(t, filepath.Join(root, "node_modules", "dep.js"), "")
	marker := filepath.Join(root, "marker.ts")
	mustWrite(t, marker, "")
	c.waitFor(t, Event{Path: marker, Kind: Add})

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ev := range c.events {
		if strings.Contains(ev.Path, "node_modules") {
			t.Errorf("unexpected event for ignored path: %v", ev)
		}
	}
}
