package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_InvalidDirectory(t *testing.T) {
	w, err := New("/nonexistent/path/that/does/not/exist/file.txt", 0, nil)
	if err == nil {
		t.Error("New() should error for a file in a non-existent directory")
		w.Stop()
	}
}

func TestWatcher_FileChangeDetection(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "watched.txt")
	if err := os.WriteFile(file, []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(file, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(file, []byte("two"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for file change event")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "watched.txt")
	if err := os.WriteFile(file, []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(file, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Events():
		t.Error("unexpected event for a sibling file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "f"), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.delay != DefaultDebounce {
		t.Errorf("expected default debounce, got %v", w.delay)
	}
	w.Stop()
	w.Stop()

	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("expected closed channel after Stop")
		}
	case <-time.After(time.Second):
		t.Error("events channel not closed after Stop")
	}
}
