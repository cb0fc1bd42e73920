package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type recordingIngestor struct {
	calls chan string
}

func (r *recordingIngestor) Ingest(ctx context.Context, name string, audio io.Reader) (string, error) {
	// Drain the stream the way the coordinator would.
	if _, err := io.Copy(io.Discard, audio); err != nil {
		return "", err
	}
	r.calls <- name
	return "call-id", nil
}

func TestWatcher_IngestsNewFile(t *testing.T) {
	dir := t.TempDir()
	ing := &recordingIngestor{calls: make(chan string, 1)}

	w := NewWatcher(dir, ing)
	w.settleInterval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "call-0001.wav")
	if err := os.WriteFile(path, make([]byte, 3200), 0o644); err != nil {
		t.Fatalf("write audio file: %v", err)
	}

	select {
	case name := <-ing.calls:
		if name != "call-0001.wav" {
			t.Errorf("expected session name 'call-0001.wav', got %q", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never triggered ingestion")
	}
}

func TestWatcher_CreatesInboxDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	ing := &recordingIngestor{calls: make(chan string, 1)}

	w := NewWatcher(dir, ing)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Run returns with the canceled context but must have created the dir.
	_ = w.Run(ctx)

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected inbox dir to be created: %v", err)
	}
}
