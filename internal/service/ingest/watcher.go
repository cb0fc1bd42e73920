package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"call-assessment-service/internal/observability/logging"
)

// Ingestor transcribes one named audio stream. Implemented by Coordinator.
type Ingestor interface {
	Ingest(ctx context.Context, name string, audio io.Reader) (string, error)
}

// Watcher triggers ingestion when a new audio object appears in the inbox
// directory. The file name becomes the session name.
type Watcher struct {
	dir      string
	ingestor Ingestor
	// settleInterval is how long a file must stop growing before it is
	// considered fully written.
	settleInterval time.Duration
}

// NewWatcher creates a Watcher over dir.
func NewWatcher(dir string, ingestor Ingestor) *Watcher {
	return &Watcher{
		dir:            dir,
		ingestor:       ingestor,
		settleInterval: 200 * time.Millisecond,
	}
}

// Run watches the inbox directory until ctx is canceled. Each new file is
// ingested in its own goroutine; one failing call never blocks the next.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.WithComponent("watcher")

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	logger.Info().Str("dir", w.dir).Msg("Watching audio inbox")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}
			go w.handle(ctx, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

// handle waits for the file to finish writing, then ingests it.
func (w *Watcher) handle(ctx context.Context, path string) {
	name := filepath.Base(path)
	logger := logging.WithComponent("watcher").With().Str("file", name).Logger()

	if err := w.awaitSettled(ctx, path); err != nil {
		logger.Warn().Err(err).Msg("Skipping audio object")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open audio object")
		return
	}
	defer f.Close()

	callID, err := w.ingestor.Ingest(ctx, name, f)
	if err != nil {
		logger.Error().Err(err).Msg("Ingestion failed")
		return
	}
	logger.Info().Str("callId", callID).Msg("Audio object ingested")
}

// awaitSettled polls the file size until it stops growing.
func (w *Watcher) awaitSettled(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.settleInterval):
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()
	}
}
