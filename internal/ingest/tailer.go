package ingest

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/model"
	"github.com/atikulmunna/logreader/internal/watcher"
)

const (
	reconnectAttempts = 5
	reconnectDelay    = time.Second
	saveInterval      = 5 * time.Second
)

// Tailer re-reads watched files when they change and emits a document for
// each new version of a file.
type Tailer struct {
	out      chan model.Document
	ckpt     *Checkpoint
	events   <-chan watcher.Event
	watch    *watcher.Watcher
	maxBytes int64
	sent     map[string]string // path -> digest handed out this session
}

// New creates a Tailer that reads events from the given Watcher.
func New(w *watcher.Watcher, ckpt *Checkpoint, maxBytes int64) *Tailer {
	return &Tailer{
		out:      make(chan model.Document, 16),
		ckpt:     ckpt,
		events:   w.Events,
		watch:    w,
		maxBytes: maxBytes,
		sent:     make(map[string]string),
	}
}

// Documents returns the channel of changed documents.
func (t *Tailer) Documents() <-chan model.Document {
	return t.out
}

// Start emits the current version of every watched file, then follows
// watcher events until the context is cancelled.
func (t *Tailer) Start(ctx context.Context) {
	defer close(t.out)
	defer t.saveCheckpoint()

	for _, p := range t.watch.Paths() {
		t.emit(ctx, p)
	}

	saveTicker := time.NewTicker(saveInterval)
	defer saveTicker.Stop()

	reconnected := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-t.events:
			if !ok {
				return
			}
			switch {
			case ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Create):
				t.emit(ctx, ev.Path)
			case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
				// Rotated or deleted: wait for the file to reappear.
				t.ckpt.Forget(ev.Path)
				delete(t.sent, ev.Path)
				go t.reconnect(ctx, ev.Path, reconnected)
			}

		case p := <-reconnected:
			t.emit(ctx, p)

		case <-saveTicker.C:
			t.saveCheckpoint()
		}
	}
}

// emit reads path and sends it unless that content was already analyzed
// or already handed out.
func (t *Tailer) emit(ctx context.Context, path string) {
	doc, err := ReadFile(path, t.maxBytes)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			logger.Warn("skipping oversized file", "path", path, "error", err)
		} else {
			logger.Debug("cannot read file", "path", path, "error", err)
		}
		return
	}
	digest := Digest(doc.Content)
	if t.sent[path] == digest || !t.ckpt.Changed(path, doc.Content) {
		return
	}

	select {
	case t.out <- doc:
		t.sent[path] = digest
	case <-ctx.Done():
	}
}

// Commit records doc as analyzed, so a restart skips it while the file is
// unchanged. Documents never committed are emitted again after a restart.
func (t *Tailer) Commit(doc model.Document) {
	t.ckpt.Set(doc.Source, doc.Content)
}

// reconnect polls for a rotated file to reappear.
func (t *Tailer) reconnect(ctx context.Context, path string, done chan<- string) {
	for i := 0; i < reconnectAttempts; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
		if _, err := os.Stat(path); err == nil {
			logger.Info("reconnected to rotated file", "path", path)
			if err := t.watch.ReWatch(path); err != nil {
				logger.Warn("cannot re-watch file", "path", path, "error", err)
			}
			select {
			case done <- path:
			case <-ctx.Done():
			}
			return
		}
	}
	logger.Warn("gave up reconnecting to file", "path", path, "attempts", reconnectAttempts)
}

func (t *Tailer) saveCheckpoint() {
	if err := t.ckpt.Save(); err != nil {
		logger.Warn("checkpoint save failed", "error", err)
	}
}
