package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atikulmunna/logreader/internal/model"
	"github.com/atikulmunna/logreader/internal/watcher"
)

func startTailer(t *testing.T, logPath, ckptPath string) (*Tailer, context.CancelFunc) {
	t.Helper()

	w, err := watcher.New([]string{logPath})
	if err != nil {
		t.Fatal(err)
	}
	ckpt, err := NewCheckpoint(ckptPath)
	if err != nil {
		t.Fatal(err)
	}

	tail := New(w, ckpt, 0)
	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	go tail.Start(ctx)
	return tail, cancel
}

func nextDocument(t *testing.T, tail *Tailer) model.Document {
	t.Helper()
	select {
	case doc := <-tail.Documents():
		return doc
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for document")
	}
	return model.Document{}
}

func TestTailerEmitsInitialAndChangedContent(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")
	if err := os.WriteFile(logPath, []byte("existing line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tail, cancel := startTailer(t, logPath, filepath.Join(dir, ".state.json"))

	doc := nextDocument(t, tail)
	if doc.Content != "existing line\n" || doc.Source != logPath {
		t.Errorf("unexpected initial document: %+v", doc)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("ERROR from test\n")
	f.Close()

	doc = nextDocument(t, tail)
	if doc.Content != "existing line\nERROR from test\n" {
		t.Errorf("expected whole updated file, got %q", doc.Content)
	}

	// Cancel and allow goroutines to stop before TempDir cleanup.
	cancel()
	time.Sleep(200 * time.Millisecond)
}

func TestTailerSkipsUnchangedFilesAfterRestart(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")
	ckptPath := filepath.Join(dir, ".state.json")
	if err := os.WriteFile(logPath, []byte("same\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tail, cancel := startTailer(t, logPath, ckptPath)
	tail.Commit(nextDocument(t, tail))
	cancel()
	// Drain until the tailer closes its channel, which happens after the
	// checkpoint is saved.
	for range tail.Documents() {
	}

	tail, cancel = startTailer(t, logPath, ckptPath)
	defer cancel()
	select {
	case doc := <-tail.Documents():
		t.Errorf("expected no document for unchanged file, got %+v", doc)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestTailerReemitsUncommittedDocumentAfterRestart(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")
	ckptPath := filepath.Join(dir, ".state.json")
	if err := os.WriteFile(logPath, []byte("ERROR not analyzed yet\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// The document is received but never committed, as when analysis
	// fails or the process stops before it finishes.
	tail, cancel := startTailer(t, logPath, ckptPath)
	nextDocument(t, tail)
	cancel()
	for range tail.Documents() {
	}

	tail, cancel = startTailer(t, logPath, ckptPath)
	defer cancel()
	doc := nextDocument(t, tail)
	if doc.Content != "ERROR not analyzed yet\n" {
		t.Errorf("expected uncommitted content again, got %q", doc.Content)
	}
}

func TestEmitSkipsPendingAndCommittedContent(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")
	if err := os.WriteFile(logPath, []byte("same\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := watcher.New([]string{logPath})
	if err != nil {
		t.Fatal(err)
	}
	ckpt, _ := NewCheckpoint("")
	tail := New(w, ckpt, 0)
	ctx := context.Background()

	tail.emit(ctx, logPath)
	tail.emit(ctx, logPath)
	if got := len(tail.out); got != 1 {
		t.Fatalf("expected pending content to be sent once, got %d", got)
	}
	doc := <-tail.out

	if !ckpt.Changed(logPath, "same\n") {
		t.Error("expected checkpoint untouched before commit")
	}
	tail.Commit(doc)
	if ckpt.Changed(logPath, "same\n") {
		t.Error("expected committed content to be recorded")
	}

	if err := os.WriteFile(logPath, []byte("same\nERROR new\n"), 0644); err != nil {
		t.Fatal(err)
	}
	tail.emit(ctx, logPath)
	if got := len(tail.out); got != 1 {
		t.Errorf("expected changed content to be sent, got %d", got)
	}
}

func TestCheckpointSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.json")

	c1, err := NewCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	c1.Set("/var/log/app.log", "hello")
	if err := c1.Save(); err != nil {
		t.Fatal(err)
	}

	c2, err := NewCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	if c2.Changed("/var/log/app.log", "hello") {
		t.Error("expected unchanged content after reload")
	}
	if !c2.Changed("/var/log/app.log", "hello!") {
		t.Error("expected modified content to be reported")
	}
	if !c2.Changed("/nonexistent", "") {
		t.Error("expected unknown path to be reported as changed")
	}

	c2.Forget("/var/log/app.log")
	if !c2.Changed("/var/log/app.log", "hello") {
		t.Error("expected forgotten path to be reported as changed")
	}
}

func TestInMemoryCheckpointSaveIsNoop(t *testing.T) {
	c, err := NewCheckpoint("")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Save(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
