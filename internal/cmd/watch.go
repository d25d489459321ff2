package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/atikulmunna/logreader/internal/ingest"
	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/model"
	"github.com/atikulmunna/logreader/internal/output"
	"github.com/atikulmunna/logreader/internal/watcher"
)

var watchServe bool

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-analyze log files whenever they change",
	Long: `Watch one or more log files (or glob patterns) and print a fresh report
each time a file's content changes. Digests of analyzed content are kept in
watch.state_file, so a restart skips files that did not change.

With --serve the HTTP API runs alongside and every report is streamed to
WebSocket clients.

Examples:
  logreader watch /var/log/app.log
  logreader watch "/var/log/**/*.log" --level high,medium
  logreader watch app.log --serve --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchServe, "serve", false, "also serve the HTTP API and event stream")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer, err := newRenderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	w, err := watcher.New(args)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	watchedPaths := w.Paths()
	if len(watchedPaths) == 0 {
		return fmt.Errorf("no files matched the given patterns: %v", args)
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "logreader watching %d file(s):\n", len(watchedPaths))
	for _, p := range watchedPaths {
		fmt.Fprintf(stderr, "   - %s\n", p)
	}
	fmt.Fprintln(stderr)

	ckpt, err := ingest.NewCheckpoint(cfg.Watch.StateFile)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()
	rt.start(ctx)

	t := ingest.New(w, ckpt, cfg.Analysis.MaxBytes)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { w.Start(ctx); return nil })
	g.Go(func() error { t.Start(ctx); return nil })
	if watchServe {
		srv := rt.newServer(cfg)
		fmt.Fprintf(stderr, "logreader API listening on http://localhost%s\n", cfg.Server.Addr())
		g.Go(func() error { return srv.Run(ctx) })
	}
	g.Go(func() error {
		processDocuments(ctx, rt, renderer, t.Documents(), t.Commit)
		return nil
	})

	err = g.Wait()
	// Commits made after the tailer's last save still need to reach disk.
	if serr := ckpt.Save(); serr != nil {
		logger.Warn("checkpoint save failed", "error", serr)
	}
	fmt.Fprintln(stderr, "logreader shut down")
	return err
}

// processDocuments analyzes each document as it arrives. commit is called
// only for documents that were analyzed, so a failed or interrupted
// analysis is retried after a restart.
func processDocuments(ctx context.Context, rt *runtime, renderer output.Renderer, docs <-chan model.Document, commit func(model.Document)) {
	for doc := range docs {
		if err := analyzeDocument(ctx, rt, renderer, doc); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn("analysis failed", "source", doc.Source, "error", err)
			}
			continue
		}
		commit(doc)
	}
}

// analyzeDocument stores a new version of a watched file, analyzes it and
// renders the report. A render error does not fail the analysis.
func analyzeDocument(ctx context.Context, rt *runtime, renderer output.Renderer, doc model.Document) error {
	l, err := upsertDocument(rt, doc)
	if err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	res, err := rt.store.Analyze(ctx, l.ID, true, rt.analyzer)
	if err != nil {
		rt.publish(model.Event{Kind: model.EventFailed, LogID: l.ID, Source: doc.Source, Error: err.Error()})
		return err
	}
	rt.publish(model.Event{Kind: model.EventAnalyzed, LogID: l.ID, Source: doc.Source, Result: res})

	if err := renderer.Render(doc.Source, res); err != nil {
		logger.Warn("render error", "source", doc.Source, "error", err)
	}
	return nil
}

// upsertDocument keeps one stored log per watched file.
func upsertDocument(rt *runtime, doc model.Document) (model.Log, error) {
	if existing, ok := rt.store.FindBySource(doc.Source); ok {
		return rt.store.Replace(existing.ID, doc.Content)
	}
	return rt.store.Add(doc.Source, doc.Content)
}
