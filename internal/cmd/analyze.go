package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/atikulmunna/logreader/internal/analyzer"
	"github.com/atikulmunna/logreader/internal/ingest"
	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/model"
	"github.com/atikulmunna/logreader/internal/watcher"
)

const stdinSource = "stdin"

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Analyze log files once and print a report for each",
	Long: `Analyze one or more log files (or glob patterns) and print a report per
file. Files are analyzed in parallel, reports are printed in argument order.
Use "-" to read from standard input.

Examples:
  logreader analyze /var/log/app.log
  logreader analyze "/var/log/**/*.log" --output json
  kubectl logs my-pod | logreader analyze - --level high`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

// input is one document to analyze. Stdin is read up front; files are
// read by the worker that analyzes them.
type input struct {
	source string
	doc    *model.Document
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	renderer, err := newRenderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	inputs, err := collectInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	a := analyzer.New(cfg.Analysis.AnalyzerOptions()...)
	results := make([]model.AnalysisResult, len(inputs))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Analysis.Concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			doc := in.doc
			if doc == nil {
				d, err := ingest.ReadFile(in.source, cfg.Analysis.MaxBytes)
				if err != nil {
					return err
				}
				doc = &d
			}
			res, err := a.Run(ctx, doc.Content)
			if err != nil {
				return fmt.Errorf("%s: %w", in.source, err)
			}
			logger.Debug("analyzed", "source", in.source,
				"lines", res.Summary.TotalLines, "severity", res.Summary.OverallSeverity)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, in := range inputs {
		if err := renderer.Render(in.source, results[i]); err != nil {
			return fmt.Errorf("render %s: %w", in.source, err)
		}
	}
	return nil
}

// collectInputs expands each argument in order. "-" may appear once.
func collectInputs(stdin io.Reader, args []string) ([]input, error) {
	var (
		inputs   []input
		seen     = make(map[string]bool)
		usedPipe bool
	)
	for _, arg := range args {
		if arg == "-" {
			if usedPipe {
				return nil, fmt.Errorf(`"-" given more than once`)
			}
			usedPipe = true
			doc, err := ingest.Read(stdin, stdinSource, cfg.Analysis.MaxBytes)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input{source: stdinSource, doc: &doc})
			continue
		}

		paths := watcher.Expand([]string{arg})
		if len(paths) == 0 {
			return nil, fmt.Errorf("no files matched %q", arg)
		}
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				inputs = append(inputs, input{source: p})
			}
		}
	}
	return inputs, nil
}
