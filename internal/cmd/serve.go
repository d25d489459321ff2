package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/logreader/internal/config"
	"github.com/atikulmunna/logreader/internal/logger"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis HTTP API",
	Long: `Start an HTTP API for uploading logs, analyzing them and reading report
totals. Completed analyses are streamed to WebSocket clients on /ws.

Set store.path to keep logs and results across restarts.

Examples:
  logreader serve
  logreader serve --port 9090
  LOGREADER_STORE_PATH=logreader.db logreader serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default from server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
		if err := config.ValidateConfig(cfg); err != nil {
			return err
		}
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()
	rt.start(ctx)

	fmt.Fprintf(cmd.ErrOrStderr(), "logreader API listening on http://localhost%s\n", cfg.Server.Addr())
	if err := rt.newServer(cfg).Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shut down gracefully")
	return nil
}
