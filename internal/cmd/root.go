package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/logreader/internal/config"
	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/output"
)

var (
	cfgFile     string
	outputFmt   string
	levelFilter string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
	// readErr is the config file read error, fatal only for --config.
	readErr error
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "logreader",
	Short: "logreader: rule-based log analysis",
	Long: `logreader scans log text for error, warning and info lines, the time span
it covers and known failure signatures such as null pointer exceptions and
timeouts, then reports issues with prioritized recommendations.

Run it once over files, keep watching them, or serve an HTTP API.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(*cobra.Command, []string) { logger.Close() },
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.logreader.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format: text, json (default from output.format)")
	rootCmd.PersistentFlags().StringVarP(&levelFilter, "level", "l", "", "show only issues of these severities (comma-separated: high,medium,low)")

	config.SetDefaults(viper.GetViper())
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".logreader")
		viper.SetConfigType("yaml")
	}

	config.BindEnv(viper.GetViper())
	readErr = viper.ReadInConfig()
}

// loadConfig validates the merged configuration and starts diagnostic logging.
func loadConfig(*cobra.Command, []string) error {
	if cfgFile != "" && readErr != nil {
		return fmt.Errorf("failed to read config %s: %w", cfgFile, readErr)
	}

	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := logger.Init(c.Log.Level, c.Log.File); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	cfg = c
	logger.Debug("configuration loaded", "file", viper.ConfigFileUsed(), "output", c.Output.Format)
	return nil
}

// newRenderer builds the report renderer selected by --output and --level.
func newRenderer(w io.Writer) (output.Renderer, error) {
	filter, err := output.ParseFilter(levelFilter)
	if err != nil {
		return nil, err
	}
	return output.New(cfg.Output.Format, w, filter)
}
