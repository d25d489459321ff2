package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/atikulmunna/logreader/internal/analyzer"
)

var rulesCustomOnly bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective detection rules as YAML",
	Long: `Print the detection rules in evaluation order: the built-in rules followed
by any rules declared under analysis.rules in the config file. The output of
--custom can be pasted back under analysis.rules.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesCustomOnly, "custom", false, "print only rules from the config file")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, _ []string) error {
	rules := analyzer.New(cfg.Analysis.AnalyzerOptions()...).Rules()
	if rulesCustomOnly {
		rules = rules[len(analyzer.DefaultRules()):]
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(rules); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return enc.Close()
}
