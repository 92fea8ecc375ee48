package main

import (
	"github.com/spf13/cobra"

	"TosdrCollector/internal/app"
	"TosdrCollector/internal/config"
	"TosdrCollector/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	output    string
	topics    string
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "tosdrcollector",
	Short: "Collect ToS;DR privacy points into a per-domain table",
	Long: "tosdrcollector walks every ToS;DR service, scores its approved points\n" +
		"against the curated topic lists and writes the result keyed by domain.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCollect,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&rootFlags.config, "config", "", "YAML config file (default $TOSDR_COLLECTOR_CONFIG)")
	f.StringVar(&rootFlags.output, "output", "", "Output JSON path")
	f.StringVar(&rootFlags.topics, "topics", "", "Topics YAML path")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text, json, console")

	rootCmd.Version = version
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if rootFlags.config != "" {
		cfg = config.LoadFrom(rootFlags.config)
	}
	applyFlags(&cfg)

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	if err := application.Run(cmd.Context()); err != nil {
		logger.Error("collection stopped", "error", err)
		return err
	}
	return nil
}

func applyFlags(cfg *config.Config) {
	if rootFlags.output != "" {
		cfg.Output.Path = rootFlags.output
	}
	if rootFlags.topics != "" {
		cfg.Topics.Path = rootFlags.topics
	}
	if rootFlags.logLevel != "" {
		cfg.Logging.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		cfg.Logging.Format = rootFlags.logFormat
	}
}
