package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"linefilter/internal/config"
	"linefilter/internal/orchestrator"
	"linefilter/internal/output"
	"linefilter/internal/watcher"
)

type rootOptions struct {
	outputDir  string
	prefix     string
	appendMode bool
	short      bool
	full       bool
	configPath string
	watch      bool
	verbose    bool
}

func newRootCmd(outCfg output.Config) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "linefilter [flags] file1.txt [file2.txt ...]",
		Short: "Split text files into integers, floats and strings",
		Long: "linefilter reads the given files line by line, sorts every non-blank line into\n" +
			"integers.txt, floats.txt or strings.txt and can print statistics for each kind.",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}

			outCfg.Verbose = opts.verbose
			out := output.New(outCfg)

			cfg, err := buildConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if err := checkConfig(cfg, out); err != nil {
				return err
			}

			if err := runOnce(cfg, out); err != nil {
				return err
			}
			if opts.watch {
				return watch(cmd.Context(), cfg, out)
			}
			return nil
		},
	}

	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetOut(outCfg.Writer)
	cmd.SetErr(outCfg.ErrWriter)

	flags := cmd.Flags()
	// Everything after the first input file is another input file.
	flags.SetInterspersed(false)
	flags.StringVarP(&opts.outputDir, "output", "o", ".", "directory for the output files")
	flags.StringVarP(&opts.prefix, "prefix", "p", "", "prefix for the output file names")
	flags.BoolVarP(&opts.appendMode, "append", "a", false, "append to existing output files instead of overwriting them")
	flags.BoolVarP(&opts.short, "short", "s", false, "short statistics (count per kind)")
	flags.BoolVarP(&opts.full, "full", "f", false, "full statistics (min, max, sum and average for numbers; shortest and longest string)")
	flags.StringVar(&opts.configPath, "config", "", "YAML file with default settings")
	flags.BoolVar(&opts.watch, "watch", false, "re-run whenever an input file changes, until interrupted")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print per-file and per-output details")

	return cmd
}

// buildConfig layers explicitly set flags over the defaults file, if any,
// over the built-in defaults.
func buildConfig(cmd *cobra.Command, opts *rootOptions, args []string) (*config.Configuration, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("prefix") {
		cfg.Prefix = opts.prefix
	}
	if flags.Changed("append") {
		cfg.Append = opts.appendMode
	}
	if flags.Changed("short") {
		cfg.ShortStats = opts.short
	}
	if flags.Changed("full") {
		cfg.FullStats = opts.full
	}
	cfg.InputFiles = args

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkConfig prints validation warnings and fails on validation errors.
func checkConfig(cfg *config.Configuration, out *output.Output) error {
	result := config.ValidateConfig(cfg)
	for _, w := range result.Warnings {
		out.Warn("%s: %s", w.Field, w.Message)
	}
	if result.Valid {
		return nil
	}

	messages := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		messages = append(messages, e.Field+": "+e.Message)
	}
	return &config.ConfigError{
		Type:    config.ValidationError,
		Message: strings.Join(messages, "; "),
	}
}

func runOnce(cfg *config.Configuration, out *output.Output) error {
	summary, err := orchestrator.Run(cfg, out)
	if err != nil {
		return err
	}
	if out.IsVerbose() {
		if dests := summary.Destinations(); dests != "" {
			out.Verbose("%s", dests)
		}
		out.Verbose("%s", summary.PrintSummary())
	}
	return nil
}

func watch(ctx context.Context, cfg *config.Configuration, out *output.Output) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(watcher.DefaultWatchConfig(), func(changed []string) error {
		out.Info("Input changed (%s); filtering again", strings.Join(changed, ", "))
		return runOnce(cfg, out)
	}, func(err error) {
		out.Error("watch: %v", err)
	})

	if err := w.Start(cfg.InputFiles); err != nil {
		return fmt.Errorf("cannot watch input files: %w", err)
	}
	out.Info("Watching %d input files; press Ctrl-C to stop", len(cfg.InputFiles))

	<-ctx.Done()
	summary := w.Stop()
	out.Info("Watch stopped after %d re-runs (%d failed)", summary.Runs, summary.Failures)
	return nil
}
