package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"audiodupes/internal/cluster"
	"audiodupes/internal/config"
	"audiodupes/internal/fileutil"
	"audiodupes/internal/logging"
	"audiodupes/internal/preflight"
	"audiodupes/internal/report"
	"audiodupes/internal/scan"
)

type scanFlags struct {
	output      string
	verbose     bool
	trimSilence bool
	colour      string
	format      string
	progress    string
	noCache     bool
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Fingerprint files and report clusters of near-duplicates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Also write the report to this file (never coloured)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show per-pair scores and files that could not be fingerprinted")
	cmd.Flags().BoolVarP(&flags.trimSilence, "trim-silence", "t", false, "Trim leading and trailing silence before fingerprinting")
	cmd.Flags().StringVar(&flags.colour, "colour", "", "Colour output: auto, yes, or no (default from config)")
	cmd.Flags().StringVar(&flags.format, "format", "", "Report format: text, table, json, or yaml (default from config)")
	cmd.Flags().StringVar(&flags.progress, "progress", "", "Progress style: marks or bar (default from config)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Ignore the fingerprint cache for this run")
	return cmd
}

func applyScanFlags(cmd *cobra.Command, base *config.Config, flags scanFlags) (config.Config, error) {
	cfg := *base
	if cmd.Flags().Changed("trim-silence") {
		cfg.Fingerprint.TrimSilence = flags.trimSilence
	}
	if colour := strings.ToLower(strings.TrimSpace(flags.colour)); colour != "" {
		switch colour {
		case config.ColourAuto, config.ColourYes, config.ColourNo:
			cfg.Output.Colour = colour
		default:
			return config.Config{}, fmt.Errorf("--colour: unsupported value %q (want auto, yes, or no)", flags.colour)
		}
	}
	if format := strings.ToLower(strings.TrimSpace(flags.format)); format != "" {
		cfg.Output.Format = format
	}
	if progress := strings.ToLower(strings.TrimSpace(flags.progress)); progress != "" {
		cfg.Output.Progress = progress
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command, ctx *commandContext, flags scanFlags, args []string) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := applyScanFlags(cmd, base, flags)
	if err != nil {
		return err
	}
	baseLogger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	// Unreadable inputs abort before the report file is created.
	inputs, err := scan.Expand(args)
	if err != nil {
		return err
	}

	reportPath := strings.TrimSpace(flags.output)
	if reportPath != "" {
		if err := fileutil.CheckWritableTarget(reportPath); err != nil {
			return err
		}
	}

	runID := uuid.NewString()
	runCtx := logging.WithRunID(cmd.Context(), runID)
	logger := logging.WithContext(runCtx, baseLogger)

	for _, failed := range preflight.Failed(preflight.RunAll(&cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldImpact, "the feature using this directory may fail"),
		)
	}

	out := cmd.OutOrStdout()
	display := report.Display{Colour: report.ResolveColour(cfg.Output.Colour, out)}
	// Structured formats keep stdout parseable; progress goes to stderr.
	progressOut := out
	if cfg.Output.Format == config.FormatJSON || cfg.Output.Format == config.FormatYAML {
		progressOut = cmd.ErrOrStderr()
	}

	var reporter progressReporter
	pipe, err := buildPipeline(runCtx, &cfg, pipelineOptions{
		useCache: !flags.noCache,
		progress: func(mark rune) { reporter.Mark(mark) },
	}, logger)
	if err != nil {
		return err
	}
	defer pipe.Close()

	fmt.Fprintf(progressOut, "fingerprinting %d files\n", len(inputs.Files))
	if cfg.Output.Progress == config.ProgressBar {
		reporter = newBarProgress(cmd.ErrOrStderr(), len(inputs.Files))
	} else {
		reporter = &markProgress{w: progressOut}
	}
	extracted, err := pipe.extractor.Run(runCtx, inputs.Files)
	reporter.Finish()
	if err != nil {
		return err
	}
	failures := make([]report.FailureInput, 0, len(extracted.Failures))
	for _, failure := range extracted.Failures {
		failures = append(failures, report.FailureInput{Path: failure.Path, Err: failure.Err})
		if flags.verbose {
			fmt.Fprintln(progressOut, display.FailureLine(failure.Err))
		}
	}
	fmt.Fprintf(progressOut, "fingerprinting took %.2f seconds\n", extracted.Stats.Elapsed.Seconds())

	var events []cluster.PairEvent
	opts := pipe.options
	opts.OnPair = func(ev cluster.PairEvent) {
		if !report.ShowPair(ev, flags.verbose) {
			return
		}
		events = append(events, ev)
		fmt.Fprint(progressOut, display.PairBlock(ev, flags.verbose))
	}
	builder, err := cluster.NewBuilder(pipe.comparator, opts, logger)
	if err != nil {
		return err
	}

	pairs := cluster.PairCount(len(extracted.Records))
	fmt.Fprintf(progressOut, "comparing %d pairs\n", pairs)
	start := time.Now()
	clusters, _, err := builder.Build(runCtx, extracted.Records)
	if err != nil {
		return err
	}
	fmt.Fprintf(progressOut, "comparisons took %.2f seconds\n\n", time.Since(start).Seconds())

	doc := report.Build(report.Input{
		RunID:    runID,
		Roots:    inputs.Roots,
		Files:    len(inputs.Files),
		Pairs:    pairs,
		Records:  extracted.Records,
		Clusters: clusters,
		Events:   events,
		Failures: failures,
	})
	if err := display.Write(out, cfg.Output.Format, doc); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if reportPath != "" {
		err := fileutil.WriteAtomic(reportPath, 0o644, func(w io.Writer) error {
			return (report.Display{}).Write(w, cfg.Output.Format, doc)
		})
		if err != nil {
			return fmt.Errorf("write report file: %w", err)
		}
	}
	return nil
}
