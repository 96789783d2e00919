package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"audiodupes/internal/chromaprint"
	"audiodupes/internal/cluster"
	"audiodupes/internal/scan"
)

type compareOutput struct {
	PathA           string  `json:"path_a"`
	PathB           string  `json:"path_b"`
	DurationA       int     `json:"duration_a_seconds"`
	DurationB       int     `json:"duration_b_seconds"`
	DurationSkipped bool    `json:"duration_skipped"`
	Stage           string  `json:"stage"`
	CoarseDistance  int     `json:"coarse_distance"`
	CoarseBits      int     `json:"coarse_bits"`
	FineDistance    int     `json:"fine_distance"`
	Score           float64 `json:"score"`
	Class           string  `json:"class"`
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "compare <file-a> <file-b>",
		Short: "Score two files against each other and explain the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			inputs, err := scan.Expand(args)
			if err != nil {
				return err
			}
			if len(inputs.Files) != 2 {
				return fmt.Errorf("compare needs two distinct files, got %d", len(inputs.Files))
			}

			pipe, err := buildPipeline(cmd.Context(), cfg, pipelineOptions{useCache: !noCache}, logger)
			if err != nil {
				return err
			}
			defer pipe.Close()

			extracted, err := pipe.extractor.Run(cmd.Context(), inputs.Files)
			if err != nil {
				return err
			}
			if len(extracted.Failures) > 0 {
				return extracted.Failures[0].Err
			}
			a, b := extracted.Records[0], extracted.Records[1]
			result, err := pipe.comparator.CompareDetailed(a.Fingerprint, b.Fingerprint)
			if err != nil {
				return err
			}

			out := compareOutput{
				PathA:           a.Path,
				PathB:           b.Path,
				DurationA:       a.DurationSeconds,
				DurationB:       b.DurationSeconds,
				DurationSkipped: durationGap(a, b) > pipe.options.DurationSkipSeconds,
				Stage:           result.Stage.String(),
				CoarseDistance:  result.CoarseDistance,
				CoarseBits:      result.CoarseBits,
				FineDistance:    result.FineDistance,
				Score:           result.Score,
				Class:           cluster.ClassNone.String(),
			}
			if result.Stage == chromaprint.StageScored {
				out.Class = pipe.options.Classify(result.Score).String()
			}
			if jsonOutput {
				return writeJSON(cmd, out)
			}

			rows := [][2]string{
				{"File A", out.PathA},
				{"File B", out.PathB},
				{"Durations", fmt.Sprintf("%ds / %ds (gate %ds, skipped in scans: %s)", out.DurationA, out.DurationB, pipe.options.DurationSkipSeconds, yesNo(out.DurationSkipped))},
				{"Stage", out.Stage},
				{"Coarse distance", fmt.Sprintf("%d / %d", out.CoarseDistance, out.CoarseBits)},
				{"Fine distance", strconv.Itoa(out.FineDistance)},
				{"Score", strconv.FormatFloat(out.Score, 'f', 4, 64)},
				{"Class", out.Class},
			}
			printKeyValues(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the fingerprint cache")
	return cmd
}

func durationGap(a, b cluster.Record) int {
	gap := a.DurationSeconds - b.DurationSeconds
	if gap < 0 {
		return -gap
	}
	return gap
}
