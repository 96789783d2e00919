package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"audiodupes/internal/chromaprint"
	"audiodupes/internal/cluster"
	"audiodupes/internal/config"
	"audiodupes/internal/extract"
	"audiodupes/internal/fpcache"
	"audiodupes/internal/fpcalc"
	"audiodupes/internal/logging"
)

// pipeline bundles the components a scan or compare needs.
type pipeline struct {
	extractor  *extract.Extractor
	comparator *chromaprint.Comparator
	options    cluster.Options
	cache      *fpcache.Store
}

func (p *pipeline) Close() error {
	if p == nil || p.cache == nil {
		return nil
	}
	return p.cache.Close()
}

type pipelineOptions struct {
	useCache bool
	progress func(rune)
}

func buildPipeline(ctx context.Context, cfg *config.Config, opts pipelineOptions, logger *slog.Logger) (*pipeline, error) {
	comparator, err := chromaprint.NewComparator(chromaprint.Params{
		Radius1:                 cfg.Matching.Radius1,
		Radius2:                 cfg.Matching.Radius2,
		CoarseRejectBitsPerCode: cfg.Matching.CoarseRejectBitsPerCode,
	})
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		comparator: comparator,
		options: cluster.Options{
			DurationSkipSeconds:  cfg.Matching.DurationSkipSeconds,
			MatchThreshold:       cfg.Matching.MatchThreshold,
			StrongMatchThreshold: cfg.Matching.StrongMatchThreshold,
			WeakMatchThreshold:   cfg.Matching.WeakMatchThreshold,
			Workers:              cfg.Matching.Workers,
		},
	}

	var cache extract.Cache
	if opts.useCache && cfg.Cache.Enabled {
		store, err := fpcache.Open(ctx, cfg.Cache.Path, logger)
		switch {
		case errors.Is(err, fpcache.ErrLocked):
			logging.WarnWithContext(logger, "fingerprint cache busy; continuing without it", "cache_locked",
				logging.String("cache_path", cfg.Cache.Path),
				logging.String(logging.FieldImpact, "every file is fingerprinted from scratch"),
			)
		case err != nil:
			return nil, err
		default:
			p.cache = store
			cache = store
		}
	}

	fp := cfg.Fingerprint
	runner := fpcalc.New(fpcalc.Options{
		Binary:             fp.FpcalcBinary,
		FFmpegBinary:       fp.FFmpegBinary,
		LengthSeconds:      fp.LengthSeconds,
		TrimSilence:        fp.TrimSilence,
		SilenceThresholdDB: fp.SilenceThresholdDB,
		SilenceMinSeconds:  fp.SilenceMinSeconds,
		Timeout:            time.Duration(fp.TimeoutSeconds) * time.Second,
	}, logger)

	var prober extract.Prober
	if fp.ProbeMedia {
		prober = extract.FFprobe{Binary: fp.FFprobeBinary}
	}

	p.extractor, err = extract.New(runner, cache, prober, extract.Options{
		Workers:       fp.Workers,
		TrimSilence:   fp.TrimSilence,
		LengthSeconds: fp.LengthSeconds,
		Progress:      opts.progress,
	}, logger)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}
