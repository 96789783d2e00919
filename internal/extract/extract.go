package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"audiodupes/internal/cluster"
	"audiodupes/internal/fpcache"
	"audiodupes/internal/fpcalc"
	"audiodupes/internal/logging"
)

// Fingerprinter extracts one file's fingerprint. *fpcalc.Runner satisfies it.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (fpcalc.Result, error)
}

// Cache stores extracted fingerprints. *fpcache.Store satisfies it.
type Cache interface {
	Get(ctx context.Context, key fpcache.Key) (fpcache.Entry, bool, error)
	Put(ctx context.Context, key fpcache.Key, entry fpcache.Entry) error
}

// Probe is what a Prober learned about one file.
type Probe struct {
	HasAudio bool
	// DurationSeconds is the container duration; 0 or NaN when unknown.
	DurationSeconds float64
}

// Prober inspects a file before fingerprinting.
type Prober interface {
	Probe(ctx context.Context, path string) (Probe, error)
}

// Options configures an extraction run.
type Options struct {
	Workers int
	// TrimSilence and LengthSeconds are part of the cache key.
	TrimSilence   bool
	LengthSeconds int
	// Progress receives one mark per file.
	Progress func(mark rune)
}

// Failure is a file that could not be fingerprinted.
type Failure struct {
	Path string
	Err  error
}

// Stats summarizes an extraction run.
type Stats struct {
	Files     int
	Extracted int
	CacheHits int
	Failed    int
	Elapsed   time.Duration
}

// Result holds the records and failures of a run.
type Result struct {
	Records  []cluster.Record
	Failures []Failure
	Stats    Stats
}

// Extractor runs fingerprint extraction over many files.
type Extractor struct {
	fp     Fingerprinter
	cache  Cache
	prober Prober
	opts   Options
	logger *slog.Logger
}

// New builds an Extractor. cache and prober may be nil.
func New(fp Fingerprinter, cache Cache, prober Prober, opts Options, logger *slog.Logger) (*Extractor, error) {
	if fp == nil {
		return nil, errors.New("extract: fingerprinter is required")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		fp:     fp,
		cache:  cache,
		prober: prober,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "extract"),
	}, nil
}

type outcome struct {
	record  cluster.Record
	failure error
	cached  bool
}

// Run fingerprints paths.
func (e *Extractor) Run(ctx context.Context, paths []string) (Result, error) {
	start := time.Now()
	outcomes := make([]outcome, len(paths))
	progress := newProgress(e.opts.Progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			out, err := e.one(gctx, path)
			if err != nil {
				return err
			}
			outcomes[i] = out
			progress.mark(out.failure)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Stats: Stats{Files: len(paths)}}
	for i, out := range outcomes {
		if out.failure != nil {
			result.Failures = append(result.Failures, Failure{Path: paths[i], Err: out.failure})
			continue
		}
		result.Records = append(result.Records, out.record)
		if out.cached {
			result.Stats.CacheHits++
		} else {
			result.Stats.Extracted++
		}
	}
	result.Stats.Failed = len(result.Failures)
	result.Stats.Elapsed = time.Since(start)

	e.logger.Info("fingerprinting complete",
		logging.Int("files", result.Stats.Files),
		logging.Int("extracted", result.Stats.Extracted),
		logging.Int("cache_hits", result.Stats.CacheHits),
		logging.Int("failed", result.Stats.Failed),
		logging.Duration("extract_duration", result.Stats.Elapsed),
	)
	return result, nil
}

// one returns a fatal error only for problems that would affect every file.
func (e *Extractor) one(ctx context.Context, path string) (outcome, error) {
	info, err := os.Stat(path)
	if err != nil {
		return outcome{failure: fmt.Errorf("stat %s: %w", path, err)}, nil
	}
	record := cluster.Record{
		Path:      path,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}
	key := fpcache.Key{
		Path:          path,
		SizeBytes:     info.Size(),
		ModTime:       info.ModTime(),
		TrimSilence:   e.opts.TrimSilence,
		LengthSeconds: e.opts.LengthSeconds,
	}

	if e.cache != nil {
		entry, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			logging.WarnWithContext(e.logger, "cache lookup failed", "cache_lookup_failed",
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldErrorHint, "run 'audiodupes cache clear' if this persists"),
				logging.Error(err),
			)
		} else if ok {
			record.Fingerprint = entry.Fingerprint
			record.DurationSeconds = entry.DurationSeconds
			return outcome{record: record, cached: true}, nil
		}
	}

	var probe Probe
	if e.prober != nil {
		var err error
		probe, err = e.prober.Probe(ctx, path)
		switch {
		case err != nil && isFatal(ctx, err):
			return outcome{}, err
		case err != nil || !probe.HasAudio:
			e.logger.Debug("no audio streams", logging.String(logging.FieldPath, path), logging.Error(err))
			return outcome{failure: &fpcalc.NotAudioError{Path: path, Code: 2, Detail: "no audio streams"}}, nil
		}
	}

	res, err := e.fp.Fingerprint(ctx, path)
	if err != nil {
		if errors.Is(err, fpcalc.ErrNotAudio) {
			e.logger.Debug("not audio", logging.String(logging.FieldPath, path), logging.Error(err))
			return outcome{failure: err}, nil
		}
		return outcome{}, err
	}
	// fpcalc reports 0 for some streams without a duration header.
	if res.DurationSeconds <= 0 && probe.DurationSeconds >= 1 {
		res.DurationSeconds = int(probe.DurationSeconds)
	}
	record.Fingerprint = res.Fingerprint
	record.DurationSeconds = res.DurationSeconds

	if e.cache != nil {
		entry := fpcache.Entry{Fingerprint: res.Fingerprint, DurationSeconds: res.DurationSeconds}
		if err := e.cache.Put(ctx, key, entry); err != nil {
			logging.WarnWithContext(e.logger, "cache store failed", "cache_store_failed",
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldImpact, "file will be fingerprinted again next run"),
				logging.Error(err),
			)
		}
	}
	return outcome{record: record}, nil
}

// isFatal reports errors that are not about the file itself.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, errProberUnavailable)
}

type progress struct {
	mu    sync.Mutex
	fn    func(rune)
	count int
}

func newProgress(fn func(rune)) *progress {
	return &progress{fn: fn}
}

func (p *progress) mark(failure error) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	p.fn(markFor(p.count, failure))
}

func markFor(n int, failure error) rune {
	if failure != nil {
		var notAudio *fpcalc.NotAudioError
		if errors.As(failure, &notAudio) && notAudio.Code >= 0 {
			return rune(strconv.Itoa(notAudio.Code % 10)[0])
		}
		return '!'
	}
	if n%10 == 0 {
		return ':'
	}
	return '.'
}
