package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"audiodupes/internal/chromaprint"
	"audiodupes/internal/logging"
)

// Record is one successfully fingerprinted file.
type Record struct {
	Path            string
	Fingerprint     chromaprint.Fingerprint
	DurationSeconds int
	SizeBytes       int64
	ModTime         time.Time
}

// Cluster is a sorted list of paths considered duplicates of one another.
type Cluster []string

// Scorer compares two fingerprints. *chromaprint.Comparator satisfies it.
type Scorer interface {
	CompareDetailed(a, b chromaprint.Fingerprint) (chromaprint.Result, error)
}

// Options tunes pair selection and classification.
type Options struct {
	// DurationSkipSeconds skips pairs whose durations differ by more than
	// this many seconds without scoring them.
	DurationSkipSeconds int
	// MatchThreshold is the score a pair must exceed to be merged.
	MatchThreshold float64
	// StrongMatchThreshold marks matches worth highlighting.
	StrongMatchThreshold float64
	// WeakMatchThreshold is the lower bound of near misses reported as weak.
	WeakMatchThreshold float64
	// Workers bounds concurrent pair scoring. Values below 1 mean one.
	Workers int
	// OnPair receives an event for every pair that reached the fine pass,
	// in combination order. It is always called from the Build goroutine.
	OnPair func(PairEvent)
}

// DefaultOptions returns the stock clustering tuning.
func DefaultOptions() Options {
	return Options{
		DurationSkipSeconds:  60,
		MatchThreshold:       0.55,
		StrongMatchThreshold: 0.75,
		WeakMatchThreshold:   0.35,
		Workers:              1,
	}
}

// Validate ensures thresholds are ordered and the duration gate is sane.
func (o Options) Validate() error {
	if o.DurationSkipSeconds < 0 {
		return errors.New("duration_skip_seconds must not be negative")
	}
	if o.WeakMatchThreshold > o.MatchThreshold {
		return fmt.Errorf("weak_match_threshold (%v) must not exceed match_threshold (%v)", o.WeakMatchThreshold, o.MatchThreshold)
	}
	if o.MatchThreshold > o.StrongMatchThreshold {
		return fmt.Errorf("match_threshold (%v) must not exceed strong_match_threshold (%v)", o.MatchThreshold, o.StrongMatchThreshold)
	}
	return nil
}

// Stats summarises a Build run.
type Stats struct {
	Records  int
	Pairs    int
	Skipped  int
	Scored   int
	Matches  int
	Clusters int
	Elapsed  time.Duration
	// Scores summarizes pairs that reached the fine pass.
	Scores ScoreSummary
}

// Builder turns records into duplicate clusters.
type Builder struct {
	scorer Scorer
	opts   Options
	logger *slog.Logger
}

// pairBatch bounds how many pair results are buffered before merging.
const pairBatch = 4096

// NewBuilder validates opts and returns a Builder.
func NewBuilder(scorer Scorer, opts Options, logger *slog.Logger) (*Builder, error) {
	if scorer == nil {
		return nil, errors.New("cluster builder: scorer is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("cluster builder: %w", err)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Builder{
		scorer: scorer,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "cluster"),
	}, nil
}

// PairCount is the number of unordered pairs Build will consider for n records.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// Build scores all eligible pairs and returns the sorted clusters.
func (b *Builder) Build(ctx context.Context, records []Record) ([]Cluster, Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	if err := validateRecords(records); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Records: len(records), Pairs: PairCount(len(records))}
	ds := newDisjointSet(len(records))
	pairs := make([]pair, 0, min(stats.Pairs, pairBatch))
	var scores []float64
	flush := func() error {
		if err := b.scoreBatch(ctx, records, pairs); err != nil {
			return err
		}
		for _, p := range pairs {
			b.apply(records, ds, p, &stats)
			if p.result.Stage == chromaprint.StageScored {
				scores = append(scores, p.result.Score)
			}
		}
		pairs = pairs[:0]
		return nil
	}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if abs(records[i].DurationSeconds-records[j].DurationSeconds) > b.opts.DurationSkipSeconds {
				stats.Skipped++
				continue
			}
			pairs = append(pairs, pair{a: i, b: j})
			if len(pairs) == pairBatch {
				if err := flush(); err != nil {
					return nil, stats, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return nil, stats, err
	}

	clusters := collect(records, ds)
	stats.Clusters = len(clusters)
	stats.Scores = summarizeScores(scores)
	stats.Elapsed = time.Since(started)
	b.logger.Debug("clustering complete",
		logging.Int("records", stats.Records),
		logging.Int("pairs", stats.Pairs),
		logging.Int("pairs_skipped", stats.Skipped),
		logging.Int("pairs_scored", stats.Scored),
		logging.Int("matches", stats.Matches),
		logging.Int("clusters", stats.Clusters),
		logging.Int("fine_pairs", stats.Scores.Count),
		logging.Float64("score_mean", stats.Scores.Mean),
		logging.Float64("score_p95", stats.Scores.P95),
		logging.Duration("cluster_duration", stats.Elapsed))
	return clusters, stats, nil
}

type pair struct {
	a, b   int
	result chromaprint.Result
}

func (b *Builder) scoreBatch(ctx context.Context, records []Record, pairs []pair) error {
	if len(pairs) == 0 {
		return nil
	}
	if b.opts.Workers == 1 {
		for i := range pairs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := b.score(records, &pairs[i]); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i := range pairs {
		p := &pairs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return b.score(records, p)
		})
	}
	return g.Wait()
}

func (b *Builder) score(records []Record, p *pair) error {
	res, err := b.scorer.CompareDetailed(records[p.a].Fingerprint, records[p.b].Fingerprint)
	if err != nil {
		return fmt.Errorf("compare %s and %s: %w", records[p.a].Path, records[p.b].Path, err)
	}
	p.result = res
	return nil
}

func (b *Builder) apply(records []Record, ds *disjointSet, p pair, stats *Stats) {
	stats.Scored++
	score := p.result.Score
	if score > b.opts.MatchThreshold {
		stats.Matches++
		ds.union(p.a, p.b)
	}
	if b.opts.OnPair == nil || p.result.Stage != chromaprint.StageScored {
		return
	}
	b.opts.OnPair(PairEvent{
		PathA:          records[p.a].Path,
		PathB:          records[p.b].Path,
		Score:          score,
		CoarseDistance: p.result.CoarseDistance,
		CoarseBits:     p.result.CoarseBits,
		Class:          b.opts.Classify(score),
	})
}

func collect(records []Record, ds *disjointSet) []Cluster {
	groups := ds.groups(2)
	clusters := make([]Cluster, 0, len(groups))
	for _, members := range groups {
		c := make(Cluster, 0, len(members))
		for _, idx := range members {
			c = append(c, records[idx].Path)
		}
		slices.Sort(c)
		clusters = append(clusters, c)
	}
	slices.SortFunc(clusters, func(a, b Cluster) int {
		return slices.Compare(a, b)
	})
	return clusters
}

func validateRecords(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Path) == "" {
			return fmt.Errorf("record %d: empty path", i)
		}
		if _, dup := seen[rec.Path]; dup {
			return fmt.Errorf("record %d: duplicate path %s", i, rec.Path)
		}
		seen[rec.Path] = struct{}{}
		if rec.DurationSeconds < 0 {
			return fmt.Errorf("record %s: negative duration %d", rec.Path, rec.DurationSeconds)
		}
		if err := rec.Fingerprint.Validate(); err != nil {
			return fmt.Errorf("record %s: %w", rec.Path, err)
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
