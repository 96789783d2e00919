package report

import (
	"errors"
	"time"

	"audiodupes/internal/cluster"
	"audiodupes/internal/fpcalc"
)

// File is one member of a cluster.
type File struct {
	Path            string    `json:"path" yaml:"path"`
	SizeBytes       int64     `json:"size_bytes" yaml:"size_bytes"`
	ModTime         time.Time `json:"mod_time" yaml:"mod_time"`
	DurationSeconds int       `json:"duration_seconds" yaml:"duration_seconds"`
}

// Group is a set of files considered duplicates.
type Group struct {
	Files []File `json:"files" yaml:"files"`
}

// Match is a scored pair that was shown during the scan.
type Match struct {
	PathA          string  `json:"path_a" yaml:"path_a"`
	PathB          string  `json:"path_b" yaml:"path_b"`
	Score          float64 `json:"score" yaml:"score"`
	Class          string  `json:"class" yaml:"class"`
	Merged         bool    `json:"merged" yaml:"merged"`
	CoarseDistance int     `json:"coarse_distance" yaml:"coarse_distance"`
	CoarseBits     int     `json:"coarse_bits" yaml:"coarse_bits"`
}

// Failure is a file that could not be fingerprinted.
type Failure struct {
	Path  string `json:"path" yaml:"path"`
	Code  int    `json:"code,omitempty" yaml:"code,omitempty"`
	Error string `json:"error" yaml:"error"`
}

// Document is the complete result of a scan.
type Document struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Roots       []string  `json:"roots" yaml:"roots"`
	Files       int       `json:"files" yaml:"files"`
	Pairs       int       `json:"pairs" yaml:"pairs"`
	Groups      []Group   `json:"clusters" yaml:"clusters"`
	Matches     []Match   `json:"matches,omitempty" yaml:"matches,omitempty"`
	Failures    []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Input carries everything Build needs.
type Input struct {
	RunID    string
	Roots    []string
	Files    int
	Pairs    int
	Records  []cluster.Record
	Clusters []cluster.Cluster
	Events   []cluster.PairEvent
	Failures []FailureInput
}

// FailureInput pairs a path with its extraction error.
type FailureInput struct {
	Path string
	Err  error
}

// Build assembles a Document. Cluster members are looked up in Records by
// path; clusters keep the order they were given in.
func Build(in Input) Document {
	byPath := make(map[string]cluster.Record, len(in.Records))
	for _, rec := range in.Records {
		byPath[rec.Path] = rec
	}

	doc := Document{
		RunID:       in.RunID,
		GeneratedAt: time.Now().UTC(),
		Roots:       in.Roots,
		Files:       in.Files,
		Pairs:       in.Pairs,
		Groups:      make([]Group, 0, len(in.Clusters)),
	}
	for _, members := range in.Clusters {
		group := Group{Files: make([]File, 0, len(members))}
		for _, path := range members {
			rec := byPath[path]
			group.Files = append(group.Files, File{
				Path:            path,
				SizeBytes:       rec.SizeBytes,
				ModTime:         rec.ModTime,
				DurationSeconds: rec.DurationSeconds,
			})
		}
		doc.Groups = append(doc.Groups, group)
	}
	for _, ev := range in.Events {
		doc.Matches = append(doc.Matches, Match{
			PathA:          ev.PathA,
			PathB:          ev.PathB,
			Score:          ev.Score,
			Class:          ev.Class.String(),
			Merged:         ev.Class.IsMatch(),
			CoarseDistance: ev.CoarseDistance,
			CoarseBits:     ev.CoarseBits,
		})
	}
	for _, f := range in.Failures {
		failure := Failure{Path: f.Path, Error: f.Err.Error()}
		var notAudio *fpcalc.NotAudioError
		if errors.As(f.Err, &notAudio) {
			failure.Code = notAudio.Code
		}
		doc.Failures = append(doc.Failures, failure)
	}
	return doc
}
