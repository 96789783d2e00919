package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"audiodupes/internal/chromaprint"
	"audiodupes/internal/cluster"
	"audiodupes/internal/fpcalc"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func sampleDocument() Document {
	mtime := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	records := []cluster.Record{
		{Path: "/music/a/maple-leaf-rag-4.opus", Fingerprint: chromaprint.Fingerprint{1}, DurationSeconds: 292, SizeBytes: 292580, ModTime: mtime},
		{Path: "/music/a/maple-leaf-rag-8k-2.opus", Fingerprint: chromaprint.Fingerprint{1}, DurationSeconds: 292, SizeBytes: 171483, ModTime: mtime},
	}
	return Build(Input{
		RunID:    "run-1",
		Roots:    []string{"/music/a"},
		Files:    3,
		Pairs:    1,
		Records:  records,
		Clusters: []cluster.Cluster{{records[0].Path, records[1].Path}},
		Events: []cluster.PairEvent{{
			PathA: records[0].Path, PathB: records[1].Path,
			Score: 0.93, CoarseDistance: 43, CoarseBits: 640, Class: cluster.ClassStrong,
		}},
		Failures: []FailureInput{{
			Path: "/music/README",
			Err:  &fpcalc.NotAudioError{Path: "/music/README", Code: 2},
		}},
	})
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := (Display{}).WriteText(&buf, sampleDocument()); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	want := "found one cluster in: \n" +
		"   /music/a\n" +
		"\n" +
		"--- 2 duplicates ---\n" +
		"2024-03-01 12:30     292580  /music/a/maple-leaf-rag-4.opus\n" +
		"2024-03-01 12:30     171483  /music/a/maple-leaf-rag-8k-2.opus\n"
	if buf.String() != want {
		t.Fatalf("unexpected text output\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestSummaryCounts(t *testing.T) {
	doc := Document{Roots: []string{"/a", "/b"}}
	if got := (Display{}).Summary(doc); got != "found no clusters in: \n   /a\n   /b\n" {
		t.Fatalf("unexpected summary %q", got)
	}
	doc.Groups = make([]Group, 3)
	if got := (Display{}).Summary(doc); !strings.HasPrefix(got, "found 3 clusters in: \n") {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestColourOnlyAddsEscapes(t *testing.T) {
	doc := sampleDocument()
	var plain, coloured bytes.Buffer
	if err := (Display{Colour: false}).WriteText(&plain, doc); err != nil {
		t.Fatal(err)
	}
	if err := (Display{Colour: true}).WriteText(&coloured, doc); err != nil {
		t.Fatal(err)
	}
	if !ansiPattern.MatchString(coloured.String()) {
		t.Fatal("expected escape sequences in coloured output")
	}
	if ansiPattern.MatchString(plain.String()) {
		t.Fatal("unexpected escape sequences in plain output")
	}
	if ansiPattern.ReplaceAllString(coloured.String(), "") != plain.String() {
		t.Fatal("coloured output differs from plain output beyond escapes")
	}
}

func TestPairBlock(t *testing.T) {
	ev := cluster.PairEvent{
		PathA: "/a", PathB: "/b", Score: 1, CoarseDistance: 0, CoarseBits: 640, Class: cluster.ClassStrong,
	}
	if got := (Display{}).PairBlock(ev, false); got != "1.0\n   /a\n   /b\n\n" {
		t.Fatalf("unexpected pair block %q", got)
	}
	if got := (Display{}).PairBlock(ev, true); got != "possible match: 0 / 640\n1.0\n   /a\n   /b\n\n" {
		t.Fatalf("unexpected verbose pair block %q", got)
	}
}

func TestShowPair(t *testing.T) {
	none := cluster.PairEvent{Class: cluster.ClassNone}
	weak := cluster.PairEvent{Class: cluster.ClassWeak}
	if ShowPair(none, false) || !ShowPair(none, true) {
		t.Fatal("unclassified pairs should only show in verbose mode")
	}
	if !ShowPair(weak, false) {
		t.Fatal("near misses should always show")
	}
}

func TestFormatScore(t *testing.T) {
	cases := map[float64]string{
		1:        "1.0",
		0.5:      "0.5",
		0.93126:  "0.9313",
		0.55:     "0.55",
		-0.04:    "-0.04",
		0:        "0.0",
	}
	for score, want := range cases {
		if got := FormatScore(score); got != want {
			t.Fatalf("FormatScore(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestFailureLine(t *testing.T) {
	line := (Display{}).FailureLine(&fpcalc.NotAudioError{Path: "/music/README", Code: 2})
	if line != "ERROR 2  /music/README is not audio" {
		t.Fatalf("unexpected failure line %q", line)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (Display{Colour: true}).Write(&buf, "json", sampleDocument()); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["run_id"] != "run-1" {
		t.Fatalf("unexpected run_id: %v", decoded["run_id"])
	}
	clusters, ok := decoded["clusters"].([]any)
	if !ok || len(clusters) != 1 {
		t.Fatalf("unexpected clusters: %v", decoded["clusters"])
	}
	failures := decoded["failures"].([]any)
	if failures[0].(map[string]any)["code"].(float64) != 2 {
		t.Fatalf("unexpected failure code: %v", failures[0])
	}
	if ansiPattern.Match(buf.Bytes()) {
		t.Fatal("json output must never be coloured")
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := (Display{}).Write(&buf, "yaml", sampleDocument()); err != nil {
		t.Fatalf("Write yaml: %v", err)
	}
	var decoded struct {
		RunID    string `yaml:"run_id"`
		Clusters []struct {
			Files []struct {
				Path      string `yaml:"path"`
				SizeBytes int64  `yaml:"size_bytes"`
			} `yaml:"files"`
		} `yaml:"clusters"`
		Matches []struct {
			Class  string `yaml:"class"`
			Merged bool   `yaml:"merged"`
		} `yaml:"matches"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if decoded.RunID != "run-1" || len(decoded.Clusters) != 1 || decoded.Clusters[0].Files[1].SizeBytes != 171483 {
		t.Fatalf("unexpected yaml document: %+v", decoded)
	}
	if len(decoded.Matches) != 1 || decoded.Matches[0].Class != "strong" || !decoded.Matches[0].Merged {
		t.Fatalf("unexpected matches: %+v", decoded.Matches)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := (Display{}).Write(&buf, "table", sampleDocument()); err != nil {
		t.Fatalf("Write table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"found one cluster in:", "Cluster", "maple-leaf-rag-4.opus", "286 KiB", "4m52s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "CLUSTER") {
		t.Fatalf("header should keep its case:\n%s", out)
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	if err := (Display{}).Write(&bytes.Buffer{}, "xml", Document{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestResolveColour(t *testing.T) {
	var buf bytes.Buffer
	cases := map[string]bool{"yes": true, "no": false, "auto": false, "": false}
	for mode, want := range cases {
		if got := ResolveColour(mode, &buf); got != want {
			t.Fatalf("ResolveColour(%q) = %v, want %v", mode, got, want)
		}
	}
}

func TestBuildKeepsPlainErrors(t *testing.T) {
	doc := Build(Input{Failures: []FailureInput{{Path: "/x", Err: errors.New("stat /x: gone")}}})
	if len(doc.Failures) != 1 || doc.Failures[0].Code != 0 || doc.Failures[0].Error != "stat /x: gone" {
		t.Fatalf("unexpected failures: %+v", doc.Failures)
	}
	if doc.Groups == nil {
		t.Fatal("expected empty, non-nil cluster list for stable json output")
	}
}
