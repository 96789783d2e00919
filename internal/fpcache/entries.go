package fpcache

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/dustin/go-humanize"

	"audiodupes/internal/chromaprint"
	"audiodupes/internal/logging"
)

// Key identifies one cached extraction.
type Key struct {
	Path          string
	SizeBytes     int64
	ModTime       time.Time
	TrimSilence   bool
	LengthSeconds int
}

// Entry is the cached result of an extraction.
type Entry struct {
	Fingerprint     chromaprint.Fingerprint
	DurationSeconds int
}

// Stats summarizes the cache contents.
type Stats struct {
	Path        string    `json:"path"`
	Entries     int       `json:"entries"`
	CodeBytes   int64     `json:"code_bytes"`
	FileBytes   int64     `json:"file_bytes"`
	OldestEntry time.Time `json:"oldest_entry"`
	NewestEntry time.Time `json:"newest_entry"`
}

// String renders a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("%d fingerprints, %s of codes, %s on disk",
		s.Entries, humanize.IBytes(uint64(max(s.CodeBytes, 0))), humanize.IBytes(uint64(max(s.FileBytes, 0))))
}

// Get returns the cached entry for key. A row whose size or modification
// time differs from key is treated as a miss.
func (s *Store) Get(ctx context.Context, key Key) (Entry, bool, error) {
	var (
		size     int64
		mtime    int64
		duration int
		blob     []byte
		sum      int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT size_bytes, mtime_ns, duration_seconds, codes, codes_xxh64 FROM fingerprints
		 WHERE path = ? AND trimmed = ? AND length_seconds = ?`,
		key.Path, boolToInt(key.TrimSilence), key.LengthSeconds,
	).Scan(&size, &mtime, &duration, &blob, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("query fingerprint: %w", err)
	}
	if size != key.SizeBytes || mtime != key.ModTime.UnixNano() {
		s.logger.Debug("stale cache entry",
			logging.String(logging.FieldPath, key.Path),
			logging.Int64("cached_size_bytes", size),
			logging.Int64("size_bytes", key.SizeBytes),
		)
		return Entry{}, false, nil
	}
	if checksum(blob) != sum {
		logging.WarnWithContext(s.logger, "corrupt cache entry ignored", "cache_entry_corrupt",
			logging.String(logging.FieldPath, key.Path),
			logging.String(logging.FieldImpact, "file is fingerprinted again and the entry replaced"),
		)
		return Entry{}, false, nil
	}
	fp, err := decodeCodes(blob)
	if err != nil {
		return Entry{}, false, fmt.Errorf("decode fingerprint for %s: %w", key.Path, err)
	}
	return Entry{Fingerprint: fp, DurationSeconds: duration}, true, nil
}

// Put stores or replaces the entry for key.
func (s *Store) Put(ctx context.Context, key Key, entry Entry) error {
	if err := entry.Fingerprint.Validate(); err != nil {
		return fmt.Errorf("cache %s: %w", key.Path, err)
	}
	blob := encodeCodes(entry.Fingerprint)
	_, err := s.execWithRetry(ctx,
		`INSERT INTO fingerprints (path, trimmed, length_seconds, size_bytes, mtime_ns, duration_seconds, codes, codes_xxh64, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (path, trimmed, length_seconds) DO UPDATE SET
		   size_bytes = excluded.size_bytes,
		   mtime_ns = excluded.mtime_ns,
		   duration_seconds = excluded.duration_seconds,
		   codes = excluded.codes,
		   codes_xxh64 = excluded.codes_xxh64,
		   updated_at = excluded.updated_at`,
		key.Path, boolToInt(key.TrimSilence), key.LengthSeconds,
		key.SizeBytes, key.ModTime.UnixNano(), entry.DurationSeconds,
		blob, checksum(blob), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store fingerprint: %w", err)
	}
	return nil
}

// Stats reports entry counts and sizes.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	var oldest, newest sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(LENGTH(codes)), 0), MIN(updated_at), MAX(updated_at) FROM fingerprints`,
	).Scan(&stats.Entries, &stats.CodeBytes, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	stats.OldestEntry = parseTimestamp(oldest)
	stats.NewestEntry = parseTimestamp(newest)
	if info, err := os.Stat(s.path); err == nil {
		stats.FileBytes = info.Size()
	}
	return stats, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM fingerprints`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	if _, err := s.execWithRetry(ctx, `VACUUM`); err != nil {
		logging.WarnWithContext(s.logger, "cache vacuum failed", "cache_vacuum_failed",
			logging.String(logging.FieldErrorHint, "delete the cache file if it keeps growing"),
			logging.Error(err),
		)
	}
	return removed, nil
}

// Prune removes entries whose files no longer exist.
func (s *Store) Prune(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT path FROM fingerprints`)
	if err != nil {
		return 0, fmt.Errorf("list cached paths: %w", err)
	}
	var missing []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return 0, err
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			missing = append(missing, path)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	_ = rows.Close()

	for _, path := range missing {
		if _, err := s.execWithRetry(ctx, `DELETE FROM fingerprints WHERE path = ?`, path); err != nil {
			return 0, fmt.Errorf("prune %s: %w", path, err)
		}
	}
	return len(missing), nil
}

func encodeCodes(fp chromaprint.Fingerprint) []byte {
	buf := make([]byte, 4*len(fp))
	for i, code := range fp {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(code))
	}
	return buf
}

func decodeCodes(blob []byte) (chromaprint.Fingerprint, error) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, fmt.Errorf("invalid code blob length %d", len(blob))
	}
	fp := make(chromaprint.Fingerprint, len(blob)/4)
	for i := range fp {
		fp[i] = chromaprint.Code(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return fp, nil
}

// checksum is stored as a signed integer because SQLite has no unsigned type.
func checksum(blob []byte) int64 {
	return int64(xxhash.Checksum64(blob))
}

func parseTimestamp(value sql.NullString) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
