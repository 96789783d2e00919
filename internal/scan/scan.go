// Package scan expands command-line arguments into the list of files to
// fingerprint.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UnreadableError reports an argument that does not exist or cannot be read.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return "can't read " + e.Path
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// Result is the expanded input set.
type Result struct {
	// Files are absolute paths in argument order, directories expanded in
	// lexical order.
	Files []string
	// Roots are the distinct directories the arguments live in, in argument
	// order, with nested roots folded into their ancestors.
	Roots []string
}

// Expand walks the given arguments. Hidden files and directories found while
// walking are skipped; hidden paths given explicitly are kept. Paths that
// differ only in Unicode normalisation are treated as the same file.
func Expand(args []string) (Result, error) {
	var (
		result Result
		seen   = make(map[string]struct{})
		roots  []string
	)
	add := func(path string) {
		key := norm.NFC.String(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		result.Files = append(result.Files, path)
	}

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return Result{}, &UnreadableError{Path: arg, Err: err}
		}
		info, err := os.Stat(abs)
		if err != nil {
			return Result{}, &UnreadableError{Path: arg, Err: err}
		}
		if !info.IsDir() {
			roots = append(roots, filepath.Dir(abs))
			add(abs)
			continue
		}

		roots = append(roots, abs)
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == abs {
					return walkErr
				}
				// unreadable subtrees are skipped
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if path != abs && isHidden(d.Name()) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return Result{}, &UnreadableError{Path: arg, Err: err}
		}
	}

	result.Roots = foldRoots(roots)
	return result, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// foldRoots drops duplicates and directories nested under an earlier or
// later root, preserving first-seen order.
func foldRoots(roots []string) []string {
	var out []string
	for _, root := range roots {
		if slices.Contains(out, root) {
			continue
		}
		covered := false
		for _, other := range roots {
			if other != root && isWithin(root, other) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, root)
		}
	}
	return out
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

