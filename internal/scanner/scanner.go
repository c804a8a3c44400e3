// Package scanner finds Python sources under a directory tree. It respects
// .dtreeignore files with gitignore-style patterns, skips hidden entries and
// the usual virtualenv and build directories.
package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/l3aro/go-decision-tree/pkg/pyparse"
)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path     string // Relative path from root, slash separated
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool                   // Skip hidden files and directories (starting with .)
	DefaultExcludes []string               // Directory names never descended into
	IgnoreFileName  string                 // Name of the ignore file (default: .dtreeignore)
	Include         func(path string) bool // Reports whether a file is wanted; nil keeps Python sources
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".dtreeignore",
		DefaultExcludes: []string{
			"__pycache__",
			".venv",
			"venv",
			"env",
			".tox",
			".nox",
			".mypy_cache",
			".pytest_cache",
			"site-packages",
			"node_modules",
			"dist",
			"build",
			".git",
			".hg",
			".svn",
			".dtree",
		},
		Include: pyparse.IsPythonFile,
	}
}

// Scanner walks a directory tree collecting matching files.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.Include == nil {
		opts.Include = pyparse.IsPythonFile
	}
	return &Scanner{opts: opts}
}

// Scan walks root and returns the matching files sorted by path. Unreadable
// entries are skipped. The walk stops early if ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: not a directory", root)
	}

	// Patterns from nested ignore files apply to their own subtree only.
	rules := map[string][]IgnorePattern{}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if relPath == "." {
			patterns, err := s.loadIgnorePatterns(path)
			if err != nil {
				return fmt.Errorf("loading ignore patterns: %w", err)
			}
			rules["."] = patterns
			return nil
		}

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || s.ignored(relPath, true, rules) {
				return filepath.SkipDir
			}
			if patterns, err := s.loadIgnorePatterns(path); err == nil && len(patterns) > 0 {
				rules[relPath] = patterns
			}
			return nil
		}

		// Symlinks and other non-regular files are not followed.
		if !d.Type().IsRegular() {
			return nil
		}
		if !s.opts.Include(path) || s.ignored(relPath, false, rules) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:     relPath,
			FullPath: path,
			Size:     fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// ignored applies the ignore files of every ancestor directory of relPath,
// outermost first, so deeper files can re-include with a negation.
func (s *Scanner) ignored(relPath string, isDir bool, rules map[string][]IgnorePattern) bool {
	result := false
	dir := "."
	rest := relPath
	for {
		for _, p := range rules[dir] {
			if p.Match(rest, isDir) {
				result = !p.IsNegation()
			}
		}
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return result
		}
		if dir == "." {
			dir = rest[:i]
		} else {
			dir = dir + "/" + rest[:i]
		}
		rest = rest[i+1:]
	}
}

// loadIgnorePatterns loads ignore patterns from the ignore file in dir.
func (s *Scanner) loadIgnorePatterns(dir string) ([]IgnorePattern, error) {
	if s.opts.IgnoreFileName == "" {
		return nil, nil
	}
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParseIgnorePattern(line))
	}

	return patterns, scanner.Err()
}

// Scan is a convenience function that scans a directory with default options.
func Scan(ctx context.Context, root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(ctx, root)
}
