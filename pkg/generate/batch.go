package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/l3aro/go-decision-tree/internal/log"
	"github.com/l3aro/go-decision-tree/internal/scanner"
	"github.com/l3aro/go-decision-tree/pkg/dirty"
	"github.com/l3aro/go-decision-tree/pkg/render"
	"golang.org/x/sync/errgroup"
)

// BatchOptions configures a directory run.
type BatchOptions struct {
	Root       string         // Directory scanned for Python files
	OutDir     string         // Output root; the source layout is mirrored below it
	Render     render.Options // Options applied to every file
	Jobs       int            // Files rendered concurrently; <= 0 means 1
	Force      bool           // Render unchanged files too
	IgnoreFile string         // Ignore file name, default .dtreeignore
	CacheDir   string         // Tracker state directory, default <Root>/.dtree/cache
	Logger     log.Logger     // Nil discards log output
	Progress   func()         // Called after each file, rendered or not
}

// BatchFailure is a file that could not be rendered.
type BatchFailure struct {
	Path string
	Err  error
}

// BatchResult summarizes a directory run.
type BatchResult struct {
	Rendered []string // Output paths written
	Skipped  []string // Sources unchanged since their last render
	Failed   []BatchFailure
}

// Total returns the number of source files considered.
func (r *BatchResult) Total() int {
	return len(r.Rendered) + len(r.Skipped) + len(r.Failed)
}

// CountFiles returns how many Python files a batch over opts.Root would
// consider.
func CountFiles(ctx context.Context, opts BatchOptions) (int, error) {
	files, err := scanFiles(ctx, opts)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Batch renders every changed Python file under opts.Root. A failing file
// is recorded in the result and does not stop the others; the returned
// error is only set when the run itself could not proceed.
func Batch(ctx context.Context, opts BatchOptions) (*BatchResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard
	}
	if opts.Render.Format == "" {
		opts.Render.Format = render.FormatPNG
	}

	files, err := scanFiles(ctx, opts)
	if err != nil {
		return nil, err
	}

	outDir, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(opts.Root, dirty.DefaultCacheDir)
	}
	tracker, err := dirty.NewFromCache(
		dirty.WithCacheDir(cacheDir),
		dirty.WithFingerprint(fingerprint(outDir, opts.Render)),
	)
	if err != nil {
		logger.Warn("discarding unreadable batch state", "error", err)
		tracker = dirty.New(
			dirty.WithCacheDir(cacheDir),
			dirty.WithFingerprint(fingerprint(outDir, opts.Render)),
		)
	}

	if opts.Force {
		tracker.Clear()
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	var (
		mu     sync.Mutex
		result BatchResult
		seen   = make([]string, 0, len(files))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, f := range files {
		seen = append(seen, f.FullPath)
		g.Go(func() error {
			defer func() {
				if opts.Progress != nil {
					opts.Progress()
				}
			}()

			flog := logger.With("file", f.Path)
			output := filepath.Join(outDir, filepath.FromSlash(strings.TrimSuffix(f.Path, filepath.Ext(f.Path))))

			if !opts.Force {
				changed, err := tracker.Changed(gctx, f.FullPath)
				if err != nil && gctx.Err() != nil {
					return gctx.Err()
				}
				if err == nil && !changed && fileExists(OutputPath(output, opts.Render.Format)) {
					flog.Debug("unchanged")
					mu.Lock()
					result.Skipped = append(result.Skipped, f.Path)
					mu.Unlock()
					return nil
				}
			}

			path, err := GenerateFile(gctx, f.FullPath, output, opts.Render)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				flog.Error("render failed", "error", err)
				tracker.Forget(f.FullPath)
				mu.Lock()
				result.Failed = append(result.Failed, BatchFailure{Path: f.Path, Err: err})
				mu.Unlock()
				return nil
			}

			if err := tracker.Record(f.FullPath); err != nil {
				flog.Warn("could not record file state", "error", err)
			}
			flog.Debug("rendered", "output", path)
			mu.Lock()
			result.Rendered = append(result.Rendered, path)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if removed := tracker.Prune(seen); removed > 0 {
		logger.Debug("pruned deleted files from batch state", "count", removed)
	}
	if err := tracker.Save(); err != nil {
		logger.Warn("could not save batch state", "error", err)
	}

	return &result, nil
}

func scanFiles(ctx context.Context, opts BatchOptions) ([]scanner.FileInfo, error) {
	scanOpts := scanner.DefaultOptions()
	if opts.IgnoreFile != "" {
		scanOpts.IgnoreFileName = opts.IgnoreFile
	}
	return scanner.New(scanOpts).Scan(ctx, opts.Root)
}

// fingerprint identifies the settings that affect rendered output.
func fingerprint(outDir string, opts render.Options) string {
	return fmt.Sprintf("%s|%s|%d|%s|%s|%s|%s|%s",
		outDir, opts.Format, opts.WrapWidth, opts.RankDir, opts.Title,
		opts.Palette.Condition, opts.Palette.Terminal, opts.Palette.Expression)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
