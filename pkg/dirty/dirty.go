// Package dirty tracks which source files changed since their decision tree
// was last rendered. State is keyed by absolute path, compares SHA-256
// content hashes and is persisted with msgpack between runs.
package dirty

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// DefaultCacheDir is the default directory for storing dirty state.
const DefaultCacheDir = ".dtree/cache"

// DefaultCacheFile is the default filename for dirty state.
const DefaultCacheFile = "state.msgpack"

// stateVersion is bumped when the on-disk layout changes; older state is
// discarded on load.
const stateVersion = 2

// fileState is the recorded state of a single file.
type fileState struct {
	Path       string `msgpack:"path"`
	Hash       string `msgpack:"hash"`
	RenderedAt int64  `msgpack:"rendered_at"` // Unix timestamp
}

// stateFile is the on-disk structure.
type stateFile struct {
	Version     int         `msgpack:"version"`
	Fingerprint string      `msgpack:"fingerprint"`
	Files       []fileState `msgpack:"files"`
}

// Tracker records content hashes of rendered files. It is safe for
// concurrent use.
type Tracker struct {
	mu          sync.RWMutex
	files       map[string]fileState
	fingerprint string
	cacheDir    string
	cacheFile   string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCacheDir sets the cache directory.
func WithCacheDir(dir string) Option {
	return func(t *Tracker) {
		t.cacheDir = dir
	}
}

// WithCacheFile sets the cache filename.
func WithCacheFile(file string) Option {
	return func(t *Tracker) {
		t.cacheFile = file
	}
}

// WithFingerprint identifies the render settings the recorded state was
// produced with. State loaded under a different fingerprint is dropped, so
// changing the output format re-renders every file.
func WithFingerprint(fp string) Option {
	return func(t *Tracker) {
		t.fingerprint = fp
	}
}

// New creates a new Tracker with optional configuration.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		files:     make(map[string]fileState),
		cacheDir:  DefaultCacheDir,
		cacheFile: DefaultCacheFile,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFromCache creates a Tracker and loads its cache file.
func NewFromCache(opts ...Option) (*Tracker, error) {
	t := New(opts...)
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t, nil
}

// hashFile returns the hex SHA-256 of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("dirty: open %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("dirty: hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Changed reports whether the file's content differs from what was last
// recorded. Untracked files are changed.
func (t *Tracker) Changed(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("dirty: resolve path: %w", err)
	}

	hash, err := hashFile(absPath)
	if err != nil {
		return false, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	existing, exists := t.files[absPath]
	return !exists || existing.Hash != hash, nil
}

// Record stores the file's current hash, marking it up to date. Call it
// after the file rendered successfully.
func (t *Tracker) Record(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("dirty: resolve path: %w", err)
	}

	hash, err := hashFile(absPath)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.files[absPath] = fileState{
		Path:       absPath,
		Hash:       hash,
		RenderedAt: time.Now().Unix(),
	}
	return nil
}

// Forget removes a file from tracking so the next run treats it as changed.
func (t *Tracker) Forget(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.files, absPath)
}

// Prune drops every tracked file not in keep and returns how many were
// removed. Paths in keep may be relative.
func (t *Tracker) Prune(keep []string) int {
	wanted := make(map[string]bool, len(keep))
	for _, p := range keep {
		if abs, err := filepath.Abs(p); err == nil {
			wanted[abs] = true
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for path := range t.files {
		if !wanted[path] {
			delete(t.files, path)
			removed++
		}
	}
	return removed
}

// hash returns the recorded hash for a tracked file.
func (t *Tracker) hash(path string) (string, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	state, exists := t.files[absPath]
	return state.Hash, exists
}

// tracked returns the tracked paths in sorted order.
func (t *Tracker) tracked() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.files))
	for path := range t.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// Clear removes all tracked files.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = make(map[string]fileState)
}

// CachePath returns the full path to the cache file.
func (t *Tracker) CachePath() string {
	return filepath.Join(t.cacheDir, t.cacheFile)
}

// Save persists the state to the cache file. The file is replaced
// atomically so an interrupted run leaves the previous state readable.
func (t *Tracker) Save() error {
	if err := os.MkdirAll(t.cacheDir, 0755); err != nil {
		return fmt.Errorf("dirty: create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(t.cacheDir, t.cacheFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("dirty: create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := t.SaveTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("dirty: write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.CachePath()); err != nil {
		return fmt.Errorf("dirty: replace state: %w", err)
	}
	return nil
}

// Load restores the state from the cache file. A missing file leaves the
// tracker empty.
func (t *Tracker) Load() error {
	f, err := os.Open(t.CachePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("dirty: open state: %w", err)
	}
	defer f.Close()

	return t.LoadFrom(f)
}

// SaveTo writes the state to the given writer.
func (t *Tracker) SaveTo(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	files := make([]fileState, 0, len(t.files))
	for _, state := range t.files {
		files = append(files, state)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	data := stateFile{
		Version:     stateVersion,
		Fingerprint: t.fingerprint,
		Files:       files,
	}

	if err := msgpack.NewEncoder(w).Encode(&data); err != nil {
		return fmt.Errorf("dirty: encode state: %w", err)
	}
	return nil
}

// LoadFrom reads the state from the given reader. State written by another
// version or under another fingerprint is ignored.
func (t *Tracker) LoadFrom(r io.Reader) error {
	var data stateFile
	if err := msgpack.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("dirty: decode state: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.files = make(map[string]fileState, len(data.Files))
	if data.Version != stateVersion || data.Fingerprint != t.fingerprint {
		return nil
	}
	for _, state := range data.Files {
		t.files[state.Path] = state
	}
	return nil
}
