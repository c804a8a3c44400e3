package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/l3aro/go-decision-tree/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func batchOptions(root, out string) BatchOptions {
	opts := render.DefaultOptions()
	opts.Format = render.FormatMermaid
	return BatchOptions{
		Root:   root,
		OutDir: out,
		Render: opts,
		Jobs:   2,
	}
}

func TestBatch(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "trees")
	writeSources(t, root, map[string]string{
		"app.py":         sample,
		"pkg/helpers.py": "foo()\nbar()\n",
		"pkg/broken.py":  "def f(:\n",
		"notes.txt":      "not python",
	})

	var calls atomic.Int32
	opts := batchOptions(root, out)
	opts.Progress = func() { calls.Add(1) }

	result, err := Batch(context.Background(), opts)
	require.NoError(t, err)

	sort.Strings(result.Rendered)
	assert.Equal(t, []string{
		filepath.Join(out, "app.mmd"),
		filepath.Join(out, "pkg", "helpers.mmd"),
	}, result.Rendered)
	assert.Empty(t, result.Skipped)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "pkg/broken.py", result.Failed[0].Path)
	assert.True(t, errors.Is(result.Failed[0].Err, ErrParse))
	assert.Equal(t, 3, result.Total())
	assert.Equal(t, int32(3), calls.Load())

	data, err := os.ReadFile(filepath.Join(out, "pkg", "helpers.mmd"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "node_0 --> node_1")

	_, err = os.Stat(filepath.Join(root, ".dtree", "cache", "state.msgpack"))
	assert.NoError(t, err)
}

func TestBatch_SkipsUnchanged(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "trees")
	writeSources(t, root, map[string]string{
		"a.py": "a()\n",
		"b.py": "b()\n",
	})

	opts := batchOptions(root, out)
	first, err := Batch(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, first.Rendered, 2)

	writeSources(t, root, map[string]string{"b.py": "b()\nc()\n"})

	second, err := Batch(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, second.Skipped)
	assert.Equal(t, []string{filepath.Join(out, "b.mmd")}, second.Rendered)

	opts.Force = true
	forced, err := Batch(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, forced.Rendered, 2)
	assert.Empty(t, forced.Skipped)
}

func TestBatch_FormatChangeRerenders(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "trees")
	writeSources(t, root, map[string]string{"a.py": "a()\n"})

	opts := batchOptions(root, out)
	_, err := Batch(context.Background(), opts)
	require.NoError(t, err)

	opts.Render.Format = render.FormatASCII
	result, err := Batch(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "a.txt")}, result.Rendered)
}

func TestBatch_MissingOutputRerenders(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "trees")
	writeSources(t, root, map[string]string{"a.py": "a()\n"})

	opts := batchOptions(root, out)
	_, err := Batch(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(out, "a.mmd")))

	result, err := Batch(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, result.Rendered, 1)
}

func TestBatch_Errors(t *testing.T) {
	_, err := Batch(context.Background(), batchOptions(filepath.Join(t.TempDir(), "missing"), t.TempDir()))
	assert.Error(t, err)

	root := t.TempDir()
	writeSources(t, root, map[string]string{"a.py": "a()\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Batch(ctx, batchOptions(root, t.TempDir()))
	assert.Error(t, err)
}

func TestCountFiles(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, map[string]string{
		"a.py":         "a()\n",
		"b.py":         "b()\n",
		"skip/c.py":    "c()\n",
		".dtreeignore": "skip/\n",
	})

	n, err := CountFiles(context.Background(), BatchOptions{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
