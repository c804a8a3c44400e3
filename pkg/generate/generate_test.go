package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/go-decision-tree/pkg/graph"
	"github.com/l3aro/go-decision-tree/pkg/pyparse"
	"github.com/l3aro/go-decision-tree/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `def sign(x):
    if x > 0:
        return 1
    else:
        return -1
`

func TestBuildSource(t *testing.T) {
	g, err := BuildSource(context.Background(), []byte(sample))
	require.NoError(t, err)

	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, "x > 0", nodes[0].Label)
	assert.Equal(t, graph.StyleCondition, nodes[0].Style)
	assert.Equal(t, "return 1", nodes[1].Label)
	assert.Equal(t, "return -1", nodes[2].Label)

	assert.Equal(t, []graph.Edge{
		{From: "node_0", To: "node_1", Label: "True"},
		{From: "node_0", To: "node_2", Label: "False"},
	}, g.Edges())
}

func TestBuildSource_SyntaxError(t *testing.T) {
	_, err := BuildSource(context.Background(), []byte("if x\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var se *pyparse.SyntaxError
	assert.True(t, errors.As(err, &se))
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out", "tree")

	tests := []struct {
		format render.Format
		ext    string
	}{
		{render.FormatPNG, ".png"},
		{render.FormatSVG, ".svg"},
		{render.FormatMermaid, ".mmd"},
		{render.FormatASCII, ".txt"},
		{render.FormatJSON, ".json"},
		{render.FormatMsgpack, ".msgpack"},
	}

	for _, tc := range tests {
		t.Run(string(tc.format), func(t *testing.T) {
			opts := render.DefaultOptions()
			opts.Format = tc.format

			path, err := Generate(context.Background(), []byte(sample), output, opts)
			require.NoError(t, err)
			assert.Equal(t, output+tc.ext, path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}
}

func TestGenerate_SyntaxErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "tree")

	_, err := Generate(context.Background(), []byte("def f(:\n"), output, render.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	_, statErr := os.Stat(output + ".png")
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_UnsupportedFormatWritesNothing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "tree")

	_, err := Generate(context.Background(), []byte(sample), output, render.Options{Format: "bmp"})
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestGenerateFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sign.py")
	require.NoError(t, os.WriteFile(input, []byte(sample), 0644))

	opts := render.DefaultOptions()
	opts.Format = render.FormatMermaid

	path, err := GenerateFile(context.Background(), input, filepath.Join(dir, "sign"), opts)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "node_0 -->|True| node_1")
}

func TestGenerateFile_NotFound(t *testing.T) {
	_, err := GenerateFile(context.Background(), filepath.Join(t.TempDir(), "missing.py"), "", render.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrParse))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "decision_tree.png", OutputPath(DefaultOutput, render.FormatPNG))
	assert.Equal(t, "out/a.mmd", OutputPath("out/a", render.FormatMermaid))
}
