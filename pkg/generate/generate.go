// Package generate runs the full pipeline: parse Python source, build the
// decision tree and write it out in the requested format.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-decision-tree/pkg/decision"
	"github.com/l3aro/go-decision-tree/pkg/graph"
	"github.com/l3aro/go-decision-tree/pkg/pyparse"
	"github.com/l3aro/go-decision-tree/pkg/render"
	"github.com/l3aro/go-decision-tree/pkg/stmt"
)

var (
	// ErrParse wraps a *pyparse.SyntaxError when the source does not parse.
	ErrParse = errors.New("parse failed")

	// ErrNotFound is returned when the input file does not exist.
	ErrNotFound = errors.New("file not found")
)

// DefaultOutput is the output name used when none is given.
const DefaultOutput = "decision_tree"

// BuildSource parses src and builds its decision tree.
func BuildSource(ctx context.Context, src []byte) (*graph.Graph, error) {
	tree, err := pyparse.Parse(ctx, src)
	if err != nil {
		return nil, wrapParse(err)
	}
	return decision.Build(tree), nil
}

// BuildFile reads and parses a Python file and builds its decision tree.
func BuildFile(ctx context.Context, input string) (*graph.Graph, error) {
	tree, err := parseFile(ctx, input)
	if err != nil {
		return nil, err
	}
	return decision.Build(tree), nil
}

func parseFile(ctx context.Context, input string) (*stmt.Tree, error) {
	tree, err := pyparse.ParseFile(ctx, input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, input)
		}
		return nil, wrapParse(err)
	}
	return tree, nil
}

// LoadGraph reads a graph document saved in the json or msgpack format,
// chosen by the file extension.
func LoadGraph(path string) (*graph.Graph, error) {
	var decode func(io.Reader) (*graph.Graph, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decode = render.DecodeJSON
	case ".msgpack":
		decode = render.DecodeMsgpack
	default:
		return nil, fmt.Errorf("unsupported graph document %s (want .json or .msgpack)", path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return decode(f)
}

// Generate builds the decision tree of src and writes it to
// <output>.<ext>, returning the path written. Nothing is written unless
// rendering succeeds.
func Generate(ctx context.Context, src []byte, output string, opts render.Options) (string, error) {
	g, err := BuildSource(ctx, src)
	if err != nil {
		return "", err
	}
	return Write(ctx, g, output, opts)
}

// GenerateFile is Generate for a file on disk.
func GenerateFile(ctx context.Context, input, output string, opts render.Options) (string, error) {
	g, err := BuildFile(ctx, input)
	if err != nil {
		return "", err
	}
	return Write(ctx, g, output, opts)
}

// Write renders g and stores it at <output>.<ext>, creating parent
// directories as needed.
func Write(ctx context.Context, g *graph.Graph, output string, opts render.Options) (string, error) {
	if output == "" {
		output = DefaultOutput
	}
	if opts.Format == "" {
		opts.Format = render.FormatPNG
	}

	var buf bytes.Buffer
	if err := render.Render(ctx, g, opts, &buf); err != nil {
		return "", err
	}

	path := OutputPath(output, opts.Format)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// OutputPath appends the format extension to output.
func OutputPath(output string, format render.Format) string {
	return output + "." + format.Ext()
}

func wrapParse(err error) error {
	var se *pyparse.SyntaxError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrParse, se)
	}
	return err
}
