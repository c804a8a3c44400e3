// Package render draws decision tree graphs. Images go through graphviz;
// Mermaid and ASCII produce text diagrams; JSON and msgpack serialize the
// graph document for other tools.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/l3aro/go-decision-tree/pkg/graph"
	"github.com/mitchellh/go-wordwrap"
)

// Format is an output format.
type Format string

const (
	FormatPNG     Format = "png"
	FormatSVG     Format = "svg"
	FormatJPG     Format = "jpg"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatASCII   Format = "ascii"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Formats lists every supported format.
var Formats = []Format{
	FormatPNG, FormatSVG, FormatJPG, FormatDOT,
	FormatMermaid, FormatASCII, FormatJSON, FormatMsgpack,
}

// ParseFormat resolves a format name, case-insensitively. "jpeg" and "mmd"
// are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "jpeg":
		return FormatJPG, nil
	case "mmd":
		return FormatMermaid, nil
	case "txt", "text":
		return FormatASCII, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Ext returns the file extension, without the dot, for the format.
func (f Format) Ext() string {
	switch f {
	case FormatMermaid:
		return "mmd"
	case FormatASCII:
		return "txt"
	default:
		return string(f)
	}
}

// IsImage reports whether the format is rendered by graphviz.
func (f Format) IsImage() bool {
	switch f {
	case FormatPNG, FormatSVG, FormatJPG, FormatDOT:
		return true
	}
	return false
}

// RankDir is the graphviz layout direction.
type RankDir string

const (
	RankTB RankDir = "TB" // top to bottom
	RankLR RankDir = "LR" // left to right
)

// Palette holds the fill color of each node style.
type Palette struct {
	Condition  string `yaml:"condition" json:"condition"`
	Terminal   string `yaml:"terminal" json:"terminal"`
	Expression string `yaml:"expression" json:"expression"`
}

// DefaultPalette returns the standard colors: conditions light blue, returns
// light green, expressions light yellow.
func DefaultPalette() Palette {
	return Palette{
		Condition:  "lightblue",
		Terminal:   "lightgreen",
		Expression: "lightyellow",
	}
}

// Fill returns the fill color for a node style.
func (p Palette) Fill(style graph.Style) string {
	switch style {
	case graph.StyleTerminal:
		return p.Terminal
	case graph.StyleExpression:
		return p.Expression
	default:
		return p.Condition
	}
}

// DefaultWrapWidth is the column at which node labels are wrapped.
const DefaultWrapWidth = 40

// Options configures rendering.
type Options struct {
	Format    Format
	WrapWidth int // 0 disables wrapping
	RankDir   RankDir
	Title     string
	Palette   Palette
}

// DefaultOptions returns PNG output with the standard style.
func DefaultOptions() Options {
	return Options{
		Format:    FormatPNG,
		WrapWidth: DefaultWrapWidth,
		RankDir:   RankTB,
		Palette:   DefaultPalette(),
	}
}

// Render writes g to w in the format named by opts.
func Render(ctx context.Context, g *graph.Graph, opts Options, w io.Writer) error {
	if g == nil {
		return fmt.Errorf("render: nil graph")
	}

	switch opts.Format {
	case FormatPNG, FormatSVG, FormatJPG, FormatDOT:
		return RenderImage(ctx, g, opts, w)
	case FormatMermaid:
		_, err := io.WriteString(w, RenderMermaid(g, opts))
		return err
	case FormatASCII:
		_, err := io.WriteString(w, RenderASCII(g))
		return err
	case FormatJSON:
		return EncodeJSON(g, w)
	case FormatMsgpack:
		return EncodeMsgpack(g, w)
	default:
		return fmt.Errorf("render: unsupported format %q", opts.Format)
	}
}

// wrapLabel breaks a label into lines of at most width columns. Words longer
// than width are kept whole.
func wrapLabel(label string, width int) string {
	if width <= 0 {
		return label
	}
	return wordwrap.WrapString(label, uint(width))
}
