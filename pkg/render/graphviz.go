package render

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/l3aro/go-decision-tree/pkg/graph"
)

// RenderImage lays out g with graphviz dot and writes it as PNG, SVG, JPG or
// DOT source. Nodes are filled boxes colored by style; branch edges carry
// their True/False label.
func RenderImage(ctx context.Context, g *graph.Graph, opts Options, w io.Writer) error {
	format, err := graphvizFormat(opts.Format)
	if err != nil {
		return err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("render: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	gg, err := gv.Graph()
	if err != nil {
		return fmt.Errorf("render: create graph: %w", err)
	}
	defer gg.Close()

	if opts.RankDir == RankLR {
		gg.SetRankDir(cgraph.LRRank)
	} else {
		gg.SetRankDir(cgraph.TBRank)
	}
	if opts.Title != "" {
		gg.SetLabel(opts.Title)
	}

	palette := opts.Palette
	if palette == (Palette{}) {
		palette = DefaultPalette()
	}

	gvNodes := make(map[string]*cgraph.Node, g.Len())
	for _, n := range g.Nodes() {
		gvNode, nErr := gg.CreateNodeByName(n.ID)
		if nErr != nil {
			return fmt.Errorf("render: create node %s: %w", n.ID, nErr)
		}
		gvNode.SetLabel(wrapLabel(n.DisplayLabel(), opts.WrapWidth))
		gvNode.SetShape(cgraph.BoxShape)
		gvNode.SetStyle(cgraph.FilledNodeStyle)
		gvNode.SetFillColor(palette.Fill(n.Style))
		gvNodes[n.ID] = gvNode
	}

	for i, e := range g.Edges() {
		from, to := gvNodes[e.From], gvNodes[e.To]
		if from == nil || to == nil {
			return fmt.Errorf("render: edge %s -> %s references unknown node", e.From, e.To)
		}
		gvEdge, eErr := gg.CreateEdgeByName(fmt.Sprintf("e%d", i), from, to)
		if eErr != nil {
			return fmt.Errorf("render: create edge %s -> %s: %w", e.From, e.To, eErr)
		}
		if e.Label != "" {
			gvEdge.SetLabel(e.Label)
		}
	}

	if err := gv.Render(ctx, gg, format, w); err != nil {
		return fmt.Errorf("render: %s: %w", opts.Format, err)
	}
	return nil
}

// graphvizFormat maps an image format onto the graphviz output format.
func graphvizFormat(f Format) (graphviz.Format, error) {
	switch f {
	case FormatPNG:
		return graphviz.PNG, nil
	case FormatSVG:
		return graphviz.SVG, nil
	case FormatJPG:
		return graphviz.JPG, nil
	case FormatDOT:
		return graphviz.XDOT, nil
	default:
		return "", fmt.Errorf("render: %q is not an image format", f)
	}
}
