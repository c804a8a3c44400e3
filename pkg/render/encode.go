package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/l3aro/go-decision-tree/pkg/graph"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeJSON writes the graph document as indented JSON.
func EncodeJSON(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.Document()); err != nil {
		return fmt.Errorf("render: encoding JSON: %w", err)
	}
	return nil
}

// EncodeMsgpack writes the graph document as msgpack.
func EncodeMsgpack(g *graph.Graph, w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(g.Document()); err != nil {
		return fmt.Errorf("render: encoding msgpack: %w", err)
	}
	return nil
}

// DecodeMsgpack reads a graph written by EncodeMsgpack.
func DecodeMsgpack(r io.Reader) (*graph.Graph, error) {
	var doc graph.Document
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("render: decoding msgpack: %w", err)
	}
	return graph.FromDocument(doc)
}

// DecodeJSON reads a graph written by EncodeJSON.
func DecodeJSON(r io.Reader) (*graph.Graph, error) {
	var doc graph.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("render: decoding JSON: %w", err)
	}
	return graph.FromDocument(doc)
}
