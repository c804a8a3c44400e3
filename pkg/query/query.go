// Package query evaluates jq expressions against the JSON document of a
// decision tree graph.
package query

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/l3aro/go-decision-tree/pkg/graph"
)

// Compile parses and compiles a jq expression. The environment is not
// exposed to queries.
func Compile(expression string) (*gojq.Code, error) {
	if expression == "" {
		return nil, fmt.Errorf("empty jq expression")
	}

	q, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("jq parse error in %q: %w", expression, err)
	}

	code, err := gojq.Compile(q, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, fmt.Errorf("jq compile error in %q: %w", expression, err)
	}
	return code, nil
}

// Run evaluates expression against g's document ({"nodes": [...], "edges":
// [...]}) and returns every value it produces.
func Run(ctx context.Context, g *graph.Graph, expression string) ([]any, error) {
	code, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	input, err := toJQ(g.Document())
	if err != nil {
		return nil, err
	}

	iter := code.RunWithContext(ctx, input)

	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if haltErr, isHalt := err.(*gojq.HaltError); isHalt && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq evaluation failed for %q: %w", expression, err)
		}
		results = append(results, v)
	}
	return results, nil
}

// toJQ converts v into the map/slice/float64 shapes gojq operates on.
func toJQ(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding graph: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding graph: %w", err)
	}
	return out, nil
}
