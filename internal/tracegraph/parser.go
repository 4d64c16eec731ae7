// Package tracegraph reconstructs an approximate computation graph from the
// engine's indentation-nested trace text. Depth is inferred from a fixed
// two-spaces-per-level convention, so the result is an approximation of the
// call structure, never a guaranteed-faithful call tree. Parsing has no
// failure mode: malformed input degrades into a sparser graph.
package tracegraph

import (
	"strings"

	graph "github.com/katalvlaran/lvlath/graph/core"

	"policyscope/internal/logging"
)

// RootLabel is the synthetic root every accepted top-level step hangs off.
const RootLabel = "root"

// DefaultMaxDepth bounds how deep into the trace the graph reaches.
const DefaultMaxDepth = 5

// Parse converts trace lines into a directed graph. Nodes are step labels
// (the text before the first '=' of each line, trimmed) plus the synthetic
// root; edges run parent to child. Duplicate edges are collapsed.
//
// Depth bookkeeping follows the indentation one level at a time: a line
// indented more than one level deeper than the current depth is clamped to
// a single descent, deliberately under-counting depth. Lines indented
// beyond maxDepth contribute no edge but still participate in depth
// tracking so later shallower lines attach correctly.
func Parse(lines []string, maxDepth int) *graph.Graph {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	g := graph.NewGraph(true, false)
	g.AddVertex(&graph.Vertex{ID: RootLabel, Metadata: make(map[string]interface{})})

	depth := 0
	// parents[i] is the node that lines at depth i attach to.
	parents := []string{RootLabel}
	// last label accepted at the current depth; the parent for the next
	// descent.
	current := RootLabel

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := indentLevel(line)

		switch {
		case indent == depth:
			// same level, nothing to adjust
		case indent > depth:
			if depth < maxDepth {
				depth++
				parents = append(parents, current)
			}
		default:
			for depth > indent && depth > 0 {
				depth--
				parents = parents[:len(parents)-1]
			}
		}

		if indent > maxDepth {
			// beyond the bound: tracked above, never recorded
			continue
		}

		label := nodeLabel(line)
		if label == "" {
			continue
		}

		if !g.HasEdge(parents[depth], label) {
			g.AddEdge(parents[depth], label, 0)
		}
		current = label
	}

	logging.GraphDebug("parse: lines=%d nodes=%d edges=%d max_depth=%d",
		len(lines), len(g.Vertices()), len(g.Edges()), maxDepth)

	return g
}

// indentLevel measures leading whitespace in units of two spaces.
func indentLevel(line string) int {
	spaces := 0
	for _, r := range line {
		if r != ' ' {
			break
		}
		spaces++
	}
	return spaces / 2
}

// nodeLabel extracts the step label: the text before the first '=', trimmed.
func nodeLabel(line string) string {
	trimmed := strings.TrimSpace(line)
	if idx := strings.Index(trimmed, "="); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
