package tracegraph

import (
	"fmt"
	"sort"
	"strings"

	graph "github.com/katalvlaran/lvlath/graph/core"
)

// DOT renders the graph in Graphviz DOT form, the presentation layer's
// graph artifact. Edges are emitted in sorted order so output is stable
// across runs.
func DOT(g *graph.Graph) string {
	type pair struct{ from, to string }
	pairs := make([]pair, 0, len(g.Edges()))
	seen := make(map[pair]bool)
	for _, e := range g.Edges() {
		p := pair{e.From.ID, e.To.ID}
		if seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].from != pairs[j].from {
			return pairs[i].from < pairs[j].from
		}
		return pairs[i].to < pairs[j].to
	})

	var b strings.Builder
	b.WriteString("digraph computation {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, fontsize=10];\n")
	for _, p := range pairs {
		fmt.Fprintf(&b, "  %s -> %s;\n", quoteID(p.from), quoteID(p.to))
	}
	b.WriteString("}\n")
	return b.String()
}

// Stats reports node and edge counts for logging.
func Stats(g *graph.Graph) (nodes, edges int) {
	type pair struct{ from, to string }
	seen := make(map[pair]bool)
	for _, e := range g.Edges() {
		seen[pair{e.From.ID, e.To.ID}] = true
	}
	return len(g.Vertices()), len(seen)
}

// quoteID escapes a node label for DOT.
func quoteID(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
}
