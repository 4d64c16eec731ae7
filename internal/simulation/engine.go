// Package simulation is the client boundary for the external
// microsimulation engine. The engine owns rule semantics, results and the
// computation trace; this package only moves households in and results out.
package simulation

import (
	"context"
	"strings"

	"policyscope/internal/household"
)

// Result is one engine calculation: the numeric value of the requested
// variable for the requested period, plus the engine's computation trace
// rendered as indentation-nested text lines (two spaces per depth level).
type Result struct {
	Value      float64  `json:"result"`
	TraceLines []string `json:"trace"`
}

// TraceText joins the trace lines into the single block shown to users and
// embedded in the explanation prompt.
func (r *Result) TraceText() string {
	return strings.Join(r.TraceLines, "\n")
}

// Engine computes a variable for a household. Implementations must not
// catch their own failures: a calculation error aborts the submission and
// surfaces through the presentation layer.
type Engine interface {
	Calculate(ctx context.Context, situation *household.Situation, variable, period string) (*Result, error)
}
