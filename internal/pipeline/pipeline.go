// Package pipeline wires the submission flow: build the household, run the
// engine, optionally parse the trace into a graph, request an explanation.
// Execution is strictly linear and synchronous; nothing survives a
// submission.
package pipeline

import (
	"context"
	"fmt"

	"policyscope/internal/explain"
	"policyscope/internal/household"
	"policyscope/internal/simulation"
	"policyscope/internal/tracegraph"
)

// Runner executes submissions. Construct once at startup and share; it
// holds only immutable collaborators.
type Runner struct {
	Engine       simulation.Engine
	Requester    *explain.Requester
	GraphEnabled bool
	MaxDepth     int
}

// Outcome carries the four display artifacts of one submission.
type Outcome struct {
	Variable    string  `json:"variable"`
	Period      string  `json:"period"`
	Value       float64 `json:"value"`
	Formatted   string  `json:"formatted"`
	Explanation string  `json:"explanation"`
	GraphDOT    string  `json:"graph_dot,omitempty"`
	Trace       string  `json:"trace"`
}

// Run executes one submission. Inputs must already be validated. An engine
// failure aborts the run and is returned; an explanation failure never
// does (the Requester converts it to fallback text).
func (r *Runner) Run(ctx context.Context, in household.Inputs) (*Outcome, error) {
	situation := household.Build(in)

	result, err := r.Engine.Calculate(ctx, situation, in.Variable, in.Period)
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}

	traceText := result.TraceText()

	var dot string
	if r.GraphEnabled {
		g := tracegraph.Parse(result.TraceLines, r.MaxDepth)
		dot = tracegraph.DOT(g)
	}

	explanation := r.Requester.Explain(ctx, in.Variable, result.Value, traceText)

	return &Outcome{
		Variable:    in.Variable,
		Period:      in.Period,
		Value:       result.Value,
		Formatted:   fmt.Sprintf("$%.2f", result.Value),
		Explanation: explanation,
		GraphDOT:    dot,
		Trace:       traceText,
	}, nil
}
