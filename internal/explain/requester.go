package explain

import (
	"context"
	"fmt"

	"policyscope/internal/logging"
)

// FallbackPrefix starts every synthesized explanation when the service
// call fails.
const FallbackPrefix = "Failed to get explanation:"

// Requester formats prompts and submits them to the explanation service.
type Requester struct {
	client LLMClient
}

// NewRequester wraps a provider client.
func NewRequester(client LLMClient) *Requester {
	return &Requester{client: client}
}

// Explain asks the service to narrate the computation. Any client failure
// is caught here and converted into a displayable fallback string with a
// nil error: the rest of the page (numeric result, trace) must still
// render when the explanation service is down.
func (r *Requester) Explain(ctx context.Context, variable string, value float64, traceText string) string {
	prompt := BuildPrompt(variable, value, traceText)

	text, err := r.client.Complete(ctx, prompt)
	if err != nil {
		logging.ExplainError("explain: variable=%s falling back: %v", variable, err)
		return fmt.Sprintf("%s %v", FallbackPrefix, err)
	}
	return text
}
