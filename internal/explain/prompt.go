package explain

import "fmt"

// promptTemplate is the fixed instruction sent to the explanation service.
// It embeds the variable name, the numeric result and the computation
// trace, and pins the shape of the answer.
const promptTemplate = `You are an AI assistant explaining US policy calculations.
The user has run a simulation for the variable '%s' and got a result of %v.
Here's the computation log:
%s

Please explain this result in simple terms. Your explanation should:
1. Briefly describe what %s is.
2. Explain the main factors that led to this result.
3. Mention any key thresholds or rules that affected the calculation.
4. If relevant, suggest how changes in input might affect this result.

Keep your explanation concise but informative, suitable for a general audience.`

// BuildPrompt formats the explanation prompt for one submission.
func BuildPrompt(variable string, value float64, traceText string) string {
	return fmt.Sprintf(promptTemplate, variable, value, traceText, variable)
}
