package llm

import (
	"fmt"
	"strings"
)

// ProviderError reports a failure of the external code provider. Raw
// carries the provider's output verbatim so the user can diagnose it.
// Provider failures stop the flow before the sandbox is reached.
type ProviderError struct {
	Reason string
	Raw    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("code provider failed: %s", e.Reason)
}

// Code-block fences accepted in provider responses, tried in order.
var codeFences = []string{"```starlark", "```python", "```"}

// ExtractCode pulls the code out of the first fenced block in a provider
// response. A response with no fenced block is a provider failure, not
// an execution error, and must not be passed to the sandbox.
func ExtractCode(raw string) (string, error) {
	for _, fence := range codeFences {
		start := strings.Index(raw, fence)
		if start < 0 {
			continue
		}
		rest := raw[start+len(fence):]
		// Skip the remainder of the fence line.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		code := strings.TrimSpace(rest[:end])
		if code == "" {
			continue
		}
		return code, nil
	}
	return "", &ProviderError{Reason: "response contains no code block", Raw: raw}
}
