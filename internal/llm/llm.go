package llm

import (
	"context"
	"encoding/json"

	"secretary-backend/internal/prompt"
)

// TokenUsage carries one attempt's token accounting.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Invoker issues exactly one generation attempt against one candidate
// model. Implementations must treat an empty body or non-JSON output as an
// error so the caller can advance to the next candidate.
type Invoker interface {
	Attempt(ctx context.Context, model string, req prompt.Request) (json.RawMessage, TokenUsage, error)
}
