package llm

import (
	"context"
	"encoding/json"
)

// LLMClient is the minimal surface the pipeline needs from a generative model.
// GenerateJSON is used for structured calls (intent, planning, data-need, SQL);
// GenerateText for free-form output such as slide HTML.
type LLMClient interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
