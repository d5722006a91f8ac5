package llm

import (
	"context"
	"encoding/json"
)

// PromptHook observes every model round-trip. Before receives the outgoing
// prompt; After receives the raw response (or error). Hooks must be safe for
// concurrent use: workers in the generation pool share one client.
type PromptHook interface {
	Before(ctx context.Context, phase, prompt string)
	After(ctx context.Context, phase, raw string, err error)
}

type ctxKeyHook struct{}
type ctxKeyPhase struct{}

// WithHook wraps a client so that hook is attached to the context of every call.
func WithHook(base LLMClient, hook PromptHook) LLMClient {
	return &hooked{base: base, hook: hook}
}

type hooked struct {
	base LLMClient
	hook PromptHook
}

func (h *hooked) Name() string { return h.base.Name() }
func (h *hooked) Close() error { return h.base.Close() }

func (h *hooked) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	ctx = context.WithValue(ctx, ctxKeyHook{}, h.hook)
	return h.base.GenerateJSON(ctx, prompt, input)
}

func (h *hooked) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx = context.WithValue(ctx, ctxKeyHook{}, h.hook)
	return h.base.GenerateText(ctx, prompt)
}

// WithPhase tags the context with a pipeline phase name ("intent", "plan",
// "dataneed", "sql", "author", "repair", "edit"). Clients report it to hooks
// and the FakeClient keys its canned output on it.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) PromptHook {
	if v := ctx.Value(ctxKeyHook{}); v != nil {
		if h, ok := v.(PromptHook); ok {
			return h
		}
	}
	return nil
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
