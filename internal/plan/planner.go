package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"slidesmith/internal/deck"
	"slidesmith/internal/llm"
	"slidesmith/internal/llmtool"
)

// ErrBadPlan is returned when the model cannot produce a usable plan. No
// todos are committed in that case.
var ErrBadPlan = errors.New("plan: malformed plan from model")

var planPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Expand a deck request into an ordered list of slide-writing todos.",
	Background: "The first N todos write one slide each; the final todo finalizes the deck and depends on all prior ids.",
	OutputFields: []llmtool.PromptField{
		{Name: "id", Type: "int", Required: true, Description: "1-based, sequential."},
		{Name: "kind", Type: "string", Required: true, Description: "WRITE for the first N, FINALIZE for the last."},
		{Name: "title", Type: "string", Required: true, Description: "Slide title, at most 8 words."},
		{Name: "details", Type: "string", Required: true, Description: "The complete slide specification: every figure, heading, and bullet the user supplied for this slide, verbatim."},
		{Name: "depends_on", Type: "[]int", Required: true, Description: "Empty for WRITE todos; all WRITE ids for FINALIZE."},
	},
	Constraints: []string{
		"Return a JSON array of exactly N+1 items.",
		"When the user specified multiple distinct slides, give each its own todo with its own content.",
	},
	OutputFormat: "JSON array only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetVerbatim())

// Planner expands (topic, style, count) into todos.
type Planner struct {
	LLM llm.LLMClient
}

// Run returns exactly count WRITE todos plus one FINALIZE todo, ids
// 1..count+1. On model failure nothing is committed.
func (p *Planner) Run(ctx context.Context, topic, style string, count int) ([]deck.Todo, error) {
	input := map[string]any{
		"topic":  topic,
		"style":  style,
		"slides": count,
	}
	prompt, err := llmtool.Render(planPromptSpec, input)
	if err != nil {
		return nil, err
	}
	raw, err := p.LLM.GenerateJSON(llm.WithPhase(ctx, "plan"), prompt, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPlan, err)
	}

	var items []deck.Todo
	if err := json.Unmarshal([]byte(llmtool.CleanFences(string(raw))), &items); err != nil {
		return nil, fmt.Errorf("%w: %v\nraw: %.300s", ErrBadPlan, err, string(raw))
	}
	if len(items) == 0 {
		return nil, ErrBadPlan
	}

	// The model's kinds and ids are advisory; position decides.
	if len(items) > count+1 {
		items = items[:count+1]
	}
	for i := range items {
		items[i].ID = i + 1
		if i < count {
			items[i].Kind = deck.KindWrite
		} else {
			items[i].Kind = deck.KindFinalize
		}
		if items[i].DependsOn == nil {
			items[i].DependsOn = []int{}
		}
	}
	// Backfill when the model returned fewer WRITE slides than asked.
	for len(items) < count+1 {
		id := len(items) + 1
		kind := deck.KindWrite
		title := fmt.Sprintf("Slide %d", id)
		if id == count+1 {
			kind = deck.KindFinalize
			title = "Finalize deck"
		}
		items = append(items, deck.Todo{ID: id, Kind: kind, Title: title, Details: topic, DependsOn: []int{}})
	}
	if last := &items[count]; last.Kind == deck.KindFinalize && len(last.DependsOn) == 0 {
		for i := 1; i <= count; i++ {
			last.DependsOn = append(last.DependsOn, i)
		}
	}

	log.Printf("[plan] %d todos for topic %.60q", len(items), topic)
	return items, nil
}
