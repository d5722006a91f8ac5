package author

import (
	"context"
	"fmt"
	"strings"

	"slidesmith/internal/llm"
	"slidesmith/internal/llmtool"
	"slidesmith/internal/slidehtml"
)

// Request carries everything needed to author one slide.
type Request struct {
	Title   string
	Outline string
	Style   string
	Data    string // optional fetched rows as JSON; "" or "[]" means none
}

// Author is the content generation client: it turns a request into a complete
// single-slide HTML document under the fixed structural contract. Safe for
// concurrent use; it holds no mutable state beyond the model client.
type Author struct {
	LLM llm.LLMClient
}

// Generate authors a brand-new slide.
func (a *Author) Generate(ctx context.Context, req Request) (string, error) {
	outline := req.Outline
	if req.Data != "" && req.Data != "[]" {
		outline = fmt.Sprintf("%s\n\nDATA (use this actual data):\n%s", outline, req.Data)
	}
	prompt := fmt.Sprintf(`Create a complete HTML document for a single slide.
%s

TITLE: %s
OUTLINE: %s
STYLE: %s

CRITICAL INSTRUCTIONS:
- Use ONLY the content provided above; do not add, modify, or hallucinate any data
- If specific metrics, numbers, or data points are provided, use them exactly as given
- If a DATA section is provided above, visualize that ACTUAL data with one Chart.js chart
- If bullet points or section headings are specified, include them exactly as listed
- Maintain the exact structure and content hierarchy of the outline
- Use Tailwind CSS with the brand colors and spacing from the constraints
- Use Navy 900 (#102025) for the main title, not gray`,
		slidehtml.Contract, req.Title, outline, styleOrDefault(req.Style))

	out, err := a.LLM.GenerateText(llm.WithPhase(ctx, "author"), prompt)
	if err != nil {
		return "", err
	}
	return llmtool.CleanFences(out), nil
}

// Repair sends invalid output back together with the original request and the
// validator's reason. One call; callers own the retry budget.
func (a *Author) Repair(ctx context.Context, invalid string, req Request, reason string) (string, error) {
	prompt := fmt.Sprintf(`The HTML slide below violates the structural contract. Fix it.
%s

VIOLATIONS:
%s

ORIGINAL REQUEST:
TITLE: %s
OUTLINE: %s
STYLE: %s

INVALID SLIDE:
%s

Return only the corrected HTML document. Keep the content; fix the structure.`,
		slidehtml.Contract, reason, req.Title, req.Outline, styleOrDefault(req.Style), invalid)

	out, err := a.LLM.GenerateText(llm.WithPhase(ctx, "repair"), prompt)
	if err != nil {
		return "", err
	}
	return llmtool.CleanFences(out), nil
}

// Edit applies a described change to an existing slide.
func (a *Author) Edit(ctx context.Context, current, description, style string) (string, error) {
	prompt := fmt.Sprintf(`Apply a change to an existing slide while keeping its Tailwind CSS design.
%s

CURRENT SLIDE:
%s

CHANGE: %s
STYLE: %s

CRITICAL INSTRUCTIONS:
- Apply ONLY the specific change requested; do not add, modify, or hallucinate any data
- If the change specifies exact content, metrics, or bullet points, use them exactly as provided
- Keep the rest of the slide untouched`,
		slidehtml.Contract, current, description, styleOrDefault(style))

	out, err := a.LLM.GenerateText(llm.WithPhase(ctx, "edit"), prompt)
	if err != nil {
		return "", err
	}
	return llmtool.CleanFences(out), nil
}

func styleOrDefault(style string) string {
	if strings.TrimSpace(style) == "" {
		return "professional clean"
	}
	return style
}
