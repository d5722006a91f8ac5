package dataneed

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"slidesmith/internal/llm"
	"slidesmith/internal/llmtool"
)

// maxQuestionLen clamps the warehouse question; the query service wants a
// short, self-contained ask, not the slide outline.
const maxQuestionLen = 200

var detectPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Decide whether a presentation slide needs real data from the warehouse, and if so phrase the question.",
	Background: "Slides with charts, tables, metrics, KPIs, rankings, comparisons, or trends need data. Slides with only narrative, mission, or strategy content do not.",
	OutputFields: []llmtool.PromptField{
		{Name: "needs_data", Type: "bool", Required: true, Description: "True when the slide should be backed by actual data."},
		{Name: "query", Type: "string", Required: false, Description: "Natural-language data question, under 200 characters. Null when needs_data is false."},
	},
	Constraints: []string{
		"Keep the question concise, clear, and self-contained.",
		"Phrase it as a data request, e.g. 'show top 10 products by revenue'.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
	Examples: []llmtool.PromptExample{
		{
			InputJSON:  `{"title": "Revenue Analysis", "details": "Show revenue by product category"}`,
			OutputJSON: `{"needs_data": true, "query": "show revenue by product category"}`,
		},
		{
			InputJSON:  `{"title": "Company Mission", "details": "Our vision and values"}`,
			OutputJSON: `{"needs_data": false, "query": null}`,
		},
	},
}, llmtool.PresetStrictJSON())

// Detector decides per task whether external data is required.
type Detector struct {
	LLM llm.LLMClient
}

// Run returns the data question for the slide, or "" when no data is needed.
// Detector failures default to "no data needed" so generation is never
// blocked on the detector.
func (d *Detector) Run(ctx context.Context, title, details string) string {
	input := map[string]any{"title": title, "details": details}
	prompt, err := llmtool.Render(detectPromptSpec, input)
	if err != nil {
		log.Printf("[dataneed] prompt: %v", err)
		return ""
	}
	raw, err := d.LLM.GenerateJSON(llm.WithPhase(ctx, "dataneed"), prompt, input)
	if err != nil {
		log.Printf("[dataneed] %v", err)
		return ""
	}
	var out struct {
		NeedsData bool    `json:"needs_data"`
		Query     *string `json:"query"`
	}
	if err := json.Unmarshal([]byte(llmtool.CleanFences(string(raw))), &out); err != nil {
		log.Printf("[dataneed] JSON invalid: %v", err)
		return ""
	}
	if !out.NeedsData || out.Query == nil {
		return ""
	}
	q := strings.TrimSpace(*out.Query)
	// Truncate on a rune boundary; a byte slice could split a multi-byte
	// character and hand the query client invalid UTF-8.
	if r := []rune(q); len(r) > maxQuestionLen {
		q = string(r[:maxQuestionLen])
	}
	return q
}
