package llmtool

import (
	"strings"
	"testing"
)

func TestRender_RendersSections(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "Classify a message.",
		Background:   "Deck agent intents.",
		OutputFormat: "JSON only.",
		Language:     "English",
		OutputFields: []PromptField{
			{Name: "intent", Type: "string", Required: true, Description: "One of the known intents."},
			{Name: "changes", Type: "[]object", Required: false},
		},
		Constraints: []string{"No markdown."},
		Rules:       []string{"Be concise."},
		Assumptions: []string{"If unsure, return empty strings."},
		Examples: []PromptExample{
			{InputJSON: `{"message":"hi"}`, OutputJSON: `{"intent":"SHOW_STATUS"}`},
		},
	}

	out, err := Render(spec, map[string]any{"message": "demo"})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	wantSections := []string{
		"[PURPOSE]",
		"[BACKGROUND]",
		"[INPUT]",
		"[OUTPUT]",
		"[CONSTRAINTS]",
		"[RULES]",
		"[ASSUMPTIONS]",
		"[OUTPUT_FORMAT]",
		"[LANGUAGE]",
		"[EXAMPLES]",
	}
	for _, sec := range wantSections {
		if !strings.Contains(out, sec) {
			t.Fatalf("expected section %s in prompt", sec)
		}
	}
	if !strings.Contains(out, `"message": "demo"`) {
		t.Fatal("input JSON not embedded")
	}
}

func TestRender_RequiresPurpose(t *testing.T) {
	spec := StructuredPromptSpec{
		OutputFields: []PromptField{{Name: "intent", Type: "string", Required: true}},
	}
	_, err := Render(spec, nil)
	if err == nil || !strings.Contains(err.Error(), "purpose") {
		t.Fatalf("expected purpose error, got %v", err)
	}
}

func TestRender_RequiresOutputFields(t *testing.T) {
	_, err := Render(StructuredPromptSpec{Purpose: "x"}, nil)
	if err == nil || !strings.Contains(err.Error(), "output fields") {
		t.Fatalf("expected output fields error, got %v", err)
	}
}

func TestApplyPresets_PrependConstraintsAndRules(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "x",
		OutputFields: []PromptField{{Name: "intent", Type: "string", Required: true}},
		Constraints:  []string{"spec-constraint"},
		Rules:        []string{"spec-rule"},
	}
	applied := ApplyPresets(spec, PresetStrictJSON(), PresetCautious())
	if applied.Constraints[len(applied.Constraints)-1] != "spec-constraint" {
		t.Fatalf("spec constraint not preserved last: %+v", applied.Constraints)
	}
	if applied.Constraints[0] != PresetStrictJSON().Constraints[0] {
		t.Fatalf("preset constraint not prepended: %+v", applied.Constraints)
	}
	if applied.Rules[0] != PresetCautious().Rules[0] {
		t.Fatalf("preset rule not prepended: %+v", applied.Rules)
	}
}

func TestCleanFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```html\n<p>x</p>\n```":  `<p>x</p>`,
		"```\nplain\n```":         "plain",
		`{"a":1}`:                 `{"a":1}`,
		"  \n<p>x</p>\n ":         "<p>x</p>",
	}
	for in, want := range cases {
		if got := CleanFences(in); got != want {
			t.Fatalf("CleanFences(%q) = %q, want %q", in, got, want)
		}
	}
}
