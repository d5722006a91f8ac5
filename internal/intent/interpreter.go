package intent

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"slidesmith/internal/deck"
	"slidesmith/internal/llm"
	"slidesmith/internal/llmtool"
)

// Result is what one user turn means: a classified intent, the config fields
// it changes, and any structured slide modifications.
type Result struct {
	Intent      deck.Intent
	ConfigDelta deck.Config
	Changes     []deck.Change
}

// window is how many recent turns the model sees.
const window = 12

var intentPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Classify the latest user message for a slide deck agent and extract config deltas plus slide changes.",
	Background: "Valid intents: NEW_DECK (create a deck on a new topic), REFINE_CONFIG (adjust topic/style/slide count), APPLY_CHANGES (edit, insert, delete, or reorder slides of the existing deck), FINALIZE, SHOW_STATUS.",
	OutputFields: []llmtool.PromptField{
		{Name: "intent", Type: "string", Required: true, Description: "One of NEW_DECK, REFINE_CONFIG, APPLY_CHANGES, FINALIZE, SHOW_STATUS."},
		{Name: "config_delta", Type: "object", Required: false, Description: "{topic, style, slide_count}; only fields the user changed."},
		{Name: "changes", Type: "[]object", Required: false, Description: "Each {slide_id, operation, args}. operation: EDIT, INSERT_AFTER, DELETE, REORDER."},
	},
	Constraints: []string{
		"Classify only the LAST user message; earlier turns are context.",
		"If the user references an existing slide number, or says add/insert/modify/change while a deck exists, the intent is APPLY_CHANGES, never NEW_DECK.",
		"For NEW_DECK capture the COMPLETE user specification in config_delta.topic: exact wording, numbers, headings, bullet text. Do not summarize.",
		"slide_id is the 1-based slide position as the user sees it. For INSERT_AFTER, slide_id=0 inserts before slide 1; slide_id=current slide count appends at the end ('add another slide').",
		"EDIT args: {description}. INSERT_AFTER args: {title, content}. DELETE args: {}. REORDER args: {order: [ids]}.",
		"Return ONE change per requested modification, not one per sentence.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
	Examples: []llmtool.PromptExample{
		{
			InputJSON:  `{"messages": [{"role": "user", "content": "create 2 slides on AI and Machine Learning"}]}`,
			OutputJSON: `{"intent": "NEW_DECK", "config_delta": {"topic": "AI and Machine Learning", "slide_count": 2}, "changes": []}`,
		},
		{
			InputJSON:  `{"messages": [{"role": "user", "content": "in slide 1 add icons"}], "has_existing_deck": true}`,
			OutputJSON: `{"intent": "APPLY_CHANGES", "changes": [{"slide_id": 1, "operation": "EDIT", "args": {"description": "add icons"}}]}`,
		},
		{
			InputJSON:  `{"messages": [{"role": "user", "content": "add another slide about revenue trends"}], "has_existing_deck": true, "current_slide_count": 3}`,
			OutputJSON: `{"intent": "APPLY_CHANGES", "changes": [{"slide_id": 3, "operation": "INSERT_AFTER", "args": {"title": "Revenue Trends", "content": "add another slide about revenue trends"}}]}`,
		},
	},
}, llmtool.PresetStrictJSON(), llmtool.PresetVerbatim())

// Interpreter classifies user turns.
type Interpreter struct {
	LLM llm.LLMClient
}

// Run interprets the conversation against the current config. Malformed model
// output degrades to a safe default (NEW_DECK with no delta, which routes to
// a no-op) instead of failing the cycle; the error is still returned for the
// caller's error log.
func (ip *Interpreter) Run(ctx context.Context, msgs []deck.Message, cfg deck.Config) (Result, error) {
	if len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	last := ""
	if len(msgs) > 0 {
		last = msgs[len(msgs)-1].Content
	}
	hasDeck := strings.TrimSpace(cfg.Topic) != ""

	input := map[string]any{
		"messages":            msgs,
		"current_config":      cfg,
		"has_existing_deck":   hasDeck,
		"current_slide_count": cfg.SlideCount,
	}
	prompt, err := llmtool.Render(intentPromptSpec, input)
	if err != nil {
		return Result{Intent: deck.IntentNewDeck}, err
	}
	raw, err := ip.LLM.GenerateJSON(llm.WithPhase(ctx, "intent"), prompt, input)
	if err != nil {
		return Result{Intent: deck.IntentNewDeck}, err
	}

	var out struct {
		Intent      string          `json:"intent"`
		ConfigDelta deck.Config     `json:"config_delta"`
		Changes     json.RawMessage `json:"changes"`
	}
	if err := json.Unmarshal([]byte(llmtool.CleanFences(string(raw))), &out); err != nil {
		log.Printf("[intent] JSON invalid: %v, raw: %.200s", err, string(raw))
		return Result{Intent: deck.IntentNewDeck}, err
	}

	res := Result{ConfigDelta: clampDelta(out.ConfigDelta)}
	if deck.ValidIntent(out.Intent) {
		res.Intent = deck.Intent(out.Intent)
	} else {
		log.Printf("[intent] invalid intent %q, defaulting to NEW_DECK", out.Intent)
		res.Intent = deck.IntentNewDeck
	}

	// A deck plus slide-number or add/modify language is always a
	// modification; a NEW_DECK here would wipe the user's deck.
	if hasDeck && res.Intent == deck.IntentNewDeck &&
		(refersToSlideNumber(last) || hasChangeLanguage(last)) {
		log.Printf("[intent] reclassifying NEW_DECK as APPLY_CHANGES (existing deck referenced)")
		res.Intent = deck.IntentApplyChanges
		res.ConfigDelta = deck.Config{}
	}

	res.Changes = parseChanges(out.Changes)

	if res.Intent == deck.IntentApplyChanges {
		if len(res.Changes) == 0 && strings.TrimSpace(last) != "" {
			fb := synthesizeFallback(last, cfg.SlideCount)
			res.Changes = append(res.Changes, fb)
			log.Printf("[intent] fallback change synthesized: op=%s slide_id=%v", fb.Op, *fb.SlideID)
		} else {
			fillMissingSlideIDs(res.Changes, last)
		}
	}

	log.Printf("[intent] intent=%s delta=%+v changes=%d", res.Intent, res.ConfigDelta, len(res.Changes))
	return res, nil
}

func clampDelta(d deck.Config) deck.Config {
	if d.SlideCount < 0 {
		d.SlideCount = 0
	}
	if d.SlideCount > deck.MaxSlides {
		d.SlideCount = deck.MaxSlides
	}
	return d
}

// parseChanges tolerates the shapes models actually return: the canonical
// array of {slide_id, operation, args}, bare strings, {slide_number,
// description} objects, and a {slide, actions} envelope.
func parseChanges(raw json.RawMessage) []deck.Change {
	if len(raw) == 0 {
		return nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		var out []deck.Change
		for _, item := range arr {
			if c, ok := parseChangeItem(item); ok {
				out = append(out, c)
			}
		}
		return out
	}

	// {"slide": N, "actions": [...]} envelope.
	var env struct {
		Slide   *int     `json:"slide"`
		Actions []string `json:"actions"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Slide != nil {
		var out []deck.Change
		for _, action := range env.Actions {
			id := *env.Slide
			out = append(out, deck.Change{
				SlideID: &id,
				Op:      deck.OpEdit,
				Args:    map[string]any{"description": action},
			})
		}
		return out
	}
	return nil
}

func parseChangeItem(raw json.RawMessage) (deck.Change, bool) {
	// Bare string: an edit on slide 1.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		one := 1
		return deck.Change{SlideID: &one, Op: deck.OpEdit, Args: map[string]any{"description": s}}, true
	}

	var obj struct {
		SlideID     *int           `json:"slide_id"`
		SlideNumber *int           `json:"slide_number"`
		Operation   string         `json:"operation"`
		Description string         `json:"description"`
		Args        map[string]any `json:"args"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return deck.Change{}, false
	}

	// {slide_number, description} shorthand.
	if obj.SlideNumber != nil && obj.Operation == "" {
		return deck.Change{
			SlideID: obj.SlideNumber,
			Op:      deck.OpEdit,
			Args:    map[string]any{"description": obj.Description},
		}, true
	}

	op, ok := normalizeOp(obj.Operation)
	if !ok {
		return deck.Change{}, false
	}
	args := obj.Args
	if args == nil {
		args = map[string]any{}
	}
	if obj.Description != "" && args["description"] == nil {
		args["description"] = obj.Description
	}
	return deck.Change{SlideID: obj.SlideID, Op: op, Args: args}, true
}

// normalizeOp also accepts the verbose operation names some models produce.
func normalizeOp(op string) (deck.Op, bool) {
	switch strings.ToUpper(strings.TrimSpace(op)) {
	case "EDIT", "EDIT_RAW_HTML":
		return deck.OpEdit, true
	case "INSERT_AFTER", "INSERT_SLIDE_AFTER":
		return deck.OpInsertAfter, true
	case "DELETE", "DELETE_SLIDE":
		return deck.OpDelete, true
	case "REORDER", "REORDER_SLIDES":
		return deck.OpReorder, true
	}
	return "", false
}

// fillMissingSlideIDs completes changes that came back without a target,
// using the slide number referenced in the literal message. Well-formed
// changes are never touched.
func fillMissingSlideIDs(changes []deck.Change, msg string) {
	target := slideNumberFrom(msg, 0)
	if target == 0 {
		return
	}
	for i := range changes {
		if changes[i].SlideID == nil {
			id := target
			changes[i].SlideID = &id
		}
	}
}
