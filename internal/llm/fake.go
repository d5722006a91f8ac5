package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeClient returns deterministic payloads per phase for offline runs and tests.
// JSON/Text entries override the built-in defaults; Calls records the phases of
// every call in order.
type FakeClient struct {
	mu    sync.Mutex
	JSON  map[string]string
	Text  map[string]string
	Calls []string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{JSON: map[string]string{}, Text: map[string]string{}}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) record(phase string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, phase)
	f.mu.Unlock()
}

// CallCount returns how many calls were made for the given phase.
func (f *FakeClient) CallCount(phase string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.Calls {
		if p == phase {
			n++
		}
	}
	return n
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	phase := PhaseFrom(ctx)
	f.record(phase)
	f.mu.Lock()
	if s, ok := f.JSON[phase]; ok {
		f.mu.Unlock()
		return json.RawMessage(s), nil
	}
	f.mu.Unlock()

	var obj any
	switch phase {
	case "intent":
		obj = map[string]any{
			"intent": "NEW_DECK",
			"config_delta": map[string]any{
				"topic":       "fake topic",
				"style":       "professional clean",
				"slide_count": 3,
			},
			"changes": []any{},
		}
	case "plan":
		obj = []any{
			map[string]any{"id": 1, "kind": "WRITE", "title": "Fake Slide 1", "details": "fake details 1", "depends_on": []int{}},
			map[string]any{"id": 2, "kind": "WRITE", "title": "Fake Slide 2", "details": "fake details 2", "depends_on": []int{}},
			map[string]any{"id": 3, "kind": "WRITE", "title": "Fake Slide 3", "details": "fake details 3", "depends_on": []int{}},
			map[string]any{"id": 4, "kind": "FINALIZE", "title": "Finalize deck", "details": "", "depends_on": []int{1, 2, 3}},
		}
	case "dataneed":
		obj = map[string]any{"needs_data": false, "query": nil}
	case "sql":
		obj = map[string]any{"sql": "SELECT 1"}
	default:
		obj = map[string]any{}
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b), nil
}

func (f *FakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	phase := PhaseFrom(ctx)
	f.record(phase)
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.Text[phase]; ok {
		return s, nil
	}
	return fakeSlideHTML, nil
}

// fakeSlideHTML satisfies the structural contract the validator enforces.
const fakeSlideHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Fake Slide</title>
<script src="https://cdn.tailwindcss.com"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
</head>
<body style="width:1280px; height:720px; margin:0; padding:0; overflow:hidden; background:#FFFFFF;">
<div style="max-width:1280px; max-height:720px; margin:0 auto; padding:32px; box-sizing:border-box;">
<h1 style="color:#102025;">Fake Slide</h1>
<p style="color:#5D6D71;">Deterministic offline content.</p>
</div>
</body>
</html>`
