package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"slidesmith/internal/author"
	"slidesmith/internal/dataneed"
	"slidesmith/internal/deck"
	"slidesmith/internal/generate"
	"slidesmith/internal/intent"
	"slidesmith/internal/llm"
	"slidesmith/internal/modify"
	"slidesmith/internal/plan"
	"slidesmith/internal/query"
)

// scriptClient wraps the fake model and fails authoring for one named slide,
// to exercise the partial-failure path end to end.
type scriptClient struct {
	fc        *llm.FakeClient
	failTitle string
}

func (s *scriptClient) Name() string { return "script" }
func (s *scriptClient) Close() error { return nil }

func (s *scriptClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	return s.fc.GenerateJSON(ctx, prompt, input)
}

func (s *scriptClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if s.failTitle != "" && llm.PhaseFrom(ctx) == "author" && strings.Contains(prompt, s.failTitle) {
		return "", errors.New("model refused")
	}
	return s.fc.GenerateText(ctx, prompt)
}

func newPipeline(cli llm.LLMClient) *Pipeline {
	builder := &generate.Builder{
		Author:   &author.Author{LLM: cli},
		Detector: &dataneed.Detector{LLM: cli},
		Query:    query.Empty{},
	}
	return &Pipeline{
		Interpreter: &intent.Interpreter{LLM: cli},
		Planner:     &plan.Planner{LLM: cli},
		Coordinator: &generate.Coordinator{Builder: builder, MaxWorkers: 2},
		Executor:    &modify.Executor{Builder: builder},
	}
}

func TestProcessMessage_NewDeckEndToEnd(t *testing.T) {
	p := newPipeline(llm.NewFakeClient())
	st := deck.NewState()

	statuses, err := p.ProcessMessage(context.Background(), st, "create 3 slides on fake topic")
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	for i, s := range statuses {
		require.Equal(t, i+1, s.Position)
		require.True(t, s.IsGenerated)
		require.True(t, s.IsValid)
		require.NotEmpty(t, s.Content)
	}
	require.Equal(t, deck.IntentNewDeck, st.LastIntent)
	require.Equal(t, 1, st.ConfigVersion)
	require.Len(t, st.Messages, 2, "user turn plus assistant summary")
	require.True(t, strings.HasSuffix(st.Todos[0].Details, "(done)"))
}

func TestProcessMessage_EditAfterBuild(t *testing.T) {
	fc := llm.NewFakeClient()
	fc.Text["edit"] = strings.Replace(fakeValidDoc(t, fc), "Fake Slide", "Edited Slide", -1)
	p := newPipeline(fc)
	st := deck.NewState()

	_, err := p.ProcessMessage(context.Background(), st, "create 3 slides on fake topic")
	require.NoError(t, err)
	before := st.Artifacts[1]

	statuses, err := p.ProcessMessage(context.Background(), st, "in slide 2 add icons")
	require.NoError(t, err)
	require.Equal(t, deck.IntentApplyChanges, st.LastIntent)
	require.Len(t, statuses, 3)
	require.Equal(t, "Edited Slide", statuses[1].Title)
	require.Equal(t, "Fake Slide", statuses[0].Title)
	require.Equal(t, before, st.Artifacts[1], "untargeted slides keep their artifacts")
	require.Equal(t, 1, st.ConfigVersion, "modification must not reset the plan")
}

func TestProcessMessage_PartialFailureKeepsDeckComplete(t *testing.T) {
	cli := &scriptClient{fc: llm.NewFakeClient(), failTitle: "Fake Slide 2"}
	p := newPipeline(cli)
	st := deck.NewState()

	statuses, err := p.ProcessMessage(context.Background(), st, "create 3 slides on fake topic")
	require.NoError(t, err)
	require.Len(t, statuses, 3, "a failed task never shrinks the deck")
	require.NotEmpty(t, st.Errors)

	var placeholders int
	for _, s := range statuses {
		require.True(t, s.IsGenerated)
		if strings.Contains(s.Content, "Error generating slide content") {
			placeholders++
			require.False(t, s.IsValid, "placeholder slides surface as invalid")
		} else {
			require.True(t, s.IsValid)
		}
	}
	require.Equal(t, 1, placeholders)
}

func TestProcessMessage_ShowStatusChangesNothing(t *testing.T) {
	fc := llm.NewFakeClient()
	p := newPipeline(fc)
	st := deck.NewState()
	_, err := p.ProcessMessage(context.Background(), st, "create 3 slides on fake topic")
	require.NoError(t, err)
	artifacts := len(st.Artifacts)
	authorCalls := fc.CallCount("author")

	fc.JSON["intent"] = `{"intent": "SHOW_STATUS"}`
	statuses, err := p.ProcessMessage(context.Background(), st, "how is it going?")
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	require.Equal(t, artifacts, len(st.Artifacts))
	require.Equal(t, authorCalls, fc.CallCount("author"), "status must not regenerate")
}

func TestProcessMessage_FinalizeMarksClosingTodo(t *testing.T) {
	fc := llm.NewFakeClient()
	p := newPipeline(fc)
	st := deck.NewState()
	_, err := p.ProcessMessage(context.Background(), st, "create 3 slides on fake topic")
	require.NoError(t, err)

	fc.JSON["intent"] = `{"intent": "FINALIZE"}`
	statuses, err := p.ProcessMessage(context.Background(), st, "looks good, finalize it")
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	var finalize deck.Todo
	for _, todo := range st.Todos {
		if todo.Kind == deck.KindFinalize {
			finalize = todo
		}
	}
	require.True(t, strings.HasSuffix(finalize.Details, "(done)"))
}

func TestProcessMessage_TopicChangeResetsPlan(t *testing.T) {
	fc := llm.NewFakeClient()
	p := newPipeline(fc)
	st := deck.NewState()
	_, err := p.ProcessMessage(context.Background(), st, "create 3 slides on fake topic")
	require.NoError(t, err)

	fc.JSON["intent"] = `{"intent": "NEW_DECK", "config_delta": {"topic": "a different topic", "slide_count": 3}}`
	statuses, err := p.ProcessMessage(context.Background(), st, "actually, make a deck about a different topic")
	require.NoError(t, err)
	require.Equal(t, 2, st.ConfigVersion)
	require.Equal(t, "a different topic", st.Config.Topic)
	require.Len(t, statuses, 3, "new plan regenerated from scratch")
}

func TestProcessMessage_IncompleteConfigIsNoOp(t *testing.T) {
	fc := llm.NewFakeClient()
	fc.JSON["intent"] = `{"intent": "NEW_DECK", "config_delta": {"style": "minimal"}}`
	p := newPipeline(fc)
	st := deck.NewState()

	statuses, err := p.ProcessMessage(context.Background(), st, "something minimal please")
	require.NoError(t, err)
	require.Empty(t, statuses, "no topic and no count means nothing to build")
	require.Empty(t, st.Todos)
}

// fakeValidDoc pulls the fake model's slide output so edit overrides stay in
// sync with it.
func fakeValidDoc(t *testing.T, fc *llm.FakeClient) string {
	t.Helper()
	out, err := fc.GenerateText(llm.WithPhase(context.Background(), "author"), "")
	require.NoError(t, err)
	return out
}
