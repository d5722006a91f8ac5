package modify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"slidesmith/internal/author"
	"slidesmith/internal/dataneed"
	"slidesmith/internal/deck"
	"slidesmith/internal/generate"
	"slidesmith/internal/llm"
	"slidesmith/internal/query"
)

func newExecutor() *Executor {
	fc := llm.NewFakeClient()
	return &Executor{Builder: &generate.Builder{
		Author:   &author.Author{LLM: fc},
		Detector: &dataneed.Detector{LLM: fc},
		Query:    query.Empty{},
	}}
}

func deckState() *deck.State {
	st := deck.NewState()
	st.Todos = []deck.Todo{
		{ID: 1, Kind: deck.KindWrite, Title: "One", Details: "d1"},
		{ID: 2, Kind: deck.KindWrite, Title: "Two", Details: "d2"},
		{ID: 3, Kind: deck.KindWrite, Title: "Three", Details: "d3"},
		{ID: 4, Kind: deck.KindFinalize, Title: "Finalize deck", DependsOn: []int{1, 2, 3}},
	}
	st.Artifacts = map[int]string{1: "<html>s1</html>", 2: "<html>s2</html>", 3: "<html>s3</html>"}
	return st
}

func writeIDs(t *testing.T, st *deck.State) []int {
	t.Helper()
	var ids []int
	for _, todo := range deck.WriteTodos(st.Todos) {
		ids = append(ids, todo.ID)
	}
	return ids
}

func change(pos int, op deck.Op, args map[string]any) deck.Change {
	if args == nil {
		args = map[string]any{}
	}
	return deck.Change{SlideID: &pos, Op: op, Args: args}
}

func TestApply_EditReplacesArtifact(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(2, deck.OpEdit, map[string]any{"description": "add icons"}),
	}, "")
	require.NotEqual(t, "<html>s2</html>", st.Artifacts[2], "artifact 2 should be rewritten")
	require.Equal(t, "<html>s1</html>", st.Artifacts[1], "other artifacts untouched")
	require.Equal(t, []int{1, 2, 3}, writeIDs(t, st), "order unchanged by edit")
}

func TestApply_EditUnknownPositionSkipped(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(9, deck.OpEdit, map[string]any{"description": "x"}),
	}, "")
	require.Equal(t, deckState().Artifacts, st.Artifacts)
}

func TestApply_InsertAfterSplicesAndKeepsIDsStable(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(1, deck.OpInsertAfter, map[string]any{"title": "New", "content": "between one and two"}),
	}, "")
	require.Equal(t, []int{1, 5, 2, 3}, writeIDs(t, st), "new id is max+1, spliced after position 1")
	require.NotEmpty(t, st.Artifacts[5])

	id, ok := deck.IDAt(st.Todos, 2)
	require.True(t, ok)
	require.Equal(t, 5, id, "position 2 now resolves to the inserted slide")
}

func TestApply_InsertAtZeroPrepends(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(0, deck.OpInsertAfter, map[string]any{"title": "Cover"}),
	}, "")
	require.Equal(t, []int{5, 1, 2, 3}, writeIDs(t, st))
}

func TestApply_InsertBuildsFromBullets(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(3, deck.OpInsertAfter, map[string]any{
			"title":   "Summary",
			"bullets": []any{"point a", "point b"},
		}),
	}, "")
	require.Equal(t, []int{1, 2, 3, 5}, writeIDs(t, st))
	require.Equal(t, "- point a\n- point b", deck.WriteTodos(st.Todos)[3].Details)
}

func TestApply_DeleteRemovesTodoAndArtifact(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(2, deck.OpDelete, nil),
	}, "")
	require.Equal(t, []int{1, 3}, writeIDs(t, st))
	_, exists := st.Artifacts[2]
	require.False(t, exists, "artifact must go with the todo")

	id, ok := deck.IDAt(st.Todos, 2)
	require.True(t, ok)
	require.Equal(t, 3, id, "positions shift after delete")
}

func TestApply_ReorderByArtifactIDs(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(0, deck.OpReorder, map[string]any{"order": []any{float64(3), float64(1), float64(2), float64(99)}}),
	}, "")
	require.Equal(t, []int{3, 1, 2}, writeIDs(t, st), "unknown ids ignored")
	require.Equal(t, deck.KindFinalize, st.Todos[3].Kind, "finalize stays last")
	require.Len(t, st.Artifacts, 3, "reorder never touches artifacts")
}

func TestApply_SequentialChangesSeeShiftedPositions(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(1, deck.OpDelete, nil),
		change(1, deck.OpEdit, map[string]any{"description": "rework"}),
	}, "")
	// After the delete, position 1 is the slide that was at position 2.
	require.Equal(t, []int{2, 3}, writeIDs(t, st))
	require.NotEqual(t, "<html>s2</html>", st.Artifacts[2], "edit targeted the shifted slide")
	require.Equal(t, "<html>s3</html>", st.Artifacts[3])
}

func TestApply_DeletedIDNeverReused(t *testing.T) {
	e, st := newExecutor(), deckState()
	e.Apply(context.Background(), st, []deck.Change{
		change(3, deck.OpDelete, nil),
		change(2, deck.OpInsertAfter, map[string]any{"title": "Replacement"}),
	}, "")
	require.Equal(t, []int{1, 2, 5}, writeIDs(t, st), "id 3 is retired, replacement gets 5")
}
