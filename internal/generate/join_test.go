package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"slidesmith/internal/deck"
)

func joinState() *deck.State {
	st := deck.NewState()
	st.Todos = append(writeTodos(3), deck.Todo{ID: 4, Kind: deck.KindFinalize, Title: "Finalize deck", DependsOn: []int{1, 2, 3}})
	return st
}

func TestJoin_OrderIndependent(t *testing.T) {
	results := []Result{
		{TaskID: 1, Title: "One", Content: "<html>1</html>", Success: true},
		{TaskID: 2, Title: "Two", Content: "<html>2</html>", Success: true},
		{TaskID: 3, Title: "Three", Content: "<html>3</html>", Success: true},
	}
	a := joinState()
	Join(a, results)

	b := joinState()
	Join(b, []Result{results[2], results[0], results[1]})

	require.Equal(t, a.Artifacts, b.Artifacts)
	require.Len(t, a.Artifacts, 3)
}

func TestJoin_DuplicateDeliveryIsIdempotent(t *testing.T) {
	st := joinState()
	results := []Result{{TaskID: 1, Title: "One", Content: "<html>first</html>", Success: true}}
	Join(st, results)
	Join(st, []Result{{TaskID: 1, Title: "One", Content: "<html>second</html>", Success: true}})
	require.Equal(t, "<html>first</html>", st.Artifacts[1], "first write wins")
}

func TestJoin_NeverOverwritesPriorCycle(t *testing.T) {
	st := joinState()
	st.Artifacts[2] = "<html>kept</html>"
	Join(st, []Result{{TaskID: 2, Title: "Two", Content: "<html>new</html>", Success: true}})
	require.Equal(t, "<html>kept</html>", st.Artifacts[2])
}

func TestJoin_AggregatesErrorsAndPlaceholders(t *testing.T) {
	st := joinState()
	Join(st, []Result{
		{TaskID: 1, Title: "One", Content: "<html>1</html>", Success: true},
		{TaskID: 2, Title: "Two", Content: "", Success: false, Err: "task 2: generate: timeout"},
	})
	require.Len(t, st.Errors, 1)
	require.Contains(t, st.Errors[0], "timeout")
	require.NotEmpty(t, st.Artifacts[2], "failed task still stores a placeholder")
	require.Contains(t, st.Artifacts[2], "Two")
}

func TestJoin_MarksDoneTodos(t *testing.T) {
	st := joinState()
	Join(st, []Result{
		{TaskID: 1, Title: "One", Content: "<html>1</html>", Success: true},
	})
	require.True(t, strings.HasSuffix(st.Todos[0].Details, "(done)"))
	require.False(t, strings.HasSuffix(st.Todos[1].Details, "(done)"))
}
