package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"slidesmith/internal/deck"
)

func TestStatus_PositionsFollowWriteOrder(t *testing.T) {
	st := deck.NewState()
	st.Todos = []deck.Todo{
		{ID: 3, Kind: deck.KindWrite, Title: "Third Made First"},
		{ID: 1, Kind: deck.KindWrite, Title: "First Made Second"},
		{ID: 4, Kind: deck.KindFinalize, Title: "Finalize deck"},
	}
	st.Artifacts = map[int]string{3: "<p>not a full slide</p>"}

	statuses := Status(st)
	require.Len(t, statuses, 2, "FINALIZE never shows up as a slide")

	require.Equal(t, 1, statuses[0].Position)
	require.Equal(t, 3, statuses[0].ID)
	require.True(t, statuses[0].IsGenerated)
	require.False(t, statuses[0].IsValid, "validity is recomputed from content")

	require.Equal(t, 2, statuses[1].Position)
	require.Equal(t, 1, statuses[1].ID)
	require.False(t, statuses[1].IsGenerated)
	require.Equal(t, "First Made Second", statuses[1].Title, "todo title when no h1 exists")
}

func TestStatus_PrefersH1Title(t *testing.T) {
	st := deck.NewState()
	st.Todos = []deck.Todo{{ID: 1, Kind: deck.KindWrite, Title: "Planned Title"}}
	st.Artifacts = map[int]string{1: "<html><body><h1>Rendered Title</h1></body></html>"}
	statuses := Status(st)
	require.Equal(t, "Rendered Title", statuses[0].Title)
}

func TestStatus_EmptyState(t *testing.T) {
	require.Empty(t, Status(deck.NewState()))
}
