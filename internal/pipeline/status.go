package pipeline

import (
	"slidesmith/internal/deck"
	"slidesmith/internal/slidehtml"
)

// Status rebuilds the user-facing deck view from the WRITE-todo order and the
// artifact store. Positions are assigned 1..N fresh on every call and
// validity is recomputed from the stored content, never cached.
func Status(st *deck.State) []deck.SlideStatus {
	writes := deck.WriteTodos(st.Todos)
	out := make([]deck.SlideStatus, 0, len(writes))
	for i, t := range writes {
		content := st.Artifacts[t.ID]
		title := t.Title
		if h1 := slidehtml.Title(content); h1 != "" {
			title = h1
		}
		out = append(out, deck.SlideStatus{
			ID:          t.ID,
			Position:    i + 1,
			Title:       title,
			Content:     content,
			IsGenerated: content != "",
			IsValid:     slidehtml.Valid(content),
		})
	}
	return out
}
