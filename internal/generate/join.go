package generate

import (
	"log"

	"slidesmith/internal/deck"
	"slidesmith/internal/slidehtml"
)

// Join merges result records into the artifact store, first-write-wins per
// task id. It is idempotent under duplicate delivery and produces the same
// store for any arrival order: each record touches only its own key, and an
// id that already holds an artifact (from this cycle or a prior one) is never
// overwritten. Error strings are aggregated into the cycle error log.
func Join(st *deck.State, results []Result) {
	if st.Artifacts == nil {
		st.Artifacts = map[int]string{}
	}
	for _, r := range results {
		if r.Err != "" {
			st.Errors = append(st.Errors, r.Err)
		}
		if _, exists := st.Artifacts[r.TaskID]; exists {
			log.Printf("[join] skipping duplicate result for task %d", r.TaskID)
			continue
		}
		content := r.Content
		if content == "" {
			// A result should always carry content; guard anyway.
			content = slidehtml.Placeholder(r.Title, "Error generating slide content. Please try again.")
		}
		st.Artifacts[r.TaskID] = content
		if r.Success {
			log.Printf("[join] task %d stored (%q)", r.TaskID, r.Title)
		} else {
			log.Printf("[join] task %d stored as placeholder (%q)", r.TaskID, r.Title)
		}
	}
	deck.MarkDone(st.Todos, st.Artifacts)
}
