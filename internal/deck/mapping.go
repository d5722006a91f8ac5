package deck

import "strings"

// WriteTodos returns the WRITE-kind subsequence in current order.
func WriteTodos(todos []Todo) []Todo {
	var out []Todo
	for _, t := range todos {
		if t.Kind == KindWrite {
			out = append(out, t)
		}
	}
	return out
}

// PositionIndex maps user-visible positions (1-based) to artifact ids, built
// from the current order of WRITE todos. Artifact ids never change on
// reorder/insert/delete, so this mapping must be recomputed after every
// structural edit and is the only legal way to translate a user-given
// position.
func PositionIndex(todos []Todo) map[int]int {
	idx := map[int]int{}
	for i, t := range WriteTodos(todos) {
		idx[i+1] = t.ID
	}
	return idx
}

// IDAt translates a 1-based position to the artifact id at that slot.
func IDAt(todos []Todo, position int) (int, bool) {
	id, ok := PositionIndex(todos)[position]
	return id, ok
}

// NextID returns the next unused artifact id: one past the highest id seen in
// either the todo list or the artifact store.
func NextID(todos []Todo, artifacts map[int]string) int {
	max := 0
	for _, t := range todos {
		if t.ID > max {
			max = t.ID
		}
	}
	for id := range artifacts {
		if id > max {
			max = id
		}
	}
	return max + 1
}

const doneMarker = " (done)"

// MarkDone appends a done marker to the details of every WRITE todo that has
// an artifact. Append-only and idempotent; the marker is diagnostic.
func MarkDone(todos []Todo, artifacts map[int]string) {
	for i := range todos {
		t := &todos[i]
		if t.Kind != KindWrite {
			continue
		}
		if _, ok := artifacts[t.ID]; !ok {
			continue
		}
		if strings.HasSuffix(t.Details, doneMarker) {
			continue
		}
		t.Details += doneMarker
	}
}

// MarkFinalized appends the done marker to FINALIZE todos once the deck has
// been closed out. Idempotent, like MarkDone.
func MarkFinalized(todos []Todo) {
	for i := range todos {
		t := &todos[i]
		if t.Kind != KindFinalize || strings.HasSuffix(t.Details, doneMarker) {
			continue
		}
		t.Details += doneMarker
	}
}

// ResetPlan drops all todos and artifacts and bumps the config version.
// Called when the interpreter applies a config delta.
func (s *State) ResetPlan() {
	s.ConfigVersion++
	s.Todos = nil
	s.Artifacts = map[int]string{}
}

// MissingArtifacts lists WRITE todos that have no artifact yet, in order.
func MissingArtifacts(todos []Todo, artifacts map[int]string) []Todo {
	var out []Todo
	for _, t := range WriteTodos(todos) {
		if _, ok := artifacts[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out
}
