package modify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"slidesmith/internal/deck"
	"slidesmith/internal/generate"
)

// Executor applies user-requested changes against the todo list and artifact
// store. Changes run strictly in order: every insert or delete shifts the
// position-to-id mapping, so it is recomputed from the WRITE-todo order
// before each change is applied.
type Executor struct {
	Builder *generate.Builder
}

// Apply processes changes sequentially. Structural errors (unknown position,
// unknown id) are logged and skipped, never raised: the user still gets a
// complete deck back.
func (e *Executor) Apply(ctx context.Context, st *deck.State, changes []deck.Change, style string) {
	for _, c := range changes {
		log.Printf("[modify] op=%s slide_id=%v args=%v", c.Op, c.SlideID, c.Args)
		switch c.Op {
		case deck.OpEdit:
			e.edit(ctx, st, c, style)
		case deck.OpInsertAfter:
			e.insertAfter(ctx, st, c, style)
		case deck.OpDelete:
			e.delete(st, c)
		case deck.OpReorder:
			e.reorder(st, c)
		default:
			log.Printf("[modify] skipping unknown operation %q", c.Op)
		}
	}
}

func (e *Executor) edit(ctx context.Context, st *deck.State, c deck.Change, style string) {
	if c.SlideID == nil {
		log.Printf("[modify] edit skipped: no slide position")
		return
	}
	id, ok := deck.IDAt(st.Todos, *c.SlideID)
	if !ok {
		log.Printf("[modify] edit skipped: no slide at position %d", *c.SlideID)
		return
	}
	current, ok := st.Artifacts[id]
	if !ok {
		log.Printf("[modify] edit skipped: no artifact for id %d (position %d)", id, *c.SlideID)
		return
	}
	description := c.StrArg("description")
	if description == "" {
		description = fmt.Sprintf("%v", c.Args)
	}
	revised, err := e.Builder.Refine(ctx, current, description, style)
	if err != nil {
		log.Printf("[modify] edit failed for id %d: %v", id, err)
		st.Errors = append(st.Errors, fmt.Sprintf("edit slide %d: %v", *c.SlideID, err))
		return
	}
	st.Artifacts[id] = revised
	log.Printf("[modify] edited slide at position %d (artifact %d)", *c.SlideID, id)
}

func (e *Executor) insertAfter(ctx context.Context, st *deck.State, c deck.Change, style string) {
	pos := 0
	if c.SlideID != nil {
		pos = *c.SlideID
	}
	title := c.StrArg("title")
	if title == "" {
		title = "New Slide"
	}
	outline := c.StrArg("content")
	if outline == "" {
		outline = bulletsOutline(c.Args)
	}

	newID := deck.NextID(st.Todos, st.Artifacts)
	// Build runs the full per-task path (data-need, authoring, repair,
	// sanitize) and degrades to a placeholder on failure, so the splice
	// below always has an artifact to point at.
	res := e.Builder.Build(ctx, newID, title, outline, style)
	if res.Err != "" {
		st.Errors = append(st.Errors, res.Err)
	}
	st.Artifacts[newID] = res.Content

	todo := deck.Todo{ID: newID, Kind: deck.KindWrite, Title: title, Details: outline, DependsOn: []int{}}
	st.Todos = spliceWrite(st.Todos, pos, todo)
	log.Printf("[modify] inserted slide %d after position %d", newID, pos)
}

func (e *Executor) delete(st *deck.State, c deck.Change) {
	if c.SlideID == nil {
		log.Printf("[modify] delete skipped: no slide position")
		return
	}
	id, ok := deck.IDAt(st.Todos, *c.SlideID)
	if !ok {
		log.Printf("[modify] delete skipped: no slide at position %d", *c.SlideID)
		return
	}
	// Todo and artifact go together; one without the other corrupts the
	// position mapping.
	kept := st.Todos[:0]
	for _, t := range st.Todos {
		if t.Kind == deck.KindWrite && t.ID == id {
			continue
		}
		kept = append(kept, t)
	}
	st.Todos = kept
	delete(st.Artifacts, id)
	log.Printf("[modify] deleted slide at position %d (artifact %d)", *c.SlideID, id)
}

func (e *Executor) reorder(st *deck.State, c deck.Change) {
	order := intSlice(c.Args["order"])
	if len(order) == 0 {
		log.Printf("[modify] reorder skipped: empty order")
		return
	}
	writes := deck.WriteTodos(st.Todos)
	byID := make(map[int]deck.Todo, len(writes))
	for _, t := range writes {
		byID[t.ID] = t
	}
	var reordered []deck.Todo
	for _, id := range order {
		if t, ok := byID[id]; ok {
			reordered = append(reordered, t)
		}
	}
	var others []deck.Todo
	for _, t := range st.Todos {
		if t.Kind != deck.KindWrite {
			others = append(others, t)
		}
	}
	st.Todos = append(reordered, others...)
	log.Printf("[modify] reordered to %v", order)
}

// spliceWrite inserts todo into the WRITE subsequence immediately after the
// given 1-based position; position 0 prepends.
func spliceWrite(todos []deck.Todo, pos int, todo deck.Todo) []deck.Todo {
	writes := deck.WriteTodos(todos)
	var others []deck.Todo
	for _, t := range todos {
		if t.Kind != deck.KindWrite {
			others = append(others, t)
		}
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(writes) {
		pos = len(writes)
	}
	out := make([]deck.Todo, 0, len(writes)+1)
	out = append(out, writes[:pos]...)
	out = append(out, todo)
	out = append(out, writes[pos:]...)
	return append(out, others...)
}

func bulletsOutline(args map[string]any) string {
	items := args["bullets"]
	arr, ok := items.([]any)
	if !ok {
		return ""
	}
	var lines []string
	for _, it := range arr {
		if s, ok := it.(string); ok && s != "" {
			lines = append(lines, "- "+s)
		}
	}
	return strings.Join(lines, "\n")
}

func intSlice(v any) []int {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []int
	for _, it := range arr {
		switch n := it.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		}
	}
	return out
}
