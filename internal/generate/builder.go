package generate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"slidesmith/internal/author"
	"slidesmith/internal/dataneed"
	"slidesmith/internal/query"
	"slidesmith/internal/slidehtml"
)

// Result is one unit of work's outcome. Exactly one Result exists per
// dispatched task id; Content is never empty (a failed build carries the
// placeholder).
type Result struct {
	TaskID  int
	Title   string
	Content string
	Success bool
	Err     string
}

// Builder produces a single slide: data-need detection, optional warehouse
// fetch, authoring, validate/repair, sanitize. It owns no shared mutable
// state and is safe to call from many goroutines at once.
type Builder struct {
	Author   *author.Author
	Detector *dataneed.Detector
	Query    query.Client

	// MaxRepairs bounds validate-repair round-trips; past the budget the
	// last output is accepted as-is.
	MaxRepairs int
}

func (b *Builder) repairs() int {
	if b.MaxRepairs < 0 {
		return 0
	}
	if b.MaxRepairs == 0 {
		return 1
	}
	return b.MaxRepairs
}

// Build produces the slide for one task. It never panics and never returns a
// failure without content: any error becomes a placeholder Result.
func (b *Builder) Build(ctx context.Context, id int, title, details, style string) (res Result) {
	res = Result{TaskID: id, Title: title}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[generate] panic in task %d: %v", id, r)
			res.Content = slidehtml.Placeholder(title, "Error generating slide content. Please try again.")
			res.Success = false
			res.Err = fmt.Sprintf("task %d: panic: %v", id, r)
		}
	}()

	var dataJSON string
	var notes []string
	if question := b.Detector.Run(ctx, title, details); question != "" {
		rows, err := b.Query.Query(ctx, question)
		if err != nil {
			// Non-fatal: generate without data, keep the note.
			log.Printf("[generate] task %d: data fetch failed: %v", id, err)
			notes = append(notes, fmt.Sprintf("task %d: data fetch: %v", id, err))
		} else if len(rows) > 0 {
			dataJSON = rows.JSON()
		}
	}

	req := author.Request{Title: title, Outline: details, Style: style, Data: dataJSON}
	html, err := b.Author.Generate(ctx, req)
	if err != nil {
		log.Printf("[generate] task %d: author failed: %v", id, err)
		res.Content = slidehtml.Placeholder(title, "Error generating slide content. Please try again.")
		res.Success = false
		res.Err = strings.Join(append(notes, fmt.Sprintf("task %d: generate: %v", id, err)), "; ")
		return res
	}

	html = b.repairLoop(ctx, html, req)
	res.Content = slidehtml.Sanitize(html)
	res.Success = true
	res.Err = strings.Join(notes, "; ")
	return res
}

// repairLoop issues at most the repair budget of fix-ups, carrying both the
// invalid output and the original request. A repair call that itself errors
// keeps the prior output.
func (b *Builder) repairLoop(ctx context.Context, html string, req author.Request) string {
	for attempt := 0; attempt < b.repairs(); attempt++ {
		violations := slidehtml.Check(html)
		if len(violations) == 0 {
			return html
		}
		log.Printf("[generate] repairing %q (attempt %d): %s", req.Title, attempt+1, strings.Join(violations, "; "))
		fixed, err := b.Author.Repair(ctx, html, req, strings.Join(violations, "\n"))
		if err != nil {
			log.Printf("[generate] repair failed for %q: %v", req.Title, err)
			return html
		}
		html = fixed
	}
	return html
}

// Refine applies a described change to existing content under the same
// validate/repair/sanitize discipline as Build.
func (b *Builder) Refine(ctx context.Context, current, description, style string) (string, error) {
	edited, err := b.Author.Edit(ctx, current, description, style)
	if err != nil {
		return "", err
	}
	req := author.Request{Title: slidehtml.Title(edited), Outline: description, Style: style}
	edited = b.repairLoop(ctx, edited, req)
	return slidehtml.Sanitize(edited), nil
}
