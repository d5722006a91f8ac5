package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"slidesmith/internal/deck"
	"slidesmith/internal/generate"
	"slidesmith/internal/intent"
	"slidesmith/internal/modify"
	"slidesmith/internal/plan"
)

// Pipeline wires one message cycle: interpret, route on intent, fan out any
// missing slides, merge, report. It owns the session state for the duration
// of a ProcessMessage call; workers only ever see copies of todo fields.
type Pipeline struct {
	Interpreter *intent.Interpreter
	Planner     *plan.Planner
	Coordinator *generate.Coordinator
	Executor    *modify.Executor
}

// ProcessMessage runs one full cycle for a user turn and returns the
// resulting deck view. The cycle never fails outright: model and worker
// errors are logged into st.Errors and the deck degrades to placeholders.
func (p *Pipeline) ProcessMessage(ctx context.Context, st *deck.State, userText string) ([]deck.SlideStatus, error) {
	run := uuid.NewString()[:8]
	log.Printf("[pipeline %s] message: %.80q", run, userText)
	st.Messages = append(st.Messages, deck.Message{Role: "user", Content: userText})

	res, err := p.Interpreter.Run(ctx, st.Messages, st.Config)
	if err != nil {
		st.Errors = append(st.Errors, fmt.Sprintf("interpret: %v", err))
	}
	st.LastIntent = res.Intent

	if applyDelta(st, res.ConfigDelta) {
		log.Printf("[pipeline %s] config now %+v (version %d), plan reset", run, st.Config, st.ConfigVersion)
	}

	switch res.Intent {
	case deck.IntentNewDeck, deck.IntentRefineConfig:
		p.ensurePlanned(ctx, st, run)
		p.generateMissing(ctx, st, run)
	case deck.IntentApplyChanges:
		st.PendingChanges = res.Changes
		p.Executor.Apply(ctx, st, st.PendingChanges, p.style(st))
		st.PendingChanges = nil
		deck.MarkDone(st.Todos, st.Artifacts)
	case deck.IntentFinalize:
		p.generateMissing(ctx, st, run)
		deck.MarkFinalized(st.Todos)
	case deck.IntentShowStatus:
		// Report only.
	}

	statuses := Status(st)
	st.Messages = append(st.Messages, deck.Message{Role: "assistant", Content: summarize(res.Intent, statuses)})
	log.Printf("[pipeline %s] done: intent=%s slides=%d errors=%d", run, res.Intent, len(statuses), len(st.Errors))
	return statuses, nil
}

// applyDelta merges non-empty delta fields into the config. Any actual change
// invalidates the plan: artifact ids from the old plan must never leak into
// the new one.
func applyDelta(st *deck.State, d deck.Config) bool {
	next := st.Config
	if d.Topic != "" {
		next.Topic = d.Topic
	}
	if d.Style != "" {
		next.Style = d.Style
	}
	if d.SlideCount >= deck.MinSlides {
		next.SlideCount = d.SlideCount
	}
	if next == st.Config {
		return false
	}
	st.Config = next
	st.ResetPlan()
	return true
}

func (p *Pipeline) style(st *deck.State) string {
	if st.Config.Style == "" {
		return deck.DefaultStyle
	}
	return st.Config.Style
}

// ensurePlanned expands the config into todos when none exist yet.
func (p *Pipeline) ensurePlanned(ctx context.Context, st *deck.State, run string) {
	if len(st.Todos) > 0 {
		return
	}
	if !st.Config.Complete() {
		log.Printf("[pipeline %s] config incomplete, not planning: %+v", run, st.Config)
		return
	}
	todos, err := p.Planner.Run(ctx, st.Config.Topic, p.style(st), st.Config.SlideCount)
	if err != nil {
		log.Printf("[pipeline %s] planning failed: %v", run, err)
		st.Errors = append(st.Errors, fmt.Sprintf("plan: %v", err))
		return
	}
	st.Todos = todos
}

// generateMissing fans out every WRITE todo that has no artifact and merges
// the results. Already-built slides are untouched; a rerun after a partial
// failure fills only the gaps.
func (p *Pipeline) generateMissing(ctx context.Context, st *deck.State, run string) {
	missing := deck.MissingArtifacts(st.Todos, st.Artifacts)
	if len(missing) == 0 {
		return
	}
	log.Printf("[pipeline %s] generating %d missing slides", run, len(missing))
	results := p.Coordinator.Run(ctx, missing, p.style(st))
	generate.Join(st, results)
}

func summarize(it deck.Intent, statuses []deck.SlideStatus) string {
	ok := 0
	for _, s := range statuses {
		if s.IsGenerated && s.IsValid {
			ok++
		}
	}
	return fmt.Sprintf("intent=%s slides=%d valid=%d", it, len(statuses), ok)
}
