package deck

// Config drives a full deck build. Any interpreter-applied delta invalidates
// existing todos and artifacts (version bump, full reset).
type Config struct {
	Topic      string `json:"topic,omitempty"`
	Style      string `json:"style,omitempty"`
	SlideCount int    `json:"slide_count,omitempty"`
}

const (
	MinSlides = 1
	MaxSlides = 40

	DefaultStyle = "professional clean"
)

// Complete reports whether the config carries enough to plan a deck.
func (c Config) Complete() bool {
	return c.Topic != "" && c.SlideCount >= MinSlides
}

// TodoKind separates per-slide work from the closing step.
type TodoKind string

const (
	KindWrite    TodoKind = "WRITE"
	KindFinalize TodoKind = "FINALIZE"
)

// Todo is one unit of planned work. IDs are stable and monotonically
// assigned; the order of the WRITE subsequence is the single source of truth
// for user-visible slide positions.
type Todo struct {
	ID        int      `json:"id"`
	Kind      TodoKind `json:"kind"`
	Title     string   `json:"title"`
	Details   string   `json:"details"`
	DependsOn []int    `json:"depends_on"`
}

// Op is a deck modification operation.
type Op string

const (
	OpEdit        Op = "EDIT"
	OpInsertAfter Op = "INSERT_AFTER"
	OpDelete      Op = "DELETE"
	OpReorder     Op = "REORDER"
)

// Change is one user-requested modification. SlideID is a 1-based position as
// the user sees it (0 means "before the first"); nil means the interpreter
// could not pin one down and a default applies.
type Change struct {
	SlideID *int           `json:"slide_id,omitempty"`
	Op      Op             `json:"operation"`
	Args    map[string]any `json:"args"`
}

// StrArg returns a string argument, or "" when absent or non-string.
func (c Change) StrArg(key string) string {
	if c.Args == nil {
		return ""
	}
	s, _ := c.Args[key].(string)
	return s
}

// SlideStatus is the user-facing view of one slide, rebuilt fresh every cycle
// from todo order plus the artifact store. Never persisted independently.
type SlideStatus struct {
	ID          int    `json:"id"`
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsGenerated bool   `json:"is_generated"`
	IsValid     bool   `json:"is_valid"`
}

// Intent is the classified purpose of a user turn.
type Intent string

const (
	IntentNewDeck      Intent = "NEW_DECK"
	IntentRefineConfig Intent = "REFINE_CONFIG"
	IntentApplyChanges Intent = "APPLY_CHANGES"
	IntentFinalize     Intent = "FINALIZE"
	IntentShowStatus   Intent = "SHOW_STATUS"
)

// ValidIntent reports whether s names a known intent.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentNewDeck, IntentRefineConfig, IntentApplyChanges, IntentFinalize, IntentShowStatus:
		return true
	}
	return false
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is all mutable session state for one deck. It is owned by a single
// control-flow goroutine; workers never touch it directly.
type State struct {
	Config        Config
	ConfigVersion int

	Messages   []Message
	LastIntent Intent

	Todos          []Todo
	Artifacts      map[int]string
	PendingChanges []Change

	Errors []string
}

// NewState returns an empty session state.
func NewState() *State {
	return &State{Artifacts: map[int]string{}}
}

// Window returns the most recent n messages.
func (s *State) Window(n int) []Message {
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
