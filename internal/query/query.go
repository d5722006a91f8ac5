package query

import (
	"context"
	"encoding/json"
)

// Rows is tabular data as JSON-serializable records.
type Rows []map[string]any

// JSON renders the rows as a JSON array ("[]" when empty) for embedding into
// an authoring outline.
func (r Rows) JSON() string {
	if len(r) == 0 {
		return "[]"
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Client answers a natural-language data question. Implementations return an
// empty result, not an error, when no data source answers the question;
// errors are reserved for transport/execution failures, which callers treat
// as non-fatal.
type Client interface {
	Query(ctx context.Context, question string) (Rows, error)
}

// Empty is a Client that answers every question with no data. Used in offline
// mode and wherever a deck has no warehouse behind it.
type Empty struct{}

func (Empty) Query(ctx context.Context, question string) (Rows, error) { return Rows{}, nil }
