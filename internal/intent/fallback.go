package intent

import (
	"regexp"
	"strconv"
	"strings"

	"slidesmith/internal/deck"
)

var slideRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:in\s+)?slide\s+(\d+)`),
	regexp.MustCompile(`(?i)for\s+slide\s+(\d+)`),
	regexp.MustCompile(`(?i)to\s+slide\s+(\d+)`),
	regexp.MustCompile(`(?i)on\s+slide\s+(\d+)`),
}

// slideNumberFrom pulls the most specifically referenced slide number out of
// a message, or def when none is mentioned.
func slideNumberFrom(msg string, def int) int {
	for _, p := range slideRefPatterns {
		if m := p.FindStringSubmatch(msg); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return def
}

// newSlideKeywords are strong signals that the user wants a new slide rather
// than an edit of an existing one.
var newSlideKeywords = []string{
	"title:",
	"bullets:",
	"new slide",
	"add slide",
	"add another slide",
	"add a slide",
	"create slide",
	"create another slide",
	"insert slide",
	"make a slide",
	"make another slide",
}

func isNewSlideIndicator(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range newSlideKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// changeLanguage detects add/insert/modify phrasing that, combined with an
// existing deck, pins the intent to APPLY_CHANGES.
var changeLanguage = []string{"add", "insert", "modify", "change", "update", "delete", "remove", "edit", "fix"}

func hasChangeLanguage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, w := range changeLanguage {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func refersToSlideNumber(msg string) bool {
	for _, p := range slideRefPatterns {
		if p.MatchString(msg) {
			return true
		}
	}
	return false
}

// synthesizeFallback builds exactly one change from the literal utterance when
// the model classified APPLY_CHANGES but parsed nothing usable.
func synthesizeFallback(msg string, currentSlides int) deck.Change {
	if isNewSlideIndicator(msg) {
		// Append after the last slide.
		at := currentSlides
		return deck.Change{
			SlideID: &at,
			Op:      deck.OpInsertAfter,
			Args: map[string]any{
				"title":   "New Slide",
				"content": msg,
			},
		}
	}
	at := slideNumberFrom(msg, 1)
	return deck.Change{
		SlideID: &at,
		Op:      deck.OpEdit,
		Args:    map[string]any{"description": msg},
	}
}
