package chat

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Match is the outcome of intent classification.
type Match struct {
	Topic      Topic
	Confidence float64
	Exact      bool // true for substring and priority-word hits
}

// Matcher classifies normalized text against the trigger table.
// Read-only after construction, safe to share across sessions.
type Matcher struct {
	triggers  []trigger
	threshold float64
	metric    *metrics.SorensenDice
}

// NewMatcher creates a matcher with the given confidence threshold for
// fuzzy matches.
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{
		triggers:  triggerTable,
		threshold: threshold,
		metric:    metrics.NewSorensenDice(),
	}
}

// Classify resolves normalized text to a topic.
//
// Priority order: inappropriate words, greetings, farewells, exact
// substring triggers in table order, then the best fuzzy score across
// all triggers. A fuzzy match below the threshold yields TopicUnknown.
func (m *Matcher) Classify(text string) Match {
	text = strings.TrimSpace(text)
	if text == "" {
		return Match{Topic: TopicUnknown}
	}

	if containsAnyWord(text, inappropriateWords) {
		return Match{Topic: TopicInappropriate, Confidence: 1, Exact: true}
	}
	if containsAnyWord(text, greetingWords) {
		return Match{Topic: TopicGreeting, Confidence: 1, Exact: true}
	}
	if containsAnyWord(text, farewellWords) {
		return Match{Topic: TopicFarewell, Confidence: 1, Exact: true}
	}

	// Exact substring containment wins over any fuzzy score,
	// first hit in table order.
	for _, tr := range m.triggers {
		if strings.Contains(text, tr.keyword) {
			return Match{Topic: tr.topic, Confidence: 1, Exact: true}
		}
	}

	// Fuzzy: compare each keyword against the whole text and keep the
	// single best score. Ties keep the earliest table entry.
	best := Match{Topic: TopicUnknown}
	for _, tr := range m.triggers {
		score := strutil.Similarity(tr.keyword, text, m.metric)
		if score > best.Confidence {
			best = Match{Topic: tr.topic, Confidence: score}
		}
	}

	if best.Confidence < m.threshold {
		return Match{Topic: TopicUnknown, Confidence: best.Confidence}
	}
	return best
}

// containsAnyWord reports whether any listed word appears in text as a
// whole word. Multi-word entries match as phrases.
func containsAnyWord(text string, words []string) bool {
	padded := " " + text + " "
	for _, word := range words {
		if strings.Contains(padded, " "+word+" ") {
			return true
		}
	}
	return false
}
