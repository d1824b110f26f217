package chat

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer lower-cases input, strips accents, and corrects spelling
// against the intent vocabulary. It is a pure function over immutable
// tables, so one instance is shared by all sessions.
type Normalizer struct {
	spellings   map[string]string
	vocabulary  []string
	sensitivity float64
	metric      *metrics.SorensenDice
	folder      transform.Transformer
}

// NewNormalizer creates a normalizer.
//
// spellings maps known misspellings to canonical forms and is consulted
// before fuzzy lookup. vocabulary is the list of intent keywords fuzzy
// correction may rewrite a token into. sensitivity is the minimum
// similarity ratio for a fuzzy correction to apply.
func NewNormalizer(spellings map[string]string, vocabulary []string, sensitivity float64) *Normalizer {
	return &Normalizer{
		spellings:   spellings,
		vocabulary:  vocabulary,
		sensitivity: sensitivity,
		metric:      metrics.NewSorensenDice(),
		folder:      transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// Normalize lower-cases and trims raw, strips diacritics, and corrects
// each token. Unmatched tokens pass through verbatim; it never fails.
func (n *Normalizer) Normalize(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return ""
	}

	if folded, _, err := transform.String(n.folder, text); err == nil {
		text = folded
	}

	tokens := strings.Fields(text)
	for i, token := range tokens {
		tokens[i] = n.correctToken(token)
	}

	return strings.Join(tokens, " ")
}

// correctToken applies the spelling dictionary first, then fuzzy lookup
// against the intent vocabulary. The single best match wins, and only
// when it clears the sensitivity threshold.
func (n *Normalizer) correctToken(token string) string {
	if canonical, ok := n.spellings[token]; ok {
		return canonical
	}

	best := ""
	bestScore := 0.0
	for _, word := range n.vocabulary {
		score := strutil.Similarity(token, word, n.metric)
		if score > bestScore {
			bestScore = score
			best = word
		}
	}
	if best != "" && bestScore >= n.sensitivity {
		return best
	}
	return token
}
