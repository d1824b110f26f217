// Package search provides keyword search over portfolio projects.
// Uses BM25 ranking so free-text questions like "the doctor booking one"
// still resolve to the right project.
package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/iwilltry42/bm25-go/bm25"

	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/profile"
)

// Result represents a search result with confidence score.
// Confidence is derived from BM25 rank position, not semantic similarity.
type Result struct {
	Name       string  // Project name
	Confidence float32 // Rank-based confidence (0-1), higher = more relevant
}

// ProjectIndex provides keyword-based project search using BM25.
type ProjectIndex struct {
	bm25Okapi   *bm25.BM25Okapi
	docIDToName map[int]string
	logger      *logger.Logger
	mu          sync.RWMutex
	initialized bool
	docCount    int
}

// NewProjectIndex creates an empty project index.
func NewProjectIndex(log *logger.Logger) *ProjectIndex {
	return &ProjectIndex{
		docIDToName: make(map[int]string),
		logger:      log,
	}
}

// Initialize builds the BM25 index from the profile's projects.
// One document per project: name, description, and technologies.
func (idx *ProjectIndex) Initialize(projects []profile.Project) error {
	if idx == nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(projects) == 0 {
		idx.initialized = true
		return nil
	}

	var corpus []string
	idx.docIDToName = make(map[int]string)

	docIndex := 0
	for _, proj := range projects {
		parts := []string{proj.Name, proj.Description}
		parts = append(parts, proj.Technologies...)
		doc := strings.TrimSpace(strings.Join(parts, " "))
		if doc == "" {
			continue
		}
		corpus = append(corpus, doc)
		idx.docIDToName[docIndex] = proj.Name
		docIndex++
	}

	if len(corpus) == 0 {
		idx.initialized = true
		return nil
	}

	// k1=1.5, b=0.75 are standard BM25 parameters
	bm25Okapi, err := bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("failed to create BM25 index: %w", err)
	}
	idx.bm25Okapi = bm25Okapi
	idx.docCount = len(corpus)
	idx.initialized = true

	if idx.logger != nil {
		idx.logger.WithField("docs", len(corpus)).Info("Project index initialized")
	}
	return nil
}

// Search performs BM25 keyword search over the project corpus.
// Returns results sorted by score descending with rank-based confidence.
func (idx *ProjectIndex) Search(query string, topN int) ([]Result, error) {
	if idx == nil || !idx.IsEnabled() {
		return nil, nil
	}

	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	tokenizedQuery := tokenize(query)
	if len(tokenizedQuery) == 0 {
		return nil, nil
	}

	scores, err := idx.bm25Okapi.GetScores(tokenizedQuery)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	type scoredDoc struct {
		docID int
		score float64
	}
	var scoredDocs []scoredDoc
	for docID, score := range scores {
		if score > 0 {
			scoredDocs = append(scoredDocs, scoredDoc{docID: docID, score: score})
		}
	}

	sort.Slice(scoredDocs, func(i, j int) bool {
		return scoredDocs[i].score > scoredDocs[j].score
	})

	results := make([]Result, 0, len(scoredDocs))
	for rank, sd := range scoredDocs {
		name := idx.docIDToName[sd.docID]
		if name == "" {
			continue
		}
		results = append(results, Result{
			Name:       name,
			Confidence: computeRankConfidence(rank + 1),
		})
	}

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}

	return results, nil
}

// IsEnabled returns true if the index is initialized
func (idx *ProjectIndex) IsEnabled() bool {
	if idx == nil {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.initialized && idx.bm25Okapi != nil
}

// Count returns the number of documents in the index
func (idx *ProjectIndex) Count() int {
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docCount
}

// computeRankConfidence calculates confidence score from BM25 rank.
// BM25 scores are unbounded and query-dependent, so we use rank as a proxy.
//
// Formula: 1 / (1 + 0.05 * rank)
//   - rank 1 → 0.95
//   - rank 5 → 0.80
func computeRankConfidence(rank int) float32 {
	if rank <= 0 {
		return 0
	}
	return float32(1.0 / (1.0 + 0.05*float64(rank)))
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var currentWord strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			currentWord.WriteRune(r)
		} else {
			if currentWord.Len() > 0 {
				tokens = append(tokens, currentWord.String())
				currentWord.Reset()
			}
		}
	}

	if currentWord.Len() > 0 {
		tokens = append(tokens, currentWord.String())
	}

	return tokens
}
