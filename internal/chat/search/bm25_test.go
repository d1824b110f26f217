package search

import (
	"testing"

	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/profile"
)

func testProjects() []profile.Project {
	return []profile.Project{
		{
			Name:         "Exquio",
			Description:  "an AI-powered doctor booking system that matches patients with specialists",
			Technologies: []string{"Python", "Flask", "scikit-learn", "PostgreSQL"},
		},
		{
			Name:         "Market Pulse",
			Description:  "a dashboard that tracks intraday momentum across Indian equity indices",
			Technologies: []string{"Python", "pandas", "Plotly", "Streamlit"},
		},
	}
}

func TestNewProjectIndex(t *testing.T) {
	t.Parallel()
	idx := NewProjectIndex(logger.New("debug"))

	if idx == nil {
		t.Fatal("NewProjectIndex() returned nil")
	}

	if idx.IsEnabled() {
		t.Error("NewProjectIndex() should not be enabled before initialization")
	}
}

func TestProjectIndex_Initialize(t *testing.T) {
	t.Parallel()
	idx := NewProjectIndex(logger.New("debug"))

	if err := idx.Initialize(testProjects()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if !idx.IsEnabled() {
		t.Error("IsEnabled() should be true after initialization")
	}

	if idx.Count() != 2 {
		t.Errorf("Count() = %d, want 2", idx.Count())
	}
}

func TestProjectIndex_InitializeEmpty(t *testing.T) {
	t.Parallel()
	idx := NewProjectIndex(logger.New("debug"))

	if err := idx.Initialize(nil); err != nil {
		t.Fatalf("Initialize(nil) error = %v", err)
	}

	// Initialized but with no searchable corpus
	results, err := idx.Search("doctor booking", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty index returned %d results, want 0", len(results))
	}
}

func TestProjectIndex_Search(t *testing.T) {
	t.Parallel()
	idx := NewProjectIndex(logger.New("debug"))
	if err := idx.Initialize(testProjects()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	tests := []struct {
		name      string
		query     string
		wantFirst string
	}{
		{
			name:      "description keywords",
			query:     "the doctor booking one",
			wantFirst: "Exquio",
		},
		{
			name:      "technology keywords",
			query:     "the streamlit dashboard",
			wantFirst: "Market Pulse",
		},
		{
			name:      "project name",
			query:     "exquio",
			wantFirst: "Exquio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results, err := idx.Search(tt.query, 5)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			if len(results) == 0 {
				t.Fatalf("Search(%q) returned no results", tt.query)
			}
			if results[0].Name != tt.wantFirst {
				t.Errorf("Search(%q) top result = %q, want %q", tt.query, results[0].Name, tt.wantFirst)
			}
			if results[0].Confidence <= 0 || results[0].Confidence > 1 {
				t.Errorf("Confidence = %v, want in (0, 1]", results[0].Confidence)
			}
		})
	}
}

func TestProjectIndex_SearchNoMatch(t *testing.T) {
	t.Parallel()
	idx := NewProjectIndex(logger.New("debug"))
	if err := idx.Initialize(testProjects()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	results, err := idx.Search("quantum chromodynamics", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() with unrelated query returned %d results, want 0", len(results))
	}
}

func TestProjectIndex_SearchBlankQuery(t *testing.T) {
	t.Parallel()
	idx := NewProjectIndex(logger.New("debug"))
	if err := idx.Initialize(testProjects()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	results, err := idx.Search("   ", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results != nil {
		t.Errorf("Search() with blank query = %v, want nil", results)
	}
}

func TestComputeRankConfidence(t *testing.T) {
	t.Parallel()

	if got := computeRankConfidence(0); got != 0 {
		t.Errorf("computeRankConfidence(0) = %v, want 0", got)
	}
	first := computeRankConfidence(1)
	second := computeRankConfidence(2)
	if first <= second {
		t.Errorf("confidence should decrease with rank: rank1=%v rank2=%v", first, second)
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := tokenize("Exquio: AI-powered, doctor booking!")
	want := []string{"exquio", "ai", "powered", "doctor", "booking"}
	if len(got) != len(want) {
		t.Fatalf("tokenize() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("tokenize()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
