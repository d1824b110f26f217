// Package profile loads the static portfolio dataset the bot answers from.
// The profile is read once at startup and never mutated, so it is safe to
// share across all dialogue sessions without locking.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/sayeesck/portfolio-chatbot-go/internal/errors"
)

// Location holds hometown and current residence.
type Location struct {
	Hometown string `json:"hometown"`
	Current  string `json:"current"`
}

// Education describes the current academic program.
type Education struct {
	Degree         string `json:"degree"`
	Specialization string `json:"specialization"`
	College        string `json:"college"`
	University     string `json:"university"`
}

// Project is a single portfolio project.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// Contact holds the public contact channels.
type Contact struct {
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

// Experience is a single work engagement.
type Experience struct {
	Company     string   `json:"company"`
	Role        string   `json:"role"`
	Duration    string   `json:"duration"`
	Description []string `json:"description"`
}

// TradingExperience summarizes market trading background.
type TradingExperience struct {
	Years   string   `json:"years"`
	Markets []string `json:"markets"`
}

// Profile is the full static portfolio record.
// Handlers must tolerate missing fields: accessors return empty values
// rather than failing, and reply templates substitute safe defaults.
type Profile struct {
	Name              string            `json:"name"`
	Role              string            `json:"role"`
	Bio               string            `json:"bio"`
	Location          Location          `json:"location"`
	Education         Education         `json:"education"`
	TechnicalSkills   []string          `json:"technical_skills"`
	SoftSkills        []string          `json:"soft_skills"`
	Tools             []string          `json:"tools"`
	Languages         []string          `json:"languages"`
	Interests         []string          `json:"interests"`
	Projects          []Project         `json:"projects"`
	Contact           Contact           `json:"contact"`
	Experience        []Experience      `json:"experience"`
	Certifications    []string          `json:"certifications"`
	TradingExperience TradingExperience `json:"trading_experience"`
}

// Load reads and parses the profile JSON document at path.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate profile %s: %w", path, err)
	}

	return &p, nil
}

// Validate checks the fields every reply handler depends on.
// Optional sections may be empty; handlers degrade to defaults for those.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name", apperrors.ErrMissingField)
	}
	for i, proj := range p.Projects {
		if strings.TrimSpace(proj.Name) == "" {
			return fmt.Errorf("%w: projects[%d].name", apperrors.ErrMissingField, i)
		}
	}
	return nil
}

// DisplayName returns the subject's name, or a placeholder when unset.
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return "the portfolio owner"
}

// ProjectNames returns project names in profile order.
func (p *Profile) ProjectNames() []string {
	names := make([]string, 0, len(p.Projects))
	for _, proj := range p.Projects {
		names = append(names, proj.Name)
	}
	return names
}

// FindProject returns the project with the exact name, case-insensitively.
func (p *Profile) FindProject(name string) (Project, bool) {
	for _, proj := range p.Projects {
		if strings.EqualFold(proj.Name, name) {
			return proj, true
		}
	}
	return Project{}, false
}
