package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sayeesck/portfolio-chatbot-go/internal/errors"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	p, err := Load(filepath.Join("testdata", "profile.json"))
	require.NoError(t, err)

	assert.Equal(t, "Sayees", p.Name)
	assert.Equal(t, "Kozhikode, Kerala", p.Location.Hometown)
	assert.Equal(t, "Chennai, Tamil Nadu", p.Location.Current)
	assert.Equal(t, "B.Tech in Computer Science and Engineering", p.Education.Degree)
	assert.Equal(t, []string{"English", "Malayalam"}, p.Languages)

	require.Len(t, p.Projects, 1)
	assert.Equal(t, "Exquio", p.Projects[0].Name)
	assert.Equal(t, []string{"Python", "Flask"}, p.Projects[0].Technologies)

	assert.Equal(t, "github.com/sayeesck", p.Contact.GitHub)
	// Optional sections absent from the fixture stay empty
	assert.Empty(t, p.Certifications)
	assert.Empty(t, p.Experience)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join("testdata", "nope.json"))
	assert.Error(t, err)
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name:    "minimal valid",
			profile: Profile{Name: "Sayees"},
			wantErr: false,
		},
		{
			name:    "missing name",
			profile: Profile{},
			wantErr: true,
		},
		{
			name: "unnamed project",
			profile: Profile{
				Name:     "Sayees",
				Projects: []Project{{Description: "something"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrMissingField)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	p := &Profile{Name: "Sayees"}
	assert.Equal(t, "Sayees", p.DisplayName())

	empty := &Profile{}
	assert.Equal(t, "the portfolio owner", empty.DisplayName())
}

func TestProjectNames(t *testing.T) {
	t.Parallel()

	p := &Profile{Projects: []Project{{Name: "Exquio"}, {Name: "Market Pulse"}}}
	assert.Equal(t, []string{"Exquio", "Market Pulse"}, p.ProjectNames())

	assert.Empty(t, (&Profile{}).ProjectNames())
}

func TestFindProject(t *testing.T) {
	t.Parallel()

	p := &Profile{Projects: []Project{{Name: "Exquio", Description: "booking system"}}}

	proj, ok := p.FindProject("exquio")
	assert.True(t, ok)
	assert.Equal(t, "booking system", proj.Description)

	_, ok = p.FindProject("unknown")
	assert.False(t, ok)
}
