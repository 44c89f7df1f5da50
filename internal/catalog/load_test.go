package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_SeedCatalogIsValid(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 10)
	assert.Contains(t, c.Subjects(), "polity")

	mock, err := c.Get("prelims-mock-1")
	require.NoError(t, err)
	assert.Equal(t, KindTest, mock.Kind)
	assert.Len(t, c.Prerequisites("prelims-mock-1"), 4)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
		wantLen int
	}{
		{
			name: "valid",
			doc: `
version: 1
items:
  - id: a
    kind: note
    subject: polity
    difficulty: beginner
    estimated_minutes: 30
  - id: b
    kind: quiz
    subject: polity
    difficulty: advanced
    prerequisites: [a]
`,
			wantLen: 2,
		},
		{
			name: "unknown difficulty rejected by schema",
			doc: `
items:
  - id: a
    kind: note
    subject: polity
    difficulty: expert
`,
			wantErr: "schema validation failed",
		},
		{
			name: "unknown field rejected by schema",
			doc: `
items:
  - id: a
    kind: note
    subject: polity
    difficulty: beginner
    color: blue
`,
			wantErr: "schema validation failed",
		},
		{
			name: "negative minutes rejected by schema",
			doc: `
items:
  - id: a
    kind: note
    subject: polity
    difficulty: beginner
    estimated_minutes: -1
`,
			wantErr: "schema validation failed",
		},
		{
			name: "cycle rejected by graph validation",
			doc: `
items:
  - id: a
    kind: note
    subject: polity
    difficulty: beginner
    prerequisites: [b]
  - id: b
    kind: note
    subject: polity
    difficulty: beginner
    prerequisites: [a]
`,
			wantErr: "cycle",
		},
		{
			name:    "empty document",
			doc:     "",
			wantErr: "empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, c.Len())
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "items:\n  - id: a\n    kind: note\n    subject: polity\n    difficulty: beginner\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Has("a"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
