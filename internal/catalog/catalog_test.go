package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SAP-F-2025/proficiency-service/internal/errors"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	roles := c.Roles()
	require.Len(t, roles, 5)
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"backend-dev", "cloud-architect", "data-scientist", "qa-engineer", "project-manager"}, ids)

	skills, err := c.Skills("backend-dev")
	require.NoError(t, err)
	assert.Len(t, skills, 6)
	assert.Equal(t, "api-design", skills[0].ID)
	assert.True(t, skills[0].IsImportant)

	task, err := c.Task("graphql-schema")
	require.NoError(t, err)
	assert.Equal(t, models.HighComplexity, task.Complexity)

	owner, err := c.SkillOfTask("db-indexing")
	require.NoError(t, err)
	assert.Equal(t, "database", owner.ID)

	roleID, err := c.RoleOfSkill("containers")
	require.NoError(t, err)
	assert.Equal(t, "cloud-architect", roleID)
}

func TestCatalogNotFound(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Role("astronaut")
	nf, ok := apperrors.AsNotFound(err)
	require.True(t, ok)
	assert.Equal(t, "role", nf.Kind)

	_, err = c.Tasks("nope")
	_, ok = apperrors.AsNotFound(err)
	assert.True(t, ok)

	_, err = c.SelectedTask("api-design", "sql-queries")
	nf, ok = apperrors.AsNotFound(err)
	require.True(t, ok)
	assert.Equal(t, "task", nf.Kind)
}

func TestSelectedTask(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	st, err := c.SelectedTask("api-design", "rest-endpoints")
	require.NoError(t, err)
	assert.Equal(t, models.SelectedTask{
		SkillID:    "api-design",
		SkillName:  "API Design",
		TaskID:     "rest-endpoints",
		TaskName:   "REST Endpoint Design",
		Complexity: models.MediumComplexity,
	}, st)
}

func TestCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty",
			yaml: "roles: []",
			want: "catalog has no roles",
		},
		{
			name: "duplicate task",
			yaml: `
roles:
  - id: r1
    name: Role
    skills:
      - id: s1
        name: One
        tasks:
          - { id: t1, name: Task, complexity: LC }
      - id: s2
        name: Two
        tasks:
          - { id: t1, name: Again, complexity: MC }
`,
			want: `duplicate task id "t1"`,
		},
		{
			name: "bad complexity",
			yaml: `
roles:
  - id: r1
    name: Role
    skills:
      - id: s1
        name: One
        tasks:
          - { id: t1, name: Task, complexity: XL }
`,
			want: "unknown complexity",
		},
		{
			name: "skill without tasks",
			yaml: `
roles:
  - id: r1
    name: Role
    skills:
      - id: s1
        name: One
`,
			want: `skill "s1" has no tasks`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
roles:
  - id: r1
    name: Role
    skills:
      - id: s1
        name: One
        tasks:
          - { id: t1, name: Task, complexity: HC }
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Summaries(), 1)
	assert.Equal(t, 1, c.Summaries()[0].SkillsCount)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
