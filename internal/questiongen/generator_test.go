package questiongen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	bank, err := DefaultBank()
	require.NoError(t, err)
	return New(bank)
}

func sel(skill, task string, c models.Complexity) models.SelectedTask {
	return models.SelectedTask{SkillID: skill, SkillName: skill + " name", TaskID: task, TaskName: task + " name", Complexity: c}
}

func TestComplexityDifficulty(t *testing.T) {
	assert.Equal(t, models.DifficultyEasy, models.LowComplexity.Difficulty())
	assert.Equal(t, models.DifficultyMedium, models.MediumComplexity.Difficulty())
	assert.Equal(t, models.DifficultyHard, models.HighComplexity.Difficulty())
}

func TestGenerateUsesPositionalIDsAndCycling(t *testing.T) {
	g := newTestGenerator(t)

	qs := g.Generate([]models.SelectedTask{
		sel("api-design", "rest-endpoints", models.MediumComplexity),
		sel("api-design", "rest-endpoints", models.MediumComplexity),
		sel("api-design", "api-versioning", models.LowComplexity),
		sel("database", "nosql-design", models.LowComplexity),
		sel("database", "db-indexing", models.HighComplexity),
	})
	require.Len(t, qs, 5)

	for i, q := range qs {
		assert.Equal(t, QuestionID(i), q.ID)
	}
	assert.Equal(t, "q-1", qs[0].ID)

	// Same task at positions 0 and 1 cycles through its lists.
	assert.Equal(t, "Which HTTP method should be used for a partial update to a resource?", qs[0].Text)
	assert.Equal(t, "What is the most appropriate status code for a successful resource creation?", qs[1].Text)
	assert.Equal(t, "PATCH - Partial update of resource", qs[0].Options[1].Text)
	assert.Equal(t, "201 Created", qs[1].Options[1].Text)

	// api-versioning has two texts: index 2 % 2 = 0. No own option sets.
	assert.Equal(t, "What is the recommended approach for API versioning in enterprise applications?", qs[2].Text)
	assert.Equal(t, "Option A - Standard approach with moderate complexity", qs[2].Options[0].Text)

	// nosql-design falls back to the default texts: index 3 % 3 = 0.
	assert.Equal(t, "Which approach is considered best practice for this task?", qs[3].Text)

	assert.Equal(t, models.DifficultyHard, qs[4].Difficulty)
	assert.Equal(t, models.DifficultyEasy, qs[3].Difficulty)
}

func TestGenerateExactlyOneCorrectOption(t *testing.T) {
	g := newTestGenerator(t)
	qs := g.Generate([]models.SelectedTask{
		sel("a", "rest-endpoints", models.MediumComplexity),
		sel("a", "unit-testing", models.LowComplexity),
		sel("b", "unknown-task", models.HighComplexity),
	})

	for _, q := range qs {
		require.Len(t, q.Options, 4)
		matches := 0
		for _, o := range q.Options {
			if o.ID == q.CorrectAnswer {
				matches++
			}
		}
		assert.Equal(t, 1, matches, q.ID)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := newTestGenerator(t)
	input := []models.SelectedTask{
		sel("api-design", "graphql-schema", models.HighComplexity),
		sel("testing", "integration-testing", models.MediumComplexity),
		sel("testing", "mocking", models.MediumComplexity),
	}
	assert.Equal(t, g.Generate(input), g.Generate(input))
}

func TestGenerateDoesNotShareOptionSlices(t *testing.T) {
	g := newTestGenerator(t)
	input := []models.SelectedTask{sel("a", "mocking", models.LowComplexity)}

	first := g.Generate(input)
	first[0].Options[0].Text = "mutated"

	second := g.Generate(input)
	assert.NotEqual(t, "mutated", second[0].Options[0].Text)
}

func TestGenerateHidesAnswerInView(t *testing.T) {
	g := newTestGenerator(t)
	q := g.Generate([]models.SelectedTask{sel("a", "rest-endpoints", models.MediumComplexity)})[0]

	v := q.View()
	assert.Equal(t, q.ID, v.ID)
	assert.Equal(t, q.Options, v.Options)
}

func TestParseBankValidation(t *testing.T) {
	_, err := ParseBank([]byte(`templates: {x: ["a"]}`))
	assert.ErrorContains(t, err, "default")

	_, err = ParseBank([]byte(`
templates:
  default: ["a"]
option_sets:
  default:
    - options: [{id: A, text: a}, {id: B, text: b}, {id: C, text: c}, {id: D, text: d}]
      correct_answer: Z
`))
	assert.ErrorContains(t, err, "matches no option")

	for _, options := range []string{
		"[{id: A, text: a}, {id: B, text: b}]",
		"[{id: A, text: a}, {id: B, text: b}, {id: C, text: c}]",
		"[{id: A, text: a}, {id: B, text: b}, {id: C, text: c}, {id: D, text: d}, {id: E, text: e}]",
	} {
		_, err = ParseBank([]byte(`
templates:
  default: ["a"]
option_sets:
  default:
    - options: ` + options + `
      correct_answer: A
`))
		assert.ErrorContains(t, err, "want 4", options)
	}

	b, err := ParseBank([]byte(`
templates:
  default: ["only"]
option_sets:
  default:
    - options: [{id: A, text: a}, {id: B, text: b}, {id: C, text: c}, {id: D, text: d}]
      correct_answer: A
`))
	require.NoError(t, err)
	qs := New(b).Generate([]models.SelectedTask{sel("s", "t1", models.LowComplexity), sel("s", "t2", models.LowComplexity)})
	assert.Equal(t, qs[0].Text, qs[1].Text)
	assert.Equal(t, qs[0].Options, qs[1].Options)
}
