package models

// Complexity tags a catalog task and determines the difficulty of its question.
type Complexity string

const (
	LowComplexity    Complexity = "LC"
	MediumComplexity Complexity = "MC"
	HighComplexity   Complexity = "HC"
)

// IsValid reports whether c is one of the three known complexity levels.
func (c Complexity) IsValid() bool {
	switch c {
	case LowComplexity, MediumComplexity, HighComplexity:
		return true
	}
	return false
}

// Difficulty maps complexity to question difficulty: High=3, Medium=2, Low=1.
// Unknown values fall back to the lowest difficulty.
func (c Complexity) Difficulty() Difficulty {
	switch c {
	case HighComplexity:
		return DifficultyHard
	case MediumComplexity:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

type Task struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Complexity Complexity `json:"complexity" yaml:"complexity"`
}

type Skill struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	IsImportant bool   `json:"is_important" yaml:"is_important"`
	Tasks       []Task `json:"tasks" yaml:"tasks"`
}

// Task returns the task with the given id, if the skill owns it.
func (s *Skill) Task(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

type Role struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Skills      []Skill `json:"skills" yaml:"skills"`
}

// RoleSummary is the catalog listing shape without nested skills.
type RoleSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SkillsCount int    `json:"skills_count"`
}
