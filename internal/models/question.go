package models

// Difficulty of a generated question, 1 (easy) to 3 (hard).
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

// Complexity is the inverse of Complexity.Difficulty.
func (d Difficulty) Complexity() Complexity {
	switch d {
	case DifficultyHard:
		return HighComplexity
	case DifficultyMedium:
		return MediumComplexity
	default:
		return LowComplexity
	}
}

// SelectedTask records a candidate's task choice with denormalized names for display.
type SelectedTask struct {
	SkillID    string     `json:"skill_id" validate:"required"`
	SkillName  string     `json:"skill_name"`
	TaskID     string     `json:"task_id" validate:"required"`
	TaskName   string     `json:"task_name"`
	Complexity Complexity `json:"complexity" validate:"omitempty,complexity"`
}

type Option struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Question is immutable once generated. Exactly one option id equals CorrectAnswer.
type Question struct {
	ID            string     `json:"id"`
	SkillID       string     `json:"skill_id"`
	SkillName     string     `json:"skill_name"`
	TaskID        string     `json:"task_id"`
	TaskName      string     `json:"task_name"`
	Difficulty    Difficulty `json:"difficulty"`
	Text          string     `json:"text"`
	Options       []Option   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
}

// QuestionView is a question as shown to the candidate, without the answer key.
type QuestionView struct {
	ID         string     `json:"id"`
	SkillID    string     `json:"skill_id"`
	SkillName  string     `json:"skill_name"`
	TaskID     string     `json:"task_id"`
	TaskName   string     `json:"task_name"`
	Difficulty Difficulty `json:"difficulty"`
	Text       string     `json:"text"`
	Options    []Option   `json:"options"`
}

// View strips the answer key.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:         q.ID,
		SkillID:    q.SkillID,
		SkillName:  q.SkillName,
		TaskID:     q.TaskID,
		TaskName:   q.TaskName,
		Difficulty: q.Difficulty,
		Text:       q.Text,
		Options:    q.Options,
	}
}
