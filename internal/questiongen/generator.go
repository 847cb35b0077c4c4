package questiongen

import (
	"fmt"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

// Generator turns an ordered task selection into questions.
type Generator struct {
	bank *Bank
}

func New(bank *Bank) *Generator {
	return &Generator{bank: bank}
}

// Generate maps each selected task to one question. Text and options are
// picked by position, cycling through the task's lists (or the default
// lists) so the output depends only on the input order.
func (g *Generator) Generate(tasks []models.SelectedTask) []models.Question {
	questions := make([]models.Question, 0, len(tasks))
	for i, task := range tasks {
		texts := g.bank.templatesFor(task.TaskID)
		sets := g.bank.optionSetsFor(task.TaskID)
		set := sets[i%len(sets)]

		options := make([]models.Option, len(set.Options))
		copy(options, set.Options)

		questions = append(questions, models.Question{
			ID:            QuestionID(i),
			SkillID:       task.SkillID,
			SkillName:     task.SkillName,
			TaskID:        task.TaskID,
			TaskName:      task.TaskName,
			Difficulty:    task.Complexity.Difficulty(),
			Text:          texts[i%len(texts)],
			Options:       options,
			CorrectAnswer: set.CorrectAnswer,
		})
	}
	return questions
}

// QuestionID is the 1-based positional id for index i.
func QuestionID(i int) string {
	return fmt.Sprintf("q-%d", i+1)
}
