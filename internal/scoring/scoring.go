package scoring

import (
	"math"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

const (
	// FastAnswerSeconds is the exclusive upper bound for a correct answer to count as proficient.
	FastAnswerSeconds = 20
	// StrengthLevel is the proficiency level from which a skill counts as a strength.
	StrengthLevel = 4
	// NeutralLevel is the level at which neither strengths nor weaknesses are listed.
	NeutralLevel = 3

	tabSwitchPenalty = 10
)

var (
	skillStrengths  = []string{"Strong understanding of core concepts", "Quick problem solving"}
	skillWeaknesses = []string{"Needs improvement in fundamental concepts", "Review theoretical foundations"}
)

// Input is a snapshot of a finished attempt.
type Input struct {
	Questions           []models.Question
	Answers             map[string]models.Answer
	TabSwitches         int
	FaceDetectionIssues int
}

// Engine reduces an attempt snapshot to a Result. The percentile and the
// recommendations come from injected sources; everything else is a pure
// function of the input.
type Engine struct {
	percentile  PercentileSource
	recommender Recommender
}

func NewEngine(percentile PercentileSource, recommender Recommender) *Engine {
	if percentile == nil {
		percentile = LinearPercentile{}
	}
	if recommender == nil {
		recommender = CannedRecommender{}
	}
	return &Engine{percentile: percentile, recommender: recommender}
}

type skillTally struct {
	id      string
	name    string
	correct int
	total   int
	tasks   []models.TaskResult
}

func (e *Engine) Score(in Input) models.Result {
	var (
		correctCount int
		totalTime    int
		answered     int
		order        []string
		tallies      = make(map[string]*skillTally)
	)

	for _, q := range in.Questions {
		ans, ok := in.Answers[q.ID]
		timeSpent := models.DefaultUnansweredSeconds
		isCorrect := false
		if ok {
			answered++
			timeSpent = ans.TimeSpentSeconds
			isCorrect = ans.Answer == q.CorrectAnswer
		}
		if isCorrect {
			correctCount++
		}
		totalTime += timeSpent

		tally, seen := tallies[q.SkillID]
		if !seen {
			tally = &skillTally{id: q.SkillID, name: q.SkillName}
			tallies[q.SkillID] = tally
			order = append(order, q.SkillID)
		}
		tally.total++
		if isCorrect {
			tally.correct++
		}
		tally.tasks = append(tally.tasks, models.TaskResult{
			TaskID:           q.TaskID,
			TaskName:         q.TaskName,
			Complexity:       q.Difficulty.Complexity(),
			Correct:          isCorrect,
			TimeTakenSeconds: timeSpent,
			Status:           TaskStatus(isCorrect, timeSpent),
		})
	}

	accuracy := Accuracy(correctCount, len(in.Questions))

	skills := make([]models.SkillResult, 0, len(order))
	for _, id := range order {
		tally := tallies[id]
		level := ProficiencyLevel(Accuracy(tally.correct, tally.total))
		name := tally.name
		if name == "" {
			name = tally.id
		}
		sr := models.SkillResult{
			SkillID:          tally.id,
			SkillName:        name,
			ProficiencyLevel: level,
			IsStrength:       level >= StrengthLevel,
			TaskResults:      tally.tasks,
			Strengths:        []string{},
			Weaknesses:       []string{},
		}
		if level >= StrengthLevel {
			sr.Strengths = append(sr.Strengths, skillStrengths...)
		}
		if level < NeutralLevel {
			sr.Weaknesses = append(sr.Weaknesses, skillWeaknesses...)
		}
		skills = append(skills, sr)
	}

	return models.Result{
		OverallScore:        round(accuracy),
		ProficiencyLevel:    ProficiencyLevel(accuracy),
		Percentile:          clampPercentile(e.percentile.Percentile(accuracy)),
		TimeTakenSeconds:    totalTime,
		QuestionsAnswered:   answered,
		TotalQuestions:      len(in.Questions),
		Accuracy:            round(accuracy),
		IntegrityScore:      IntegrityScore(in.TabSwitches),
		SkillResults:        skills,
		Recommendations:     e.recommender.Recommend(skills),
		TabSwitches:         in.TabSwitches,
		FaceDetectionIssues: in.FaceDetectionIssues,
	}
}

// Accuracy is the unrounded percentage of correct answers. An empty set scores 0.
func Accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}

// ProficiencyLevel maps accuracy onto the 1-5 ladder.
func ProficiencyLevel(accuracy float64) int {
	switch {
	case accuracy >= 90:
		return 5
	case accuracy >= 75:
		return 4
	case accuracy >= 60:
		return 3
	case accuracy >= 40:
		return 2
	default:
		return 1
	}
}

func TaskStatus(correct bool, timeSpentSeconds int) models.TaskStatus {
	switch {
	case !correct:
		return models.StatusNotProficient
	case timeSpentSeconds < FastAnswerSeconds:
		return models.StatusProficient
	default:
		return models.StatusNeedsPractice
	}
}

// IntegrityScore applies a linear 10-point penalty per tab switch, floored at 0.
func IntegrityScore(tabSwitches int) int {
	return max(0, 100-tabSwitchPenalty*tabSwitches)
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampPercentile(p int) int {
	return min(99, max(0, p))
}
