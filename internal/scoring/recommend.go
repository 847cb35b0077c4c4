package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

// Recommender produces study suggestions for a scored attempt.
type Recommender interface {
	Recommend(skills []models.SkillResult) []string
}

var cannedRecommendations = []string{
	"Review API design patterns documentation",
	"Practice database query optimization",
	"Study security best practices",
}

// CannedRecommender returns the same fixed list for every attempt.
type CannedRecommender struct{}

func (CannedRecommender) Recommend([]models.SkillResult) []string {
	out := make([]string, len(cannedRecommendations))
	copy(out, cannedRecommendations)
	return out
}

// AdaptiveRecommender lists one suggestion per skill below the neutral level,
// weakest first, then pads with the canned list up to three entries.
type AdaptiveRecommender struct{}

func (AdaptiveRecommender) Recommend(skills []models.SkillResult) []string {
	weak := make([]models.SkillResult, 0, len(skills))
	for _, s := range skills {
		if s.ProficiencyLevel < NeutralLevel {
			weak = append(weak, s)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].ProficiencyLevel < weak[j].ProficiencyLevel
	})

	out := make([]string, 0, max(len(weak), len(cannedRecommendations)))
	for _, s := range weak {
		out = append(out, fmt.Sprintf("Revisit %s: %s", s.SkillName, missedTasks(s)))
	}
	for _, r := range cannedRecommendations {
		if len(out) >= len(cannedRecommendations) {
			break
		}
		out = append(out, r)
	}
	return out
}

func missedTasks(s models.SkillResult) string {
	var names []string
	for _, t := range s.TaskResults {
		if !t.Correct {
			names = append(names, t.TaskName)
		}
	}
	if len(names) == 0 {
		return "practice the core tasks"
	}
	return strings.Join(names, ", ")
}

// NewRecommender returns the adaptive recommender when enabled, the canned one otherwise.
func NewRecommender(adaptive bool) Recommender {
	if adaptive {
		return AdaptiveRecommender{}
	}
	return CannedRecommender{}
}
