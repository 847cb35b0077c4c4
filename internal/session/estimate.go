package session

import "github.com/SAP-F-2025/proficiency-service/internal/models"

const (
	baseMinutes       = 10
	perSkillMinutes   = 5
	maxPersonaMinutes = 30
)

// EstimatedMinutes is the time limit for a selection of skillCount skills.
// Single-skill mode is always 10 minutes; persona mode adds 5 minutes per
// extra skill, capped at 30.
func EstimatedMinutes(mode models.AssessmentMode, skillCount int) int {
	if mode != models.ModePersona {
		return baseMinutes
	}
	return min(baseMinutes+perSkillMinutes*max(0, skillCount-1), maxPersonaMinutes)
}

// CanStart reports whether at least one skill is selected and every selected
// skill has at least one selected task.
func CanStart(sel models.Selection) bool {
	if len(sel.SkillIDs) == 0 {
		return false
	}
	covered := make(map[string]bool, len(sel.SkillIDs))
	for _, t := range sel.Tasks {
		covered[t.SkillID] = true
	}
	for _, id := range sel.SkillIDs {
		if !covered[id] {
			return false
		}
	}
	return true
}
