package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

func TestValidateTemplateRequest(t *testing.T) {
	v := New()

	valid := models.TemplateRequest{
		Name:     "Backend screening",
		RoleID:   "backend-developer",
		Mode:     models.ModeSkill,
		SkillIDs: []string{"api-design"},
		TaskIDs:  []string{"rest-endpoints"},
	}
	assert.NoError(t, v.Validate(&valid))

	invalid := valid
	invalid.Mode = "team"
	invalid.SkillIDs = []string{"a", "a"}
	err := v.Validate(&invalid)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := map[string]string{}
	for _, e := range verrs {
		fields[e.Field] = e.Rule
	}
	assert.Equal(t, "assessment_mode", fields["mode"])
	assert.Equal(t, "unique", fields["skill_ids"])
}

func TestValidateSelectedTaskComplexity(t *testing.T) {
	v := New()

	task := models.SelectedTask{SkillID: "s", SkillName: "S", TaskID: "t", TaskName: "T", Complexity: "XC"}
	err := v.Validate(&task)
	require.Error(t, err)

	task.Complexity = models.HighComplexity
	assert.NoError(t, v.Validate(&task))
}

func TestValidateProctoringRequest(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&models.ProctoringRequest{Type: models.ProctoringTabSwitch}))
	assert.Error(t, v.Validate(&models.ProctoringRequest{Type: "screenshot"}))
	assert.Error(t, v.Validate(&models.ProctoringRequest{}))
}

func TestValidateCandidateFiltersUsesFormNames(t *testing.T) {
	v := New()

	err := v.Validate(&models.CandidateFilters{Status: "archived"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "status", verrs[0].Field)
}
