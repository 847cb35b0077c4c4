package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// AssessmentTemplate is an admin-defined, reusable selection.
type AssessmentTemplate struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string         `json:"name" gorm:"type:varchar(200);not null" validate:"required,min=3,max=200"`
	Description string         `json:"description" gorm:"type:text" validate:"max=1000"`
	RoleID      string         `json:"role_id" gorm:"type:varchar(100);not null;index" validate:"required"`
	Mode        AssessmentMode `json:"mode" gorm:"type:varchar(20);not null" validate:"required,assessment_mode"`
	SkillIDs    datatypes.JSON `json:"skill_ids" gorm:"type:jsonb"` // []string
	TaskIDs     datatypes.JSON `json:"task_ids" gorm:"type:jsonb"`  // []string
	CreatedBy   string         `json:"created_by" gorm:"type:varchar(255)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (AssessmentTemplate) TableName() string {
	return "assessment_templates"
}

// Skills decodes the stored skill ids. Malformed data yields nil.
func (t *AssessmentTemplate) Skills() []string {
	return decodeIDs(t.SkillIDs)
}

// Tasks decodes the stored task ids. Malformed data yields nil.
func (t *AssessmentTemplate) Tasks() []string {
	return decodeIDs(t.TaskIDs)
}

func (t *AssessmentTemplate) SetSkills(ids []string) {
	t.SkillIDs = encodeIDs(ids)
}

func (t *AssessmentTemplate) SetTasks(ids []string) {
	t.TaskIDs = encodeIDs(ids)
}

func decodeIDs(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

func encodeIDs(ids []string) datatypes.JSON {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	return datatypes.JSON(b)
}

type TemplateRequest struct {
	Name        string         `json:"name" validate:"required,min=3,max=200"`
	Description string         `json:"description" validate:"max=1000"`
	RoleID      string         `json:"role_id" validate:"required"`
	Mode        AssessmentMode `json:"mode" validate:"required,assessment_mode"`
	SkillIDs    []string       `json:"skill_ids" validate:"required,min=1,max=5,unique,dive,required"`
	TaskIDs     []string       `json:"task_ids" validate:"required,min=1,unique,dive,required"`
}

type TemplateFilters struct {
	RoleID string         `form:"role_id"`
	Mode   AssessmentMode `form:"mode"`
	Search string         `form:"search"`
	Limit  int            `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset int            `form:"offset" validate:"omitempty,min=0"`
}
