package models

type CreateSessionRequest struct {
	Mode     AssessmentMode `json:"mode" validate:"required,assessment_mode"`
	RoleID   string         `json:"role_id" validate:"required"`
	SkillIDs []string       `json:"skill_ids" validate:"omitempty,max=5,unique,dive,required"`
	Tasks    []SelectedTask `json:"tasks" validate:"omitempty,dive"`
}

type SelectRoleRequest struct {
	RoleID string `json:"role_id" validate:"required"`
}

type ConsentRequest struct {
	CameraActive bool `json:"camera_active"`
	Consent      bool `json:"consent"`
}

type SubmitAnswerRequest struct {
	QuestionID       string `json:"question_id" validate:"required"`
	Answer           string `json:"answer" validate:"required"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"min=0"`
}

// EstimateResponse carries the preview time limit for the current selection.
type EstimateResponse struct {
	Minutes  int  `json:"minutes"`
	CanStart bool `json:"can_start"`
}
