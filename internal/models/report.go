package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// AssessmentReport is the persisted form of a Result.
type AssessmentReport struct {
	ID                  string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID           string         `json:"session_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	CandidateID         string         `json:"candidate_id" gorm:"type:varchar(255);index"`
	InviteID            *string        `json:"invite_id,omitempty" gorm:"type:varchar(36);index"`
	TemplateID          *string        `json:"template_id,omitempty" gorm:"type:varchar(36);index"`
	RoleID              string         `json:"role_id" gorm:"type:varchar(100)"`
	Mode                AssessmentMode `json:"mode" gorm:"type:varchar(20)"`
	OverallScore        int            `json:"overall_score"`
	ProficiencyLevel    int            `json:"proficiency_level"`
	Percentile          int            `json:"percentile"`
	TimeTakenSeconds    int            `json:"time_taken"`
	QuestionsAnswered   int            `json:"questions_answered"`
	TotalQuestions      int            `json:"total_questions"`
	Accuracy            int            `json:"accuracy"`
	IntegrityScore      int            `json:"integrity_score"`
	TabSwitches         int            `json:"tab_switches"`
	FaceDetectionIssues int            `json:"face_detection_issues"`
	SkillResults        datatypes.JSON `json:"skill_results" gorm:"type:jsonb"`    // []SkillResult
	Recommendations     datatypes.JSON `json:"recommendations" gorm:"type:jsonb"` // []string
	CompletedAt         time.Time      `json:"completed_at"`
	CreatedAt           time.Time      `json:"created_at"`
}

func (AssessmentReport) TableName() string {
	return "assessment_reports"
}

// Result rebuilds the scoring outcome stored in the report.
func (r *AssessmentReport) Result() (Result, error) {
	res := Result{
		OverallScore:        r.OverallScore,
		ProficiencyLevel:    r.ProficiencyLevel,
		Percentile:          r.Percentile,
		TimeTakenSeconds:    r.TimeTakenSeconds,
		QuestionsAnswered:   r.QuestionsAnswered,
		TotalQuestions:      r.TotalQuestions,
		Accuracy:            r.Accuracy,
		IntegrityScore:      r.IntegrityScore,
		TabSwitches:         r.TabSwitches,
		FaceDetectionIssues: r.FaceDetectionIssues,
	}
	if len(r.SkillResults) > 0 {
		if err := json.Unmarshal(r.SkillResults, &res.SkillResults); err != nil {
			return Result{}, fmt.Errorf("failed to decode skill results: %w", err)
		}
	}
	if len(r.Recommendations) > 0 {
		if err := json.Unmarshal(r.Recommendations, &res.Recommendations); err != nil {
			return Result{}, fmt.Errorf("failed to decode recommendations: %w", err)
		}
	}
	return res, nil
}

// NewAssessmentReport copies a result into a report row.
func NewAssessmentReport(id, sessionID, candidateID string, sel Selection, res Result, completedAt time.Time) (*AssessmentReport, error) {
	skills, err := json.Marshal(res.SkillResults)
	if err != nil {
		return nil, fmt.Errorf("failed to encode skill results: %w", err)
	}
	recs, err := json.Marshal(res.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendations: %w", err)
	}
	return &AssessmentReport{
		ID:                  id,
		SessionID:           sessionID,
		CandidateID:         candidateID,
		RoleID:              sel.RoleID,
		Mode:                sel.Mode,
		OverallScore:        res.OverallScore,
		ProficiencyLevel:    res.ProficiencyLevel,
		Percentile:          res.Percentile,
		TimeTakenSeconds:    res.TimeTakenSeconds,
		QuestionsAnswered:   res.QuestionsAnswered,
		TotalQuestions:      res.TotalQuestions,
		Accuracy:            res.Accuracy,
		IntegrityScore:      res.IntegrityScore,
		TabSwitches:         res.TabSwitches,
		FaceDetectionIssues: res.FaceDetectionIssues,
		SkillResults:        datatypes.JSON(skills),
		Recommendations:     datatypes.JSON(recs),
		CompletedAt:         completedAt,
	}, nil
}

// CandidateReport is the admin view of one invited candidate's outcome.
type CandidateReport struct {
	Invite   Invite             `json:"invite"`
	Template AssessmentTemplate `json:"template"`
	Result   *Result            `json:"result,omitempty"`
}
