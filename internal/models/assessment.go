package models

// AssessmentMode selects how many skills a candidate may pick.
type AssessmentMode string

const (
	ModeSkill   AssessmentMode = "skill"
	ModePersona AssessmentMode = "persona"
)

func (m AssessmentMode) IsValid() bool {
	return m == ModeSkill || m == ModePersona
}

// MaxSkills is the selection cap for the mode.
func (m AssessmentMode) MaxSkills() int {
	if m == ModePersona {
		return 5
	}
	return 1
}

// SessionState is the lifecycle position of an assessment session.
type SessionState string

const (
	StateConfiguring    SessionState = "configuring"
	StateConsentPending SessionState = "consent_pending"
	StateInProgress     SessionState = "in_progress"
	StateGrading        SessionState = "grading"
	StateComplete       SessionState = "complete"
)

// Selection is the candidate's configuration before the attempt starts.
type Selection struct {
	Mode     AssessmentMode `json:"mode"`
	RoleID   string         `json:"role_id"`
	SkillIDs []string       `json:"skill_ids"`
	Tasks    []SelectedTask `json:"tasks"`
}

// HasSkill reports whether skillID is currently selected.
func (s *Selection) HasSkill(skillID string) bool {
	for _, id := range s.SkillIDs {
		if id == skillID {
			return true
		}
	}
	return false
}

// HasTask reports whether taskID is currently selected under any skill.
func (s *Selection) HasTask(taskID string) bool {
	for _, t := range s.Tasks {
		if t.TaskID == taskID {
			return true
		}
	}
	return false
}

// SessionView is the candidate-facing snapshot of a session.
type SessionView struct {
	ID                string            `json:"id"`
	CandidateID       string            `json:"candidate_id,omitempty"`
	InviteID          string            `json:"invite_id,omitempty"`
	State             SessionState      `json:"state"`
	Selection         Selection         `json:"selection"`
	EstimatedMinutes  int               `json:"estimated_minutes"`
	CanStart          bool              `json:"can_start"`
	CameraActive      bool              `json:"camera_active"`
	ConsentGiven      bool              `json:"consent_given"`
	ProctoringEnabled bool              `json:"proctoring_enabled"`
	Questions         []QuestionView    `json:"questions,omitempty"`
	CurrentIndex      int               `json:"current_index"`
	Answers           map[string]Answer `json:"answers,omitempty"`
	TimeLimitSeconds  int               `json:"time_limit_seconds"`
	RemainingSeconds  int               `json:"remaining_seconds"`
	TabSwitches       int               `json:"tab_switches"`
	FaceIssues        int               `json:"face_detection_issues"`
}
