package models

// TaskStatus is the per-question verdict in a report.
type TaskStatus string

const (
	StatusProficient    TaskStatus = "proficient"
	StatusNeedsPractice TaskStatus = "needs-practice"
	StatusNotProficient TaskStatus = "not-proficient"
)

type TaskResult struct {
	TaskID           string     `json:"task_id"`
	TaskName         string     `json:"task_name"`
	Complexity       Complexity `json:"complexity"`
	Correct          bool       `json:"correct"`
	TimeTakenSeconds int        `json:"time_taken"`
	Status           TaskStatus `json:"status"`
}

type SkillResult struct {
	SkillID          string       `json:"skill_id"`
	SkillName        string       `json:"skill_name"`
	ProficiencyLevel int          `json:"proficiency_level"`
	IsStrength       bool         `json:"is_strength"`
	TaskResults      []TaskResult `json:"task_results"`
	Strengths        []string     `json:"strengths"`
	Weaknesses       []string     `json:"weaknesses"`
}

// Result is the read-only outcome of a graded session.
type Result struct {
	OverallScore        int           `json:"overall_score"`
	ProficiencyLevel    int           `json:"proficiency_level"`
	Percentile          int           `json:"percentile"`
	TimeTakenSeconds    int           `json:"time_taken"`
	QuestionsAnswered   int           `json:"questions_answered"`
	TotalQuestions      int           `json:"total_questions"`
	Accuracy            int           `json:"accuracy"`
	IntegrityScore      int           `json:"integrity_score"`
	SkillResults        []SkillResult `json:"skill_results"`
	Recommendations     []string      `json:"recommendations"`
	TabSwitches         int           `json:"tab_switches"`
	FaceDetectionIssues int           `json:"face_detection_issues"`
}
