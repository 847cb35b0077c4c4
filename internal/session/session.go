package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/scoring"
)

type State = models.SessionState

const (
	Configuring    = models.StateConfiguring
	ConsentPending = models.StateConsentPending
	InProgress     = models.StateInProgress
	Grading        = models.StateGrading
	Complete       = models.StateComplete
)

// Catalog is the subset of the content catalog a session needs for selection.
type Catalog interface {
	Role(id string) (models.Role, error)
	Skill(id string) (models.Skill, error)
	RoleOfSkill(skillID string) (string, error)
	SelectedTask(skillID, taskID string) (models.SelectedTask, error)
}

// Generator produces the question sequence when the attempt begins.
type Generator interface {
	Generate(tasks []models.SelectedTask) []models.Question
}

// Scorer reduces a finished attempt to a result.
type Scorer interface {
	Score(in scoring.Input) models.Result
}

// Session is one candidate attempt. All methods are safe for concurrent use;
// mutations are serialized by the session's own mutex.
type Session struct {
	mu sync.Mutex

	id          string
	candidateID string
	inviteID    string
	templateID  string

	clock     Clock
	catalog   Catalog
	generator Generator

	state     State
	selection models.Selection
	attempt   int

	cameraActive      bool
	consentGiven      bool
	proctoringEnabled bool

	questions    []models.Question
	questionIdx  map[string]int
	currentIndex int
	answers      map[string]models.Answer

	startedAt        time.Time
	timeLimitSeconds int
	tabSwitches      int
	faceIssues       int

	result      *models.Result
	finishedAt  time.Time
	completedAt time.Time
	touchedAt   time.Time
}

type Option func(*Session)

func WithCandidate(candidateID string) Option {
	return func(s *Session) { s.candidateID = candidateID }
}

// WithInvite links the session to the invite and template it was started from.
func WithInvite(inviteID, templateID string) Option {
	return func(s *Session) {
		s.inviteID = inviteID
		s.templateID = templateID
	}
}

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// New creates a session in the Configuring state.
func New(id string, mode models.AssessmentMode, catalog Catalog, generator Generator, opts ...Option) *Session {
	if !mode.IsValid() {
		mode = models.ModeSkill
	}
	s := &Session{
		id:        id,
		clock:     SystemClock{},
		catalog:   catalog,
		generator: generator,
		state:     Configuring,
		selection: models.Selection{Mode: mode},
		answers:   make(map[string]models.Answer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.touchedAt = s.clock.Now()
	return s
}

func (s *Session) ID() string          { return s.id }
func (s *Session) CandidateID() string { return s.candidateID }
func (s *Session) InviteID() string    { return s.inviteID }
func (s *Session) TemplateID() string  { return s.templateID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySelection(s.selection)
}

// TouchedAt is the time of the last mutation.
func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

func (s *Session) touch() {
	s.touchedAt = s.clock.Now()
}

func (s *Session) require(op string, allowed ...State) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return invalidState(op, s.state, allowed...)
}

// ===== Configuring =====

// SelectRole switches the role and clears skills and tasks.
func (s *Session) SelectRole(roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("select role", Configuring); err != nil {
		return err
	}
	if _, err := s.catalog.Role(roleID); err != nil {
		return err
	}
	s.selection.RoleID = roleID
	s.selection.SkillIDs = nil
	s.selection.Tasks = nil
	s.touch()
	return nil
}

// ToggleSkill selects or deselects a skill. Deselecting drops the skill's tasks.
func (s *Session) ToggleSkill(skillID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("toggle skill", Configuring); err != nil {
		return err
	}
	if err := s.checkSkillInRole(skillID); err != nil {
		return err
	}

	if s.selection.HasSkill(skillID) {
		s.selection.SkillIDs = removeString(s.selection.SkillIDs, skillID)
		s.selection.Tasks = filterTasks(s.selection.Tasks, func(t models.SelectedTask) bool {
			return t.SkillID != skillID
		})
	} else {
		if len(s.selection.SkillIDs) >= s.selection.Mode.MaxSkills() {
			return ErrSkillLimitReached
		}
		s.selection.SkillIDs = append(s.selection.SkillIDs, skillID)
	}
	s.touch()
	return nil
}

// ToggleTask selects or deselects one task of a selected skill.
func (s *Session) ToggleTask(skillID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("toggle task", Configuring); err != nil {
		return err
	}
	if !s.selection.HasSkill(skillID) {
		return ErrSkillNotSelected
	}
	st, err := s.catalog.SelectedTask(skillID, taskID)
	if err != nil {
		return ErrTaskNotInSkill
	}

	if s.selection.HasTask(taskID) {
		s.selection.Tasks = filterTasks(s.selection.Tasks, func(t models.SelectedTask) bool {
			return t.TaskID != taskID
		})
	} else {
		s.selection.Tasks = append(s.selection.Tasks, st)
	}
	s.touch()
	return nil
}

// AddTask selects a task, failing if it is already selected.
func (s *Session) AddTask(skillID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("add task", Configuring); err != nil {
		return err
	}
	if !s.selection.HasSkill(skillID) {
		return ErrSkillNotSelected
	}
	if s.selection.HasTask(taskID) {
		return ErrDuplicateTask
	}
	st, err := s.catalog.SelectedTask(skillID, taskID)
	if err != nil {
		return ErrTaskNotInSkill
	}
	s.selection.Tasks = append(s.selection.Tasks, st)
	s.touch()
	return nil
}

// SelectAllTasks adds the skill's missing tasks in catalog order.
func (s *Session) SelectAllTasks(skillID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("select all tasks", Configuring); err != nil {
		return err
	}
	if !s.selection.HasSkill(skillID) {
		return ErrSkillNotSelected
	}
	skill, err := s.catalog.Skill(skillID)
	if err != nil {
		return err
	}
	for _, task := range skill.Tasks {
		if s.selection.HasTask(task.ID) {
			continue
		}
		s.selection.Tasks = append(s.selection.Tasks, models.SelectedTask{
			SkillID:    skill.ID,
			SkillName:  skill.Name,
			TaskID:     task.ID,
			TaskName:   task.Name,
			Complexity: task.Complexity,
		})
	}
	s.touch()
	return nil
}

// DeselectAllTasks drops every task of the skill; the skill stays selected.
func (s *Session) DeselectAllTasks(skillID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("deselect all tasks", Configuring); err != nil {
		return err
	}
	s.selection.Tasks = filterTasks(s.selection.Tasks, func(t models.SelectedTask) bool {
		return t.SkillID != skillID
	})
	s.touch()
	return nil
}

func (s *Session) checkSkillInRole(skillID string) error {
	if s.selection.RoleID == "" {
		return ErrRoleNotSelected
	}
	roleID, err := s.catalog.RoleOfSkill(skillID)
	if err != nil {
		return err
	}
	if roleID != s.selection.RoleID {
		return ErrSkillNotInRole
	}
	return nil
}

func (s *Session) EstimatedMinutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EstimatedMinutes(s.selection.Mode, len(s.selection.SkillIDs))
}

func (s *Session) CanStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CanStart(s.selection)
}

// ===== Consent =====

// RequestStart moves to ConsentPending and freezes the time limit.
func (s *Session) RequestStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("request start", Configuring); err != nil {
		return err
	}
	if !CanStart(s.selection) {
		return ErrCannotStart
	}
	s.timeLimitSeconds = EstimatedMinutes(s.selection.Mode, len(s.selection.SkillIDs)) * 60
	s.cameraActive = false
	s.consentGiven = false
	s.state = ConsentPending
	s.touch()
	return nil
}

// Back returns from ConsentPending to Configuring, keeping the selection.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("go back", ConsentPending); err != nil {
		return err
	}
	s.state = Configuring
	s.timeLimitSeconds = 0
	s.touch()
	return nil
}

func (s *Session) SetCameraActive(active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("set camera", ConsentPending); err != nil {
		return err
	}
	s.cameraActive = active
	s.touch()
	return nil
}

func (s *Session) AffirmConsent() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("affirm consent", ConsentPending); err != nil {
		return err
	}
	s.consentGiven = true
	s.proctoringEnabled = true
	s.touch()
	return nil
}

// Begin generates the questions and starts the clock.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("begin", ConsentPending); err != nil {
		return err
	}
	if !s.cameraActive {
		return ErrCameraInactive
	}
	if !s.consentGiven {
		return ErrConsentRequired
	}

	questions := s.generator.Generate(copyTasks(s.selection.Tasks))
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	s.questions = questions
	s.questionIdx = make(map[string]int, len(questions))
	for i, q := range questions {
		s.questionIdx[q.ID] = i
	}
	s.currentIndex = 0
	s.answers = make(map[string]models.Answer, len(questions))
	s.startedAt = s.clock.Now()
	s.state = InProgress
	s.attempt++
	s.touch()
	return nil
}

// ===== InProgress =====

// SubmitResult tells the caller what a submission did to the session.
type SubmitResult struct {
	CurrentIndex int  `json:"current_index"`
	Finished     bool `json:"finished"`
}

// SubmitAnswer records the answer for the current question and advances to
// the next one; answering the last one finishes the attempt. Questions behind
// or ahead of the cursor are rejected with ErrNotCurrentQuestion. A submission
// after the deadline finishes the attempt and returns ErrTimeExpired without
// recording.
func (s *Session) SubmitAnswer(questionID, optionID string, timeSpentSeconds int) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("submit answer", InProgress); err != nil {
		return SubmitResult{}, err
	}
	if s.expiredLocked(s.clock.Now()) {
		s.finishLocked()
		return SubmitResult{CurrentIndex: s.currentIndex, Finished: true}, ErrTimeExpired
	}
	idx, ok := s.questionIdx[questionID]
	if !ok {
		return SubmitResult{}, &NotFoundError{Kind: "question", ID: questionID}
	}
	if idx != s.currentIndex {
		return SubmitResult{CurrentIndex: s.currentIndex}, fmt.Errorf("%w: %s is #%d, current is #%d",
			ErrNotCurrentQuestion, questionID, idx+1, s.currentIndex+1)
	}

	s.answers[questionID] = models.Answer{Answer: optionID, TimeSpentSeconds: max(0, timeSpentSeconds)}
	s.touch()

	if s.isLastLocked() {
		s.finishLocked()
		return SubmitResult{CurrentIndex: s.currentIndex, Finished: true}, nil
	}
	s.currentIndex++
	return SubmitResult{CurrentIndex: s.currentIndex}, nil
}

// Skip advances past the current question. Skipping the last question finishes the attempt.
func (s *Session) Skip() (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("skip", InProgress); err != nil {
		return SubmitResult{}, err
	}
	s.touch()
	if s.isLastLocked() {
		s.finishLocked()
		return SubmitResult{CurrentIndex: s.currentIndex, Finished: true}, nil
	}
	s.currentIndex++
	return SubmitResult{CurrentIndex: s.currentIndex}, nil
}

// Next advances to the following question; at the last question it does nothing.
func (s *Session) Next() (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("next", InProgress); err != nil {
		return SubmitResult{}, err
	}
	if !s.isLastLocked() {
		s.currentIndex++
		s.touch()
	}
	return SubmitResult{CurrentIndex: s.currentIndex}, nil
}

// RecordTabSwitch counts one tab switch and returns the offset in seconds from the start.
func (s *Session) RecordTabSwitch() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("record tab switch", InProgress); err != nil {
		return 0, err
	}
	s.tabSwitches++
	s.touch()
	return s.offsetLocked(), nil
}

// RecordFaceIssue counts one face-detection issue reported by the capture client.
func (s *Session) RecordFaceIssue() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("record face issue", InProgress); err != nil {
		return 0, err
	}
	s.faceIssues++
	s.touch()
	return s.offsetLocked(), nil
}

// Tick recomputes the remaining time from the start timestamp and finishes
// the attempt when it reaches zero. It reports whether this call finished it.
func (s *Session) Tick(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InProgress {
		return false
	}
	if s.expiredLocked(now) {
		return s.finishLocked()
	}
	return false
}

// Remaining is the number of whole seconds left, never negative.
func (s *Session) Remaining(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked(now)
}

// Finish moves InProgress to Grading. Only the first caller wins; later
// calls, including racing timer expiries, return false.
func (s *Session) Finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishLocked()
}

func (s *Session) finishLocked() bool {
	if s.state != InProgress {
		return false
	}
	s.state = Grading
	s.finishedAt = s.clock.Now()
	s.touch()
	return true
}

// ===== Grading / Complete =====

// Attempt numbers the attempts begun on this session, starting at 1. It is 0
// until the first Begin.
func (s *Session) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// Grade scores the given attempt and moves it to Complete. Only the call that
// performs the Grading to Complete transition succeeds: grading again fails
// with InvalidStateError, and grading an attempt that has since been reset
// fails with ErrStaleAttempt. Use Result for the stored outcome.
func (s *Session) Grade(attempt int, scorer Scorer) (models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt != s.attempt {
		return models.Result{}, fmt.Errorf("%w: attempt %d, current %d", ErrStaleAttempt, attempt, s.attempt)
	}
	if err := s.require("grade", Grading); err != nil {
		return models.Result{}, err
	}

	answers := make(map[string]models.Answer, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	res := scorer.Score(scoring.Input{
		Questions:           s.questions,
		Answers:             answers,
		TabSwitches:         s.tabSwitches,
		FaceDetectionIssues: s.faceIssues,
	})
	s.result = &res
	s.state = Complete
	s.completedAt = s.clock.Now()
	s.touch()
	return res, nil
}

// Result returns the graded result once the session is Complete.
func (s *Session) Result() (models.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return models.Result{}, false
	}
	return *s.result, true
}

// CompletedAt is zero until the session is graded.
func (s *Session) CompletedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedAt
}

// Reset discards the attempt without scoring and returns to Configuring
// with the selection cleared. The assessment mode is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Configuring
	s.selection = models.Selection{Mode: s.selection.Mode}
	s.cameraActive = false
	s.consentGiven = false
	s.proctoringEnabled = false
	s.questions = nil
	s.questionIdx = nil
	s.currentIndex = 0
	s.answers = make(map[string]models.Answer)
	s.startedAt = time.Time{}
	s.timeLimitSeconds = 0
	s.tabSwitches = 0
	s.faceIssues = 0
	s.result = nil
	s.finishedAt = time.Time{}
	s.completedAt = time.Time{}
	s.touch()
}

// ===== Snapshots =====

// AnswerCount is the number of distinct questions answered so far.
func (s *Session) AnswerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Questions returns a copy of the generated sequence, answer keys included.
func (s *Session) Questions() []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// View is the candidate-facing snapshot at now. Answer keys are never included.
func (s *Session) View(now time.Time) models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := models.SessionView{
		ID:                s.id,
		CandidateID:       s.candidateID,
		InviteID:          s.inviteID,
		State:             s.state,
		Selection:         copySelection(s.selection),
		EstimatedMinutes:  EstimatedMinutes(s.selection.Mode, len(s.selection.SkillIDs)),
		CanStart:          CanStart(s.selection),
		CameraActive:      s.cameraActive,
		ConsentGiven:      s.consentGiven,
		ProctoringEnabled: s.proctoringEnabled,
		CurrentIndex:      s.currentIndex,
		TimeLimitSeconds:  s.timeLimitSeconds,
		TabSwitches:       s.tabSwitches,
		FaceIssues:        s.faceIssues,
	}
	if len(s.questions) > 0 {
		v.Questions = make([]models.QuestionView, len(s.questions))
		for i, q := range s.questions {
			v.Questions[i] = q.View()
		}
		v.Answers = make(map[string]models.Answer, len(s.answers))
		for k, a := range s.answers {
			v.Answers[k] = a
		}
	}
	if s.state == InProgress {
		v.RemainingSeconds = s.remainingLocked(now)
	}
	return v
}

func (s *Session) isLastLocked() bool {
	return s.currentIndex >= len(s.questions)-1
}

func (s *Session) remainingLocked(now time.Time) int {
	if s.startedAt.IsZero() {
		return s.timeLimitSeconds
	}
	elapsed := int(now.Sub(s.startedAt) / time.Second)
	return max(0, s.timeLimitSeconds-elapsed)
}

func (s *Session) expiredLocked(now time.Time) bool {
	return s.remainingLocked(now) == 0
}

func (s *Session) offsetLocked() int {
	return int(s.clock.Now().Sub(s.startedAt) / time.Second)
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func filterTasks(tasks []models.SelectedTask, keep func(models.SelectedTask) bool) []models.SelectedTask {
	var out []models.SelectedTask
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func copyTasks(tasks []models.SelectedTask) []models.SelectedTask {
	out := make([]models.SelectedTask, len(tasks))
	copy(out, tasks)
	return out
}

func copySelection(sel models.Selection) models.Selection {
	out := models.Selection{Mode: sel.Mode, RoleID: sel.RoleID}
	if sel.SkillIDs != nil {
		out.SkillIDs = append([]string(nil), sel.SkillIDs...)
	}
	if sel.Tasks != nil {
		out.Tasks = copyTasks(sel.Tasks)
	}
	return out
}
