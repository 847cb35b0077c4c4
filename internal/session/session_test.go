package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/proficiency-service/internal/catalog"
	apperrors "github.com/SAP-F-2025/proficiency-service/internal/errors"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/questiongen"
	"github.com/SAP-F-2025/proficiency-service/internal/scoring"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type countingScorer struct {
	mu    sync.Mutex
	calls int
	inner *scoring.Engine
}

func (c *countingScorer) Score(in scoring.Input) models.Result {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Score(in)
}

func newTestSession(t *testing.T, mode models.AssessmentMode) (*Session, *ManualClock) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	bank, err := questiongen.DefaultBank()
	require.NoError(t, err)

	clock := NewManualClock(epoch)
	return New("s-1", mode, cat, questiongen.New(bank), WithClock(clock), WithCandidate("cand-1")), clock
}

// startedSession selects api-design with three tasks and begins the attempt.
func startedSession(t *testing.T) (*Session, *ManualClock) {
	t.Helper()
	s, clock := newTestSession(t, models.ModeSkill)
	require.NoError(t, s.SelectRole("backend-dev"))
	require.NoError(t, s.ToggleSkill("api-design"))
	require.NoError(t, s.ToggleTask("api-design", "rest-endpoints"))
	require.NoError(t, s.ToggleTask("api-design", "api-versioning"))
	require.NoError(t, s.ToggleTask("api-design", "graphql-schema"))
	require.NoError(t, s.RequestStart())
	require.NoError(t, s.SetCameraActive(true))
	require.NoError(t, s.AffirmConsent())
	require.NoError(t, s.Begin())
	return s, clock
}

func TestEstimatedMinutes(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5} {
		assert.Equal(t, 10, EstimatedMinutes(models.ModeSkill, n))
	}
	assert.Equal(t, 10, EstimatedMinutes(models.ModePersona, 1))
	assert.Equal(t, 15, EstimatedMinutes(models.ModePersona, 2))
	assert.Equal(t, 30, EstimatedMinutes(models.ModePersona, 5))
	assert.Equal(t, 30, EstimatedMinutes(models.ModePersona, 6))
}

func TestCanStart(t *testing.T) {
	assert.False(t, CanStart(models.Selection{}))
	assert.False(t, CanStart(models.Selection{
		SkillIDs: []string{"S1", "S2"},
		Tasks:    []models.SelectedTask{{SkillID: "S1", TaskID: "t"}},
	}))
	assert.True(t, CanStart(models.Selection{
		SkillIDs: []string{"S1", "S2"},
		Tasks:    []models.SelectedTask{{SkillID: "S1", TaskID: "t"}, {SkillID: "S2", TaskID: "u"}},
	}))
}

func TestSelectionRules(t *testing.T) {
	s, _ := newTestSession(t, models.ModeSkill)

	assert.ErrorIs(t, s.ToggleSkill("api-design"), ErrRoleNotSelected)
	require.NoError(t, s.SelectRole("backend-dev"))
	require.NoError(t, s.ToggleSkill("api-design"))
	assert.ErrorIs(t, s.ToggleSkill("database"), ErrSkillLimitReached)
	assert.ErrorIs(t, s.ToggleSkill("containers"), ErrSkillNotInRole)

	assert.ErrorIs(t, s.ToggleTask("database", "sql-queries"), ErrSkillNotSelected)
	assert.ErrorIs(t, s.ToggleTask("api-design", "sql-queries"), ErrTaskNotInSkill)

	require.NoError(t, s.ToggleTask("api-design", "api-security"))
	assert.ErrorIs(t, s.AddTask("api-design", "api-security"), ErrDuplicateTask)
	require.NoError(t, s.SelectAllTasks("api-design"))

	sel := s.Selection()
	require.Len(t, sel.Tasks, 4)
	// Existing task first, missing ones appended in catalog order.
	assert.Equal(t, "api-security", sel.Tasks[0].TaskID)
	assert.Equal(t, "rest-endpoints", sel.Tasks[1].TaskID)
	assert.Equal(t, "graphql-schema", sel.Tasks[3].TaskID)

	// Toggling a task off then deselecting all.
	require.NoError(t, s.ToggleTask("api-design", "api-security"))
	assert.Len(t, s.Selection().Tasks, 3)
	require.NoError(t, s.DeselectAllTasks("api-design"))
	assert.Empty(t, s.Selection().Tasks)
	assert.False(t, s.CanStart())

	// Deselecting the skill drops its tasks.
	require.NoError(t, s.SelectAllTasks("api-design"))
	require.NoError(t, s.ToggleSkill("api-design"))
	assert.Empty(t, s.Selection().SkillIDs)
	assert.Empty(t, s.Selection().Tasks)

	// A new role clears everything.
	require.NoError(t, s.ToggleSkill("database"))
	require.NoError(t, s.SelectRole("qa-engineer"))
	assert.Empty(t, s.Selection().SkillIDs)

	_, ok := apperrors.AsNotFound(s.SelectRole("nope"))
	assert.True(t, ok)
}

func TestPersonaModeAllowsFiveSkills(t *testing.T) {
	s, _ := newTestSession(t, models.ModePersona)
	require.NoError(t, s.SelectRole("backend-dev"))
	for _, id := range []string{"api-design", "database", "microservices", "testing", "performance"} {
		require.NoError(t, s.ToggleSkill(id))
	}
	assert.ErrorIs(t, s.ToggleSkill("security"), ErrSkillLimitReached)
	assert.Equal(t, 30, s.EstimatedMinutes())
}

func TestConsentFlow(t *testing.T) {
	s, _ := newTestSession(t, models.ModePersona)
	require.NoError(t, s.SelectRole("backend-dev"))
	require.NoError(t, s.ToggleSkill("api-design"))
	require.NoError(t, s.ToggleSkill("database"))
	require.NoError(t, s.ToggleTask("api-design", "rest-endpoints"))

	assert.ErrorIs(t, s.RequestStart(), ErrCannotStart)
	assert.Equal(t, Configuring, s.State())

	require.NoError(t, s.ToggleTask("database", "sql-queries"))
	require.NoError(t, s.RequestStart())
	assert.Equal(t, ConsentPending, s.State())

	_, ok := apperrors.AsInvalidState(s.ToggleSkill("testing"))
	assert.True(t, ok)

	assert.ErrorIs(t, s.Begin(), ErrCameraInactive)
	require.NoError(t, s.SetCameraActive(true))
	assert.ErrorIs(t, s.Begin(), ErrConsentRequired)

	require.NoError(t, s.Back())
	assert.Equal(t, Configuring, s.State())
	assert.Len(t, s.Selection().Tasks, 2)

	require.NoError(t, s.RequestStart())
	require.NoError(t, s.SetCameraActive(true))
	require.NoError(t, s.AffirmConsent())
	require.NoError(t, s.Begin())

	v := s.View(epoch)
	assert.Equal(t, InProgress, v.State)
	assert.True(t, v.ProctoringEnabled)
	assert.Equal(t, 15*60, v.TimeLimitSeconds)
	assert.Equal(t, 15*60, v.RemainingSeconds)
	require.Len(t, v.Questions, 2)
	assert.Equal(t, "q-1", v.Questions[0].ID)
}

func TestSubmitAdvancesAndLastFinishes(t *testing.T) {
	s, _ := startedSession(t)

	res, err := s.SubmitAnswer("q-1", "B", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentIndex)
	assert.False(t, res.Finished)

	res, err = s.Skip()
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentIndex)

	res, err = s.SubmitAnswer("q-3", "B", 12)
	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Equal(t, Grading, s.State())
	assert.Equal(t, 2, s.AnswerCount())
}

func TestSubmitOnlyCurrentQuestion(t *testing.T) {
	s, _ := startedSession(t)
	_, err := s.SubmitAnswer("q-1", "B", 5)
	require.NoError(t, err)

	res, err := s.SubmitAnswer("q-1", "C", 7)
	assert.ErrorIs(t, err, ErrNotCurrentQuestion, "already passed")
	assert.Equal(t, 1, res.CurrentIndex)

	res, err = s.SubmitAnswer("q-3", "A", 2)
	assert.ErrorIs(t, err, ErrNotCurrentQuestion, "not reached yet")
	assert.Equal(t, 1, res.CurrentIndex)
	assert.Equal(t, InProgress, s.State())

	v := s.View(epoch)
	assert.Equal(t, "B", v.Answers["q-1"].Answer)
	assert.Equal(t, 5, v.Answers["q-1"].TimeSpentSeconds)
	assert.NotContains(t, v.Answers, "q-3")
	assert.Equal(t, 1, s.AnswerCount())
}

func TestSubmitUnknownQuestion(t *testing.T) {
	s, _ := startedSession(t)
	_, err := s.SubmitAnswer("q-99", "A", 1)
	nf, ok := apperrors.AsNotFound(err)
	require.True(t, ok)
	assert.Equal(t, "question", nf.Kind)
}

func TestSubmitAfterCompleteIsInvalidState(t *testing.T) {
	s, _ := startedSession(t)
	require.True(t, s.Finish())
	_, err := s.Grade(s.Attempt(), scoring.NewEngine(nil, nil))
	require.NoError(t, err)

	_, err = s.SubmitAnswer("q-1", "A", 1)
	ise, ok := apperrors.AsInvalidState(err)
	require.True(t, ok)
	assert.Equal(t, string(Complete), ise.Current)
	assert.Equal(t, []string{string(InProgress)}, ise.Required)
}

func TestNextIsNoopAtEnd(t *testing.T) {
	s, _ := startedSession(t)
	_, _ = s.Next()
	res, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentIndex)

	res, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentIndex)
	assert.Equal(t, InProgress, s.State())

	res, err = s.Skip()
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentIndex)
	assert.True(t, res.Finished)
	assert.Equal(t, Grading, s.State())
}

func TestTimerExpiryPreservesAnswers(t *testing.T) {
	s, clock := startedSession(t)
	_, err := s.SubmitAnswer("q-1", "B", 4)
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	assert.False(t, s.Tick(clock.Now()))
	assert.Equal(t, 60, s.Remaining(clock.Now()))

	clock.Advance(61 * time.Second)
	assert.Equal(t, 0, s.Remaining(clock.Now()))
	assert.True(t, s.Tick(clock.Now()))
	assert.False(t, s.Tick(clock.Now()))
	assert.Equal(t, Grading, s.State())

	result, err := s.Grade(s.Attempt(), scoring.NewEngine(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, result.QuestionsAnswered)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, "B", s.View(clock.Now()).Answers["q-1"].Answer)
}

func TestSubmitAfterDeadlineFinishes(t *testing.T) {
	s, clock := startedSession(t)
	_, err := s.SubmitAnswer("q-1", "B", 4)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	res, err := s.SubmitAnswer("q-2", "A", 3)
	assert.ErrorIs(t, err, ErrTimeExpired)
	assert.True(t, res.Finished)
	assert.Equal(t, Grading, s.State())
	assert.Equal(t, 1, s.AnswerCount())
}

func TestGradingHappensOnce(t *testing.T) {
	s, _ := startedSession(t)
	scorer := &countingScorer{inner: scoring.NewEngine(scoring.NewNoisyPercentile(1), nil)}
	attempt := s.Attempt()
	assert.Equal(t, 1, attempt)

	_, err := s.Grade(attempt, scorer)
	_, ok := apperrors.AsInvalidState(err)
	assert.True(t, ok, "grading requires Grading state")

	require.True(t, s.Finish())
	assert.False(t, s.Finish())

	first, err := s.Grade(attempt, scorer)
	require.NoError(t, err)
	_, err = s.Grade(attempt, scorer)
	ise, ok := apperrors.AsInvalidState(err)
	require.True(t, ok, "a second grade must not succeed")
	assert.Equal(t, string(Complete), ise.Current)

	stored, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, first, stored)
	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, Complete, s.State())
}

func TestGradeRejectsSupersededAttempt(t *testing.T) {
	s, _ := startedSession(t)
	scorer := &countingScorer{inner: scoring.NewEngine(nil, nil)}
	require.True(t, s.Finish())
	stale := s.Attempt()

	s.Reset()
	require.NoError(t, s.SelectRole("backend-dev"))
	require.NoError(t, s.ToggleSkill("api-design"))
	require.NoError(t, s.ToggleTask("api-design", "rest-endpoints"))
	require.NoError(t, s.RequestStart())
	require.NoError(t, s.SetCameraActive(true))
	require.NoError(t, s.AffirmConsent())
	require.NoError(t, s.Begin())
	require.True(t, s.Finish())
	assert.Equal(t, stale+1, s.Attempt())

	_, err := s.Grade(stale, scorer)
	assert.ErrorIs(t, err, ErrStaleAttempt)
	assert.Equal(t, Grading, s.State())
	assert.Zero(t, scorer.calls)

	_, err = s.Grade(s.Attempt(), scorer)
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.calls)
}

func TestConcurrentFinishHasOneWinner(t *testing.T) {
	s, clock := startedSession(t)
	_, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if s.Tick(clock.Now()) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			if s.Finish() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestProctoringCounters(t *testing.T) {
	s, clock := startedSession(t)
	clock.Advance(42 * time.Second)

	offset, err := s.RecordTabSwitch()
	require.NoError(t, err)
	assert.Equal(t, 42, offset)
	_, err = s.RecordTabSwitch()
	require.NoError(t, err)
	_, err = s.RecordFaceIssue()
	require.NoError(t, err)

	require.True(t, s.Finish())
	result, err := s.Grade(s.Attempt(), scoring.NewEngine(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 2, result.TabSwitches)
	assert.Equal(t, 80, result.IntegrityScore)
	assert.Equal(t, 1, result.FaceDetectionIssues)

	_, err = s.RecordTabSwitch()
	_, ok := apperrors.AsInvalidState(err)
	assert.True(t, ok)
}

func TestResetDoesNotScore(t *testing.T) {
	s, _ := startedSession(t)
	scorer := &countingScorer{inner: scoring.NewEngine(nil, nil)}
	_, err := s.SubmitAnswer("q-1", "B", 3)
	require.NoError(t, err)

	s.Reset()
	assert.Equal(t, 0, scorer.calls)
	assert.Equal(t, Configuring, s.State())
	assert.Empty(t, s.Selection().SkillIDs)
	assert.Equal(t, models.ModeSkill, s.Selection().Mode)
	assert.Equal(t, 0, s.AnswerCount())
	_, ok := s.Result()
	assert.False(t, ok)
}

func TestViewHidesAnswerKey(t *testing.T) {
	s, _ := startedSession(t)
	v := s.View(epoch)
	require.NotEmpty(t, v.Questions)
	assert.Equal(t, s.Questions()[0].Options, v.Questions[0].Options)
	assert.Equal(t, "cand-1", v.CandidateID)
}
