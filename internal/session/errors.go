package session

import (
	"errors"

	apperrors "github.com/SAP-F-2025/proficiency-service/internal/errors"
)

var (
	ErrSkillLimitReached = errors.New("skill selection limit reached for assessment mode")
	ErrSkillNotInRole    = errors.New("skill does not belong to the selected role")
	ErrSkillNotSelected  = errors.New("skill is not selected")
	ErrTaskNotInSkill    = errors.New("task does not belong to skill")
	ErrDuplicateTask     = errors.New("task is already selected")
	ErrRoleNotSelected   = errors.New("no role selected")
	ErrCannotStart       = errors.New("every selected skill needs at least one task")
	ErrCameraInactive    = errors.New("camera must be active to begin")
	ErrConsentRequired   = errors.New("proctoring consent is required to begin")
	ErrTimeExpired       = errors.New("assessment time has expired")
	ErrNoQuestions       = errors.New("selection produced no questions")

	// ErrNotCurrentQuestion rejects answers to questions already passed or not yet reached.
	ErrNotCurrentQuestion = errors.New("question is not the current question")
	// ErrStaleAttempt rejects grading an attempt that was reset after it finished.
	ErrStaleAttempt = errors.New("attempt was superseded")
)

type (
	InvalidStateError = apperrors.InvalidStateError
	NotFoundError     = apperrors.NotFoundError
)

func invalidState(op string, current State, required ...State) error {
	req := make([]string, len(required))
	for i, r := range required {
		req[i] = string(r)
	}
	return apperrors.NewInvalidStateError(op, string(current), req...)
}
