package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/proficiency-service/internal/errors"
	"github.com/SAP-F-2025/proficiency-service/internal/session"
)

var (
	// Generic errors
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrResultPending    = errors.New("result is still being graded")

	// Template and invite errors
	ErrTemplateNotFound   = errors.New("template not found")
	ErrTemplateInUse      = errors.New("template cannot be deleted - candidates have been invited")
	ErrInviteNotFound     = errors.New("invite not found")
	ErrInviteUsed         = errors.New("invite has already been used")
	ErrReportNotFound     = errors.New("report not found")
	ErrInvalidSpreadsheet = errors.New("spreadsheet is not a valid template import")
)

// Selection and consent failures surface unchanged from the session package.
var (
	ErrSkillLimitReached = session.ErrSkillLimitReached
	ErrSkillNotInRole    = session.ErrSkillNotInRole
	ErrSkillNotSelected  = session.ErrSkillNotSelected
	ErrTaskNotInSkill    = session.ErrTaskNotInSkill
	ErrDuplicateTask     = session.ErrDuplicateTask
	ErrRoleNotSelected   = session.ErrRoleNotSelected
	ErrCannotStart       = session.ErrCannotStart
	ErrCameraInactive    = session.ErrCameraInactive
	ErrConsentRequired   = session.ErrConsentRequired
	ErrTimeExpired       = session.ErrTimeExpired
	ErrNoQuestions       = session.ErrNoQuestions

	ErrNotCurrentQuestion = session.ErrNotCurrentQuestion
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type InvalidStateError = apperrors.InvalidStateError
type NotFoundError = apperrors.NotFoundError

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	if _, ok := apperrors.AsNotFound(err); ok {
		return true
	}
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrInviteNotFound) ||
		errors.Is(err, ErrReportNotFound)
}

// IsInvalidState checks if the operation was attempted in the wrong session state
func IsInvalidState(err error) bool {
	_, ok := apperrors.AsInvalidState(err)
	return ok
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if the caller is known but not allowed
func IsForbidden(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrForbidden) || errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidSpreadsheet) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation. Selection
// and consent rules enforced by a session count as business rules.
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	if errors.As(err, &bre) {
		return true
	}
	for _, target := range []error{
		ErrSkillLimitReached, ErrSkillNotInRole, ErrSkillNotSelected, ErrTaskNotInSkill,
		ErrRoleNotSelected, ErrCannotStart, ErrCameraInactive, ErrConsentRequired, ErrNoQuestions,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrTemplateInUse) ||
		errors.Is(err, ErrInviteUsed) ||
		errors.Is(err, ErrDuplicateTask) ||
		errors.Is(err, ErrTimeExpired) ||
		errors.Is(err, ErrNotCurrentQuestion)
}
