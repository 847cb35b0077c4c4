package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/SAP-F-2025/proficiency-service/internal/errors"
	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ListResponse wraps a page of results with the total count
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// BaseHandler provides common logging and response helpers for all handlers
type BaseHandler struct {
	logger    utils.Logger
	validator *validator.Validator
}

func NewBaseHandler(logger utils.Logger, validator *validator.Validator) BaseHandler {
	return BaseHandler{
		logger:    logger,
		validator: validator,
	}
}

// requestLogger is the request-scoped logger tagged with the caller.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	logger := utils.LoggerFromContext(c, h.logger)
	if identity, ok := IdentityFromContext(c); ok {
		return logger.With("user_id", identity.ID)
	}
	return logger
}

func (h *BaseHandler) LogRequest(c *gin.Context, message string, fields ...interface{}) {
	h.requestLogger(c).Info(message, fields...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, fields ...interface{}) {
	h.requestLogger(c).LogError(err, message, fields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, fields ...interface{}) {
	h.requestLogger(c).Warn(message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{Message: message}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.AbortWithStatusJSON(statusCode, errorResp)
}

// bindJSON decodes and validates the request body, responding 400 on failure.
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}

// bindQuery decodes query parameters into filters; validation happens in the service.
func (h *BaseHandler) bindQuery(c *gin.Context, filters interface{}) bool {
	if err := c.ShouldBindQuery(filters); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors apperrors.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	if stateErr, ok := apperrors.AsInvalidState(err); ok {
		h.RespondWithError(c, http.StatusConflict, stateErr.Error(), err, map[string]interface{}{
			"operation": stateErr.Operation,
			"current":   stateErr.Current,
			"required":  stateErr.Required,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrResultPending):
		c.JSON(http.StatusAccepted, ErrorResponse{Message: err.Error(), Code: "grading"})
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, err.Error(), err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", err)
	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
	case services.IsValidation(err), services.IsBusinessRule(err):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// ===== PARAMS =====

// ParseStringIDParam reads a required path parameter, responding 400 when it is blank.
func ParseStringIDParam(c *gin.Context, param string) string {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return id
}

// candidateID identifies the caller of a candidate endpoint.
func candidateID(c *gin.Context) string {
	identity, _ := IdentityFromContext(c)
	if identity.ID == "" {
		return identity.Email
	}
	return identity.ID
}
