package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, validator *validator.Validator, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger, validator),
		sessionService: sessionService,
	}
}

// RequireOwner lets a session route through only for the candidate who owns
// the session or an admin.
func (h *SessionHandler) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ParseStringIDParam(c, "id")
		if id == "" {
			return
		}
		view, err := h.sessionService.Get(c.Request.Context(), id)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		identity, _ := IdentityFromContext(c)
		if !identity.IsAdmin() && view.CandidateID != candidateID(c) {
			h.handleServiceError(c, services.NewPermissionError(identity.ID, id, "session", "access", "session belongs to another candidate"))
			return
		}
		c.Next()
	}
}

// ===== CONFIGURING =====

// CreateSession creates a session in Configuring with an optional preselection
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating session", "role_id", req.RoleID, "mode", req.Mode)

	view, err := h.sessionService.Create(c.Request.Context(), &req, candidateID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current view of a session
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.Get(c.Request.Context(), id)
	})
}

// @Router /sessions/{id}/role [put]
func (h *SessionHandler) SelectRole(c *gin.Context) {
	var req models.SelectRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.SelectRole(c.Request.Context(), id, req.RoleID)
	})
}

// @Router /sessions/{id}/skills/{skill_id}/toggle [post]
func (h *SessionHandler) ToggleSkill(c *gin.Context) {
	skillID := ParseStringIDParam(c, "skill_id")
	if skillID == "" {
		return
	}
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.ToggleSkill(c.Request.Context(), id, skillID)
	})
}

// @Router /sessions/{id}/skills/{skill_id}/tasks/{task_id}/toggle [post]
func (h *SessionHandler) ToggleTask(c *gin.Context) {
	skillID := ParseStringIDParam(c, "skill_id")
	if skillID == "" {
		return
	}
	taskID := ParseStringIDParam(c, "task_id")
	if taskID == "" {
		return
	}
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.ToggleTask(c.Request.Context(), id, skillID, taskID)
	})
}

// @Router /sessions/{id}/skills/{skill_id}/tasks/all [post]
func (h *SessionHandler) SelectAllTasks(c *gin.Context) {
	skillID := ParseStringIDParam(c, "skill_id")
	if skillID == "" {
		return
	}
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.SelectAllTasks(c.Request.Context(), id, skillID)
	})
}

// @Router /sessions/{id}/skills/{skill_id}/tasks [delete]
func (h *SessionHandler) DeselectAllTasks(c *gin.Context) {
	skillID := ParseStringIDParam(c, "skill_id")
	if skillID == "" {
		return
	}
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.DeselectAllTasks(c.Request.Context(), id, skillID)
	})
}

// Estimate previews the time limit and start eligibility of the selection
// @Router /sessions/{id}/estimate [get]
func (h *SessionHandler) Estimate(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	estimate, err := h.sessionService.Estimate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// ===== CONSENT =====

// @Router /sessions/{id}/start-request [post]
func (h *SessionHandler) RequestStart(c *gin.Context) {
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.RequestStart(c.Request.Context(), id)
	})
}

// @Router /sessions/{id}/back [post]
func (h *SessionHandler) Back(c *gin.Context) {
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.Back(c.Request.Context(), id)
	})
}

// Consent records camera state and consent, then starts the attempt
// @Router /sessions/{id}/consent [post]
func (h *SessionHandler) Consent(c *gin.Context) {
	var req models.ConsentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.Consent(c.Request.Context(), id, &req)
	})
}

// ===== IN PROGRESS =====

// SubmitAnswer records the answer to the current question and advances
// @Router /sessions/{id}/answers [post]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req models.SubmitAnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.SubmitAnswer(c.Request.Context(), id, &req)
	})
}

// @Router /sessions/{id}/skip [post]
func (h *SessionHandler) Skip(c *gin.Context) {
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.Skip(c.Request.Context(), id)
	})
}

// @Router /sessions/{id}/next [post]
func (h *SessionHandler) Next(c *gin.Context) {
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.Next(c.Request.Context(), id)
	})
}

// RecordProctoring reports a tab switch or face-detection issue
// @Router /sessions/{id}/proctoring [post]
func (h *SessionHandler) RecordProctoring(c *gin.Context) {
	var req models.ProctoringRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.RecordProctoring(c.Request.Context(), id, &req)
	})
}

// @Router /sessions/{id}/finish [post]
func (h *SessionHandler) Finish(c *gin.Context) {
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.Finish(c.Request.Context(), id)
	})
}

// ===== RESULT =====

// GetResult returns the graded result, or 202 while grading is still running
// @Router /sessions/{id}/result [get]
func (h *SessionHandler) GetResult(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	result, err := h.sessionService.GetResult(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reset discards the attempt without scoring and returns to Configuring
// @Router /sessions/{id}/reset [post]
func (h *SessionHandler) Reset(c *gin.Context) {
	h.respond(c, func(id string) (*models.SessionView, error) {
		return h.sessionService.Reset(c.Request.Context(), id)
	})
}

// @Router /sessions/{id} [delete]
func (h *SessionHandler) Discard(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	if err := h.sessionService.Discard(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) respond(c *gin.Context, fn func(id string) (*models.SessionView, error)) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	view, err := fn(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
