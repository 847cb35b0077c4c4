package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

// InviteHandler serves the candidate side of invite links
type InviteHandler struct {
	BaseHandler
	inviteService  services.InviteService
	sessionService services.SessionService
}

func NewInviteHandler(inviteService services.InviteService, sessionService services.SessionService, validator *validator.Validator, logger utils.Logger) *InviteHandler {
	return &InviteHandler{
		BaseHandler:    NewBaseHandler(logger, validator),
		inviteService:  inviteService,
		sessionService: sessionService,
	}
}

// ValidateInvite reports whether an invite link can still be used
// @Router /invites/{token} [get]
func (h *InviteHandler) ValidateInvite(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	validation, err := h.inviteService.ValidateInvite(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, validation)
}

// StartFromInvite opens (or resumes) the session preselected from the invite's template
// @Router /invites/{token}/start [post]
func (h *InviteHandler) StartFromInvite(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	h.LogRequest(c, "Starting session from invite")

	view, err := h.sessionService.StartFromInvite(c.Request.Context(), token, candidateID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}
