package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportSize   = 10 << 20
)

// AdminHandler serves the admin portal: templates, invites, candidates and reports
type AdminHandler struct {
	BaseHandler
	templateService services.TemplateService
	inviteService   services.InviteService
	exportService   services.ExportService
}

func NewAdminHandler(
	templateService services.TemplateService,
	inviteService services.InviteService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:     NewBaseHandler(logger, validator),
		templateService: templateService,
		inviteService:   inviteService,
		exportService:   exportService,
	}
}

// ===== TEMPLATES =====

// CreateTemplate creates a reusable assessment template
// @Router /admin/templates [post]
func (h *AdminHandler) CreateTemplate(c *gin.Context) {
	var req models.TemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating template", "name", req.Name, "role_id", req.RoleID)

	identity, _ := IdentityFromContext(c)
	template, err := h.templateService.Create(c.Request.Context(), &req, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// @Router /admin/templates [get]
func (h *AdminHandler) ListTemplates(c *gin.Context) {
	var filters models.TemplateFilters
	if !h.bindQuery(c, &filters) {
		return
	}

	templates, total, err := h.templateService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: templates, Total: total, Limit: filters.Limit, Offset: filters.Offset})
}

// @Router /admin/templates/{id} [get]
func (h *AdminHandler) GetTemplate(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	template, err := h.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// @Router /admin/templates/{id} [put]
func (h *AdminHandler) UpdateTemplate(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	var req models.TemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating template", "template_id", id)

	template, err := h.templateService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// @Router /admin/templates/{id} [delete]
func (h *AdminHandler) DeleteTemplate(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting template", "template_id", id)

	if err := h.templateService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportTemplates creates templates from an uploaded xlsx file (form field "file")
// @Router /admin/templates/import [post]
func (h *AdminHandler) ImportTemplates(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "File is required", err)
		return
	}
	if fileHeader.Size > maxImportSize {
		h.RespondWithError(c, http.StatusBadRequest, "File too large", nil, fmt.Sprintf("maximum size is %d bytes", maxImportSize))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to open file", err)
		return
	}
	defer file.Close()

	identity, _ := IdentityFromContext(c)
	result, err := h.exportService.ImportTemplates(c.Request.Context(), file, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportTemplateReports downloads every report of a template as xlsx
// @Router /admin/templates/{id}/export [get]
func (h *AdminHandler) ExportTemplateReports(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	data, err := h.exportService.ExportTemplateReports(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("template_%s_reports_%s.xlsx", id, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ===== INVITES & CANDIDATES =====

// InviteCandidates creates one invite per new email for the template
// @Router /admin/templates/{id}/invites [post]
func (h *AdminHandler) InviteCandidates(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	var req models.InviteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Inviting candidates", "template_id", id, "count", len(req.Emails))

	invites, err := h.inviteService.InviteCandidates(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invites)
}

// @Router /admin/candidates [get]
func (h *AdminHandler) ListCandidates(c *gin.Context) {
	var filters models.CandidateFilters
	if !h.bindQuery(c, &filters) {
		return
	}

	invites, total, err := h.inviteService.ListCandidates(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: invites, Total: total, Limit: filters.Limit, Offset: filters.Offset})
}

// @Router /admin/reports/{invite_id} [get]
func (h *AdminHandler) CandidateReport(c *gin.Context) {
	inviteID := ParseStringIDParam(c, "invite_id")
	if inviteID == "" {
		return
	}

	report, err := h.inviteService.CandidateReport(c.Request.Context(), inviteID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.inviteService.Dashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
