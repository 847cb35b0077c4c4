package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

type CatalogHandler struct {
	BaseHandler
	catalog services.Catalog
}

func NewCatalogHandler(catalog services.Catalog, validator *validator.Validator, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger, validator),
		catalog:     catalog,
	}
}

// ListRoles returns every role in the catalog without nested skills
// @Router /roles [get]
func (h *CatalogHandler) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Summaries())
}

// ListSkills returns the skills of a role
// @Router /roles/{id}/skills [get]
func (h *CatalogHandler) ListSkills(c *gin.Context) {
	roleID := ParseStringIDParam(c, "id")
	if roleID == "" {
		return
	}

	skills, err := h.catalog.Skills(roleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, skills)
}

// ListTasks returns the tasks of a skill
// @Router /skills/{id}/tasks [get]
func (h *CatalogHandler) ListTasks(c *gin.Context) {
	skillID := ParseStringIDParam(c, "id")
	if skillID == "" {
		return
	}

	tasks, err := h.catalog.Tasks(skillID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
