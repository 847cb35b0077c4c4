package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

type templateService struct {
	templates repositories.TemplateRepository
	invites   repositories.InviteRepository
	catalog   Catalog
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTemplateService(templates repositories.TemplateRepository, invites repositories.InviteRepository, catalog Catalog, logger *slog.Logger, validator *validator.Validator) TemplateService {
	return &templateService{
		templates: templates,
		invites:   invites,
		catalog:   catalog,
		logger:    logger,
		validator: validator,
	}
}

func (s *templateService) Create(ctx context.Context, req *models.TemplateRequest, creatorID string) (*models.AssessmentTemplate, error) {
	s.logger.Info("Creating template", "name", req.Name, "role_id", req.RoleID, "creator_id", creatorID)

	if err := s.validate(req); err != nil {
		return nil, err
	}

	template := &models.AssessmentTemplate{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		RoleID:      req.RoleID,
		Mode:        req.Mode,
		CreatedBy:   creatorID,
	}
	template.SetSkills(req.SkillIDs)
	template.SetTasks(req.TaskIDs)

	if err := s.templates.Create(ctx, nil, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.logger.Info("Template created successfully", "template_id", template.ID)
	return template, nil
}

func (s *templateService) GetByID(ctx context.Context, id string) (*models.AssessmentTemplate, error) {
	template, err := s.templates.GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func (s *templateService) Update(ctx context.Context, id string, req *models.TemplateRequest) (*models.AssessmentTemplate, error) {
	s.logger.Info("Updating template", "template_id", id)

	template, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	template.Name = req.Name
	template.Description = req.Description
	template.RoleID = req.RoleID
	template.Mode = req.Mode
	template.SetSkills(req.SkillIDs)
	template.SetTasks(req.TaskIDs)

	if err := s.templates.Update(ctx, nil, template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	s.logger.Info("Template updated successfully", "template_id", id)
	return template, nil
}

func (s *templateService) Delete(ctx context.Context, id string) error {
	s.logger.Info("Deleting template", "template_id", id)

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	used, err := s.invites.HasInvites(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to check template invites: %w", err)
	}
	if used {
		return ErrTemplateInUse
	}
	if err := s.templates.Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}

	s.logger.Info("Template deleted successfully", "template_id", id)
	return nil
}

func (s *templateService) List(ctx context.Context, filters models.TemplateFilters) ([]*models.AssessmentTemplate, int64, error) {
	if err := s.validator.Validate(&filters); err != nil {
		return nil, 0, err
	}
	templates, total, err := s.templates.List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, total, nil
}

// validate checks the request shape, then that the selection is consistent with the catalog.
func (s *templateService) validate(req *models.TemplateRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	var errs ValidationErrors
	if _, err := s.catalog.Role(req.RoleID); err != nil {
		errs = append(errs, *NewValidationError("role_id", "is not a known role", req.RoleID))
		return errs
	}
	if len(req.SkillIDs) > req.Mode.MaxSkills() {
		errs = append(errs, *NewValidationError("skill_ids",
			fmt.Sprintf("must contain at most %d skills in %s mode", req.Mode.MaxSkills(), req.Mode), len(req.SkillIDs)))
	}

	selected := make(map[string]bool, len(req.SkillIDs))
	for _, skillID := range req.SkillIDs {
		roleID, err := s.catalog.RoleOfSkill(skillID)
		if err != nil || roleID != req.RoleID {
			errs = append(errs, *NewValidationError("skill_ids", "skill does not belong to the role", skillID))
			continue
		}
		selected[skillID] = true
	}

	covered := make(map[string]bool, len(req.SkillIDs))
	for _, taskID := range req.TaskIDs {
		skill, err := s.catalog.SkillOfTask(taskID)
		if err != nil || !selected[skill.ID] {
			errs = append(errs, *NewValidationError("task_ids", "task does not belong to a selected skill", taskID))
			continue
		}
		covered[skill.ID] = true
	}
	if len(errs) > 0 {
		return errs
	}

	for _, skillID := range req.SkillIDs {
		if !covered[skillID] {
			return NewBusinessRuleError("every_skill_has_task",
				"every selected skill needs at least one task",
				map[string]interface{}{"skill_id": skillID})
		}
	}
	return nil
}
