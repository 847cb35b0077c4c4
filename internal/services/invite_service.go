package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/proficiency-service/internal/cache"
	"github.com/SAP-F-2025/proficiency-service/internal/events"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

const dashboardTTL = time.Minute

type inviteService struct {
	templates repositories.TemplateRepository
	invites   repositories.InviteRepository
	reports   repositories.ReportRepository
	cache     cache.CacheService
	publisher events.EventPublisher
	now       func() time.Time
	logger    *slog.Logger
	validator *validator.Validator
}

func NewInviteService(
	templates repositories.TemplateRepository,
	invites repositories.InviteRepository,
	reports repositories.ReportRepository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) InviteService {
	return &inviteService{
		templates: templates,
		invites:   invites,
		reports:   reports,
		cache:     cacheService,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
		validator: validator,
	}
}

func (s *inviteService) InviteCandidates(ctx context.Context, templateID string, req *models.InviteRequest) ([]*models.Invite, error) {
	s.logger.Info("Inviting candidates", "template_id", templateID, "count", len(req.Emails))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.templates.GetByID(ctx, nil, templateID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	emails := normalizeEmails(req.Emails)
	existing, err := s.invites.ExistingEmails(ctx, nil, templateID, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing invites: %w", err)
	}

	now := s.now()
	var invites []*models.Invite
	for _, email := range emails {
		if existing[email] {
			continue
		}
		invites = append(invites, &models.Invite{
			ID:         uuid.NewString(),
			Token:      strings.ReplaceAll(uuid.NewString(), "-", ""),
			TemplateID: templateID,
			Email:      email,
			Status:     models.InvitePending,
			InvitedAt:  now,
		})
	}
	if err := s.invites.CreateBatch(ctx, nil, invites); err != nil {
		return nil, fmt.Errorf("failed to create invites: %w", err)
	}

	for _, invite := range invites {
		event := events.NewEvent(events.EventInviteCreated, "", events.InviteCreatedEvent{
			InviteID:   invite.ID,
			TemplateID: templateID,
			Email:      invite.Email,
			Token:      invite.Token,
		}, now)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish invite event", "invite_id", invite.ID, "error", err)
		}
	}
	if len(invites) > 0 {
		if err := s.cache.Delete(ctx, cache.DashboardKey()); err != nil {
			s.logger.Warn("Failed to invalidate dashboard cache", "error", err)
		}
	}

	s.logger.Info("Candidates invited successfully",
		"template_id", templateID,
		"created", len(invites),
		"skipped", len(emails)-len(invites))
	return invites, nil
}

func (s *inviteService) ValidateInvite(ctx context.Context, token string) (*models.InviteValidation, error) {
	invite, err := s.invites.GetByToken(ctx, nil, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	template, err := s.templates.GetByID(ctx, nil, invite.TemplateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &models.InviteValidation{
		Valid:        invite.Status != models.InviteCompleted,
		Status:       invite.Status,
		TemplateID:   template.ID,
		TemplateName: template.Name,
		Email:        invite.Email,
	}, nil
}

func (s *inviteService) ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Invite, int64, error) {
	if err := s.validator.Validate(&filters); err != nil {
		return nil, 0, err
	}
	invites, total, err := s.invites.List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}
	return invites, total, nil
}

func (s *inviteService) CandidateReport(ctx context.Context, inviteID string) (*models.CandidateReport, error) {
	var cached models.CandidateReport
	if err := s.cache.Get(ctx, cache.InviteReportKey(inviteID), &cached); err == nil {
		return &cached, nil
	}

	invite, err := s.invites.GetByID(ctx, nil, inviteID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	template, err := s.templates.GetByID(ctx, nil, invite.TemplateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	report := &models.CandidateReport{Invite: *invite, Template: *template}
	stored, err := s.reports.GetByInviteID(ctx, nil, inviteID)
	switch {
	case err == nil:
		res, err := stored.Result()
		if err != nil {
			return nil, err
		}
		report.Result = &res
	case repositories.IsNotFoundError(err):
		// Not completed yet; nothing worth caching.
		return report, nil
	default:
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if err := s.cache.Set(ctx, cache.InviteReportKey(inviteID), report, time.Hour); err != nil {
		s.logger.Warn("Failed to cache candidate report", "invite_id", inviteID, "error", err)
	}
	return report, nil
}

func (s *inviteService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := s.cache.Get(ctx, cache.DashboardKey(), &stats); err == nil {
		return &stats, nil
	}

	var err error
	if stats.TotalTemplates, err = s.templates.Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}
	if stats.TotalCandidates, err = s.invites.Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}
	if stats.CompletedTests, err = s.invites.CountByStatus(ctx, nil, models.InviteCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed tests: %w", err)
	}
	avg, err := s.reports.AverageScore(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to average scores: %w", err)
	}
	stats.AverageScore = float64(int(avg*10+0.5)) / 10

	if err := s.cache.Set(ctx, cache.DashboardKey(), stats, dashboardTTL); err != nil {
		s.logger.Warn("Failed to cache dashboard", "error", err)
	}
	return &stats, nil
}

// normalizeEmails lower-cases, trims and de-duplicates while keeping order
func normalizeEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
