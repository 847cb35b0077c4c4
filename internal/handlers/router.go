package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Catalog   services.Catalog
	Sessions  services.SessionService
	Templates services.TemplateService
	Invites   services.InviteService
	Export    services.ExportService
}

type HandlerManager struct {
	auth           Authenticator
	catalogHandler *CatalogHandler
	sessionHandler *SessionHandler
	liveHandler    *LiveHandler
	adminHandler   *AdminHandler
	inviteHandler  *InviteHandler
	healthHandler  *HealthHandler
}

func NewHandlerManager(
	svcs Services,
	auth Authenticator,
	health map[string]HealthCheck,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		auth:           auth,
		catalogHandler: NewCatalogHandler(svcs.Catalog, validator, logger),
		sessionHandler: NewSessionHandler(svcs.Sessions, validator, logger),
		liveHandler:    NewLiveHandler(svcs.Sessions, validator, logger),
		adminHandler:   NewAdminHandler(svcs.Templates, svcs.Invites, svcs.Export, validator, logger),
		inviteHandler:  NewInviteHandler(svcs.Invites, svcs.Sessions, validator, logger),
		healthHandler:  NewHealthHandler(health),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthHandler.Health)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.auth))
	{
		// Catalog routes
		v1.GET("/roles", hm.catalogHandler.ListRoles)
		v1.GET("/roles/:id/skills", hm.catalogHandler.ListSkills)
		v1.GET("/skills/:id/tasks", hm.catalogHandler.ListTasks)

		// Session routes
		v1.POST("/sessions", hm.sessionHandler.CreateSession)
		session := v1.Group("/sessions/:id", hm.sessionHandler.RequireOwner())
		{
			session.GET("", hm.sessionHandler.GetSession)
			session.DELETE("", hm.sessionHandler.Discard)

			// Configuring
			session.PUT("/role", hm.sessionHandler.SelectRole)
			session.POST("/skills/:skill_id/toggle", hm.sessionHandler.ToggleSkill)
			session.POST("/skills/:skill_id/tasks/:task_id/toggle", hm.sessionHandler.ToggleTask)
			session.POST("/skills/:skill_id/tasks/all", hm.sessionHandler.SelectAllTasks)
			session.DELETE("/skills/:skill_id/tasks", hm.sessionHandler.DeselectAllTasks)
			session.GET("/estimate", hm.sessionHandler.Estimate)

			// Consent
			session.POST("/start-request", hm.sessionHandler.RequestStart)
			session.POST("/back", hm.sessionHandler.Back)
			session.POST("/consent", hm.sessionHandler.Consent)

			// In progress
			session.POST("/answers", hm.sessionHandler.SubmitAnswer)
			session.POST("/skip", hm.sessionHandler.Skip)
			session.POST("/next", hm.sessionHandler.Next)
			session.POST("/proctoring", hm.sessionHandler.RecordProctoring)
			session.POST("/finish", hm.sessionHandler.Finish)
			session.GET("/live", hm.liveHandler.Live)

			// Result
			session.GET("/result", hm.sessionHandler.GetResult)
			session.POST("/reset", hm.sessionHandler.Reset)
		}

		// Candidate invite routes
		invites := v1.Group("/invites")
		{
			invites.GET("/:token", hm.inviteHandler.ValidateInvite)
			invites.POST("/:token/start", hm.inviteHandler.StartFromInvite)
		}

		// Admin routes
		admin := v1.Group("/admin", AdminMiddleware())
		{
			templates := admin.Group("/templates")
			{
				templates.POST("", hm.adminHandler.CreateTemplate)
				templates.GET("", hm.adminHandler.ListTemplates)
				templates.POST("/import", hm.adminHandler.ImportTemplates)
				templates.GET("/:id", hm.adminHandler.GetTemplate)
				templates.PUT("/:id", hm.adminHandler.UpdateTemplate)
				templates.DELETE("/:id", hm.adminHandler.DeleteTemplate)
				templates.POST("/:id/invites", hm.adminHandler.InviteCandidates)
				templates.GET("/:id/export", hm.adminHandler.ExportTemplateReports)
			}

			admin.GET("/candidates", hm.adminHandler.ListCandidates)
			admin.GET("/reports/:invite_id", hm.adminHandler.CandidateReport)
			admin.GET("/dashboard", hm.adminHandler.Dashboard)
		}
	}
}

// NewRouter builds a gin engine with the logging middleware and all routes
func NewRouter(hm *HandlerManager, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))
	hm.SetupRoutes(router)
	return router
}
