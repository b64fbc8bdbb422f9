package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/config"
	"github.com/proposalhub/proposalhub-api/internal/database"
	"github.com/proposalhub/proposalhub-api/internal/http/handler"
	"github.com/proposalhub/proposalhub-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/proposalhub/proposalhub-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	organizationHandler *handler.OrganizationHandler
	contactHandler      *handler.ContactHandler
	accountHandler      *handler.AccountHandler
	teamHandler         *handler.TeamHandler
	permissionHandler   *handler.PermissionHandler
	proposalHandler     *handler.ProposalHandler
	solutionHandler     *handler.SolutionHandler
	opportunityHandler  *handler.OpportunityHandler
	fileHandler         *handler.FileHandler
	enrichmentHandler   *handler.EnrichmentHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	organizationHandler *handler.OrganizationHandler,
	contactHandler *handler.ContactHandler,
	accountHandler *handler.AccountHandler,
	teamHandler *handler.TeamHandler,
	permissionHandler *handler.PermissionHandler,
	proposalHandler *handler.ProposalHandler,
	solutionHandler *handler.SolutionHandler,
	opportunityHandler *handler.OpportunityHandler,
	fileHandler *handler.FileHandler,
	enrichmentHandler *handler.EnrichmentHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		organizationHandler: organizationHandler,
		contactHandler:      contactHandler,
		accountHandler:      accountHandler,
		teamHandler:         teamHandler,
		permissionHandler:   permissionHandler,
		proposalHandler:     proposalHandler,
		solutionHandler:     solutionHandler,
		opportunityHandler:  opportunityHandler,
		fileHandler:         fileHandler,
		enrichmentHandler:   enrichmentHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": map[bool]string{true: "healthy", false: "unhealthy"}[allHealthy],
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/passkey/start-registration", rt.authHandler.StartRegistration)
		r.Post("/auth/passkey/verify-registration", rt.authHandler.FinishRegistration)
		r.Post("/auth/passkey/start-authentication", rt.authHandler.StartLogin)
		r.Post("/auth/passkey/verify-authentication", rt.authHandler.FinishLogin)
		r.Post("/auth/logout", rt.authHandler.Logout)

		// Shared proposal links record views without requiring a session
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.OptionalAuthenticate)
			r.Post("/proposals/{id}/views", rt.proposalHandler.RecordView)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.Get("/auth/credentials", rt.authHandler.ListCredentials)

			// Organizations
			r.Route("/organizations", func(r chi.Router) {
				r.Get("/", rt.organizationHandler.ListOrganizations)
				r.Post("/", rt.organizationHandler.CreateOrganization)
				r.Get("/search", rt.organizationHandler.SearchOrganizations)
				r.Get("/{id}", rt.organizationHandler.GetOrganization)
				r.Patch("/{id}", rt.organizationHandler.UpdateOrganization)
				r.Delete("/{id}", rt.organizationHandler.DeleteOrganization)
			})

			// Contacts
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", rt.contactHandler.ListContacts)
				r.Post("/", rt.contactHandler.CreateContact)
				r.Get("/{id}", rt.contactHandler.GetContact)
				r.Put("/{id}", rt.contactHandler.UpdateContact)
				r.Delete("/{id}", rt.contactHandler.DeleteContact)
			})

			// Account
			r.Get("/account", rt.accountHandler.GetAccount)
			r.Put("/account", rt.accountHandler.UpdateAccount)

			// Teams
			r.Route("/teams/{teamType}/{teamId}/members", func(r chi.Router) {
				r.Get("/", rt.teamHandler.ListMembers)
				r.Post("/", rt.teamHandler.AddMember)
				r.Delete("/{contactId}", rt.teamHandler.RemoveMember)
			})

			// Permissions
			r.Put("/permissions", rt.permissionHandler.SetPermission)
			r.Get("/permissions/{targetEntity}/{targetId}", rt.permissionHandler.ListPermissions)
			r.Delete("/permissions/{targetEntity}/{targetId}/{contactId}", rt.permissionHandler.RemovePermission)

			// Proposals
			r.Route("/proposals", func(r chi.Router) {
				r.Get("/", rt.proposalHandler.ListProposals)
				r.Post("/", rt.proposalHandler.CreateProposal)
				r.Get("/{id}", rt.proposalHandler.GetProposal)
				r.Put("/{id}", rt.proposalHandler.UpdateProposal)
				r.Delete("/{id}", rt.proposalHandler.DeleteProposal)

				// Sections
				r.Post("/{id}/sections", rt.proposalHandler.AddSection)
				r.Put("/{id}/sections/reorder", rt.proposalHandler.ReorderSections)
				r.Put("/{id}/sections/{sectionId}", rt.proposalHandler.UpdateSection)
				r.Delete("/{id}/sections/{sectionId}", rt.proposalHandler.RemoveSection)

				// Messages
				r.Get("/{id}/messages", rt.proposalHandler.ListMessages)
				r.Post("/{id}/messages", rt.proposalHandler.AddMessage)

				// Views
				r.Get("/{id}/views", rt.proposalHandler.ListViews)

				// AI generation
				r.Post("/{id}/generate", rt.enrichmentHandler.GenerateSection)
			})

			// Solutions
			r.Route("/solutions", func(r chi.Router) {
				r.Get("/", rt.solutionHandler.ListSolutions)
				r.Post("/", rt.solutionHandler.CreateSolution)
				r.Get("/{id}", rt.solutionHandler.GetSolution)
				r.Put("/{id}", rt.solutionHandler.UpdateSolution)
				r.Delete("/{id}", rt.solutionHandler.DeleteSolution)
			})

			// Opportunities
			r.Route("/opportunities", func(r chi.Router) {
				r.Get("/", rt.opportunityHandler.ListOpportunities)
				r.Post("/", rt.opportunityHandler.CreateOpportunity)
				r.Get("/{id}", rt.opportunityHandler.GetOpportunity)
				r.Put("/{id}", rt.opportunityHandler.UpdateOpportunity)
				r.Delete("/{id}", rt.opportunityHandler.DeleteOpportunity)
			})

			// Files
			r.Route("/files", func(r chi.Router) {
				r.Get("/", rt.fileHandler.ListFiles)
				r.Post("/upload", rt.fileHandler.UploadFile)
				r.Get("/{id}/download", rt.fileHandler.DownloadFile)
				r.Delete("/{id}", rt.fileHandler.DeleteFile)
			})

			// Enrichment
			r.Post("/enrichment/logo", rt.enrichmentHandler.EnrichLogo)
			r.Post("/enrichment/profile", rt.enrichmentHandler.EnrichProfile)
		})
	})

	return r
}
