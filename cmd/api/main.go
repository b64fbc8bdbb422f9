package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/proposalhub/proposalhub-api/docs"
	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/config"
	"github.com/proposalhub/proposalhub-api/internal/database"
	"github.com/proposalhub/proposalhub-api/internal/enrichment"
	"github.com/proposalhub/proposalhub-api/internal/http/handler"
	"github.com/proposalhub/proposalhub-api/internal/http/middleware"
	"github.com/proposalhub/proposalhub-api/internal/http/router"
	"github.com/proposalhub/proposalhub-api/internal/jobs"
	"github.com/proposalhub/proposalhub-api/internal/logger"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/proposalhub/proposalhub-api/internal/storage"
	"go.uber.org/zap"
)

// @title ProposalHub API
// @version 1.0
// @description Multi-tenant API for building, sharing, and enriching business proposals

// @contact.name API Support
// @contact.email support@proposalhub.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT session token issued after a passkey ceremony

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "staging.api.proposalhub.io"
	case "production":
		docs.SwaggerInfo.Host = "api.proposalhub.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	orgRepo := repository.NewOrganizationRepository(db)
	contactRepo := repository.NewContactRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	solutionRepo := repository.NewSolutionRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	fileRepo := repository.NewFileRepository(db)
	credentialRepo := repository.NewPasskeyCredentialRepository(db)
	webauthnSessionRepo := repository.NewWebauthnSessionRepository(db)
	linkedInSessionRepo := repository.NewLinkedInSessionRepository(db)

	// Initialize auth
	tokens, err := auth.NewTokenManager(&cfg.Auth, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}
	resolver := auth.NewResolver(permissionRepo, proposalRepo)
	authMiddleware := auth.NewMiddleware(&cfg.Auth, tokens, log)

	// Initialize enrichment providers
	openAIClient := enrichment.NewOpenAIClient(cfg.Enrichment.OpenAIAPIKey, cfg.Enrichment.OpenAIBaseURL)
	generator := enrichment.NewContentGenerator(
		openAIClient,
		cfg.Enrichment.OpenAIModels,
		cfg.Enrichment.AttemptTimeoutDuration(),
		log,
	)
	perplexityClient := enrichment.NewPerplexityClient(cfg.Enrichment.PerplexityAPIKey, cfg.Enrichment.PerplexityModel)
	logoFinder := enrichment.NewLogoFinder(
		cfg.Enrichment.ClearbitLogoBaseURL,
		cfg.Enrichment.GoogleSearchAPIKey,
		cfg.Enrichment.GoogleSearchCX,
		cfg.Enrichment.LinkedInAccessToken,
		log,
	)

	var profileEnricher enrichment.ProfileEnricher
	if cfg.Enrichment.ScrapeEnabled {
		profileEnricher = enrichment.NewLinkedInScraper(cfg.Enrichment.AttemptTimeoutDuration(), log)
	} else {
		profileEnricher = &enrichment.StaticProfileEnricher{}
		log.Info("Profile scraping disabled, using static enricher")
	}

	// Initialize services
	authService := service.NewAuthService(db, contactRepo, orgRepo, permissionRepo, credentialRepo, log)
	organizationService := service.NewOrganizationService(orgRepo, resolver, log)
	contactService := service.NewContactService(contactRepo, orgRepo, teamRepo, permissionRepo, log)
	accountService := service.NewAccountService(accountRepo, resolver, log)
	teamService := service.NewTeamService(teamRepo, contactRepo, orgRepo, proposalRepo, solutionRepo, opportunityRepo, resolver, log)
	permissionService := service.NewPermissionService(permissionRepo, proposalRepo, resolver, log)
	proposalService := service.NewProposalService(proposalRepo, permissionRepo, contactRepo, resolver, log)
	solutionService := service.NewSolutionService(solutionRepo, teamRepo, log)
	opportunityService := service.NewOpportunityService(opportunityRepo, teamRepo, log)
	fileService := service.NewFileService(fileRepo, proposalRepo, fileStorage, cfg.Storage.MaxUploadSizeMB, log)
	enrichmentService := service.NewEnrichmentService(
		proposalRepo,
		orgRepo,
		contactRepo,
		linkedInSessionRepo,
		resolver,
		generator,
		logoFinder,
		profileEnricher,
		perplexityClient,
		log,
	)

	// Passkey ceremonies resolve contacts through the auth service so
	// first-time registrations provision a tenant
	passkeyService, err := auth.NewPasskeyService(&cfg.WebAuthn, authService, credentialRepo, webauthnSessionRepo, log)
	if err != nil {
		return fmt.Errorf("failed to create passkey service: %w", err)
	}

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(passkeyService, authService, tokens, &cfg.Auth, log)
	organizationHandler := handler.NewOrganizationHandler(organizationService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	accountHandler := handler.NewAccountHandler(accountService, log)
	teamHandler := handler.NewTeamHandler(teamService, log)
	permissionHandler := handler.NewPermissionHandler(permissionService, log)
	proposalHandler := handler.NewProposalHandler(proposalService, log)
	solutionHandler := handler.NewSolutionHandler(solutionService, log)
	opportunityHandler := handler.NewOpportunityHandler(opportunityService, log)
	fileHandler := handler.NewFileHandler(fileService, log)
	enrichmentHandler := handler.NewEnrichmentHandler(enrichmentService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		organizationHandler,
		contactHandler,
		accountHandler,
		teamHandler,
		permissionHandler,
		proposalHandler,
		solutionHandler,
		opportunityHandler,
		fileHandler,
		enrichmentHandler,
	)

	// Start background jobs
	scheduler := jobs.NewScheduler(&cfg.Jobs, webauthnSessionRepo, linkedInSessionRepo, log)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		scheduler.Stop()

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
