package main

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"shootflow/internal/api"
	"shootflow/internal/api/handlers"
	"shootflow/internal/api/middleware"
	"shootflow/internal/engine/artifacts"
	"shootflow/internal/engine/availability"
	"shootflow/internal/engine/customers"
	"shootflow/internal/engine/inquiries"
	"shootflow/internal/engine/messaging"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/engine/orgs"
	"shootflow/internal/engine/projects"
	"shootflow/internal/pkg/logger"
	"shootflow/internal/platform/audit"
	"shootflow/internal/platform/auth"
	"shootflow/internal/platform/calendar"
	"shootflow/internal/platform/config"
	"shootflow/internal/platform/database"
	"shootflow/internal/platform/email"
	"shootflow/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	inviteRepo := repositories.NewInvitationRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	projectRepo := projects.NewRepository(db)
	artifactRepo := artifacts.NewRepository(db)
	messageRepo := messaging.NewRepository(db)
	inquiryRepo := inquiries.NewRepository(db)
	availRepo := availability.NewRepository(db)

	// Platform services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLog := audit.NewLogger(db)
	calendarClient := calendar.NewClient(cfg.Calendar)
	emailSender := email.NewSMTPSender(cfg.Email)

	// Engine services
	availSvc := availability.NewService(availRepo)
	orgSvc := orgs.NewService(orgRepo, memberRepo, inviteRepo, userRepo, auditLog)
	customerSvc := customers.NewService(customerRepo, userRepo)
	projectSvc := projects.NewService(projectRepo, customerRepo, userRepo, notificationRepo,
		availSvc, calendarClient, emailSender, auditLog, cfg.App.DeliveryBaseURL)
	messageSvc := messaging.NewService(messageRepo, projectRepo, customerRepo)
	inquirySvc := inquiries.NewService(inquiryRepo, customerRepo, projectRepo)
	// The server only enqueues and lists artifacts; generation runs in the
	// worker binary, so no Generator is wired here.
	artifactSvc := artifacts.NewService(artifactRepo, projectRepo, nil)
	artifactSvc.SetLimits(cfg.Worker.StuckTimeout, cfg.Worker.MaxRetries)

	// Middleware
	resolver := orgctx.NewResolver(orgRepo, memberRepo)
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc, userRepo)
	orgMiddleware := middleware.NewOrgContextMiddleware(resolver)

	deps := &api.Dependencies{
		AuthHandler:         handlers.NewAuthHandler(userRepo, orgSvc, tokenSvc),
		OrgHandler:          handlers.NewOrgHandler(orgSvc),
		InviteHandler:       handlers.NewInviteHandler(orgSvc),
		CustomerHandler:     handlers.NewCustomerHandler(customerSvc),
		ProjectHandler:      handlers.NewProjectHandler(projectSvc),
		MessageHandler:      handlers.NewMessageHandler(messageSvc),
		InquiryHandler:      handlers.NewInquiryHandler(inquirySvc),
		NotificationHandler: handlers.NewNotificationHandler(notificationRepo),
		ArtifactHandler:     handlers.NewArtifactHandler(artifactSvc),
		AvailabilityHandler: handlers.NewAvailabilityHandler(availSvc),
		DeliveryHandler:     handlers.NewDeliveryHandler(projectSvc, artifactRepo),
		AuditHandler:        handlers.NewAuditHandler(auditLog),
		HealthHandler:       handlers.NewHealthHandler(db),
		MetricsHandler:      handlers.NewMetricsHandler(artifactRepo),
		AuthMiddleware:      authMiddleware,
		OrgMiddleware:       orgMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info().Str("addr", addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
