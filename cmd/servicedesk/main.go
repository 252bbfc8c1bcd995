package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rvworks/servicedesk/internal/auth"
	"github.com/rvworks/servicedesk/internal/config"
	"github.com/rvworks/servicedesk/internal/db"
	"github.com/rvworks/servicedesk/internal/email"
	"github.com/rvworks/servicedesk/internal/excel"
	httphandler "github.com/rvworks/servicedesk/internal/http"
	"github.com/rvworks/servicedesk/internal/http/middleware"
	"github.com/rvworks/servicedesk/internal/logger"
	"github.com/rvworks/servicedesk/internal/pdf"
	"github.com/rvworks/servicedesk/internal/repository"
	"github.com/rvworks/servicedesk/internal/scheduler"
	"github.com/rvworks/servicedesk/internal/service"
	"github.com/rvworks/servicedesk/internal/sms"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	workOrderRepo := repository.NewWorkOrderRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	rvRepo := repository.NewRVRepository(database)
	partRepo := repository.NewPartRepository(database)
	dealershipRepo := repository.NewDealershipRepository(database)
	profileRepo := repository.NewProfileRepository(database)
	identityStore := repository.NewIdentityStore(database)
	approvalLogRepo := repository.NewApprovalLogRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	announcementRepo := repository.NewAnnouncementRepository(database)

	tokens := auth.NewManager(cfg.Auth.AccessSecret, cfg.Auth.TokenTTL)
	smsSender := sms.NewTwilioSender(cfg.Twilio, log)
	emailSender := email.NewResendSender(cfg.Email, log)
	pdfGenerator := pdf.NewGenerator()
	excelGenerator := excel.NewGenerator()

	workOrderService := service.NewWorkOrderService(workOrderRepo, partRepo, rvRepo, customerRepo, dealershipRepo, log)
	approvalService := service.NewApprovalService(workOrderRepo, customerRepo, rvRepo, dealershipRepo, approvalLogRepo,
		cfg.Approval.BaseURL, cfg.Approval.TokenTTL, log)
	dispatchService := service.NewDispatchService(approvalService, customerRepo, rvRepo, dealershipRepo,
		smsSender, emailSender, pdfGenerator, log)
	provisioningService := service.NewProvisioningService(dealershipRepo, profileRepo, identityStore, tokens, log)
	directoryService := service.NewDirectoryService(customerRepo, rvRepo, partRepo)
	adminService := service.NewAdminService(dealershipRepo, profileRepo, announcementRepo)
	notificationService := service.NewNotificationService(notificationRepo, profileRepo, log)
	reportService := service.NewReportService(workOrderRepo, profileRepo, customerRepo, dealershipRepo, excelGenerator, log)

	workOrderService.AddTransitionHook(notificationService)
	approvalService.AddTransitionHook(notificationService)

	sweeper := scheduler.NewSweeper(approvalService, log)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sweeper.Stop()

	handler := httphandler.NewHandler(
		provisioningService,
		workOrderService,
		approvalService,
		dispatchService,
		directoryService,
		adminService,
		notificationService,
		reportService,
		pdfGenerator,
		log,
	)
	authMiddleware := middleware.Auth(tokens)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.CORSOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting servicedesk")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
