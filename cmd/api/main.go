package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/techexpert/helpdesk/internal/api/http"
	"github.com/techexpert/helpdesk/internal/api/http/handlers"
	"github.com/techexpert/helpdesk/internal/auth"
	"github.com/techexpert/helpdesk/internal/config"
	"github.com/techexpert/helpdesk/internal/events"
	"github.com/techexpert/helpdesk/internal/mail"
	"github.com/techexpert/helpdesk/internal/observability"
	"github.com/techexpert/helpdesk/internal/persistence"
	"github.com/techexpert/helpdesk/internal/repository"
	"github.com/techexpert/helpdesk/internal/service"
	"github.com/techexpert/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	offeringRepo := repository.NewServiceOfferingRepository(pool)
	categoryRepo := repository.NewProblemCategoryRepository(pool)
	contactRoleRepo := repository.NewContactRoleRepository(pool)
	softwareRepo := repository.NewSoftwareRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	dispatcher := events.NewInMemoryDispatcher()

	mailQueue := worker.NewMailQueue(mail.NewSMTPMailer(cfg.Notification), logger, metrics, 0)
	defer mailQueue.Close()

	notificationService := service.NewNotificationService(mailQueue, userRepo, logger, metrics, cfg.Notification)
	notificationService.Register(dispatcher)

	capabilities := auth.NewCapabilityChecker(userRepo)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		EscalationRepo: escalationRepo,
		ReportRepo:     reportRepo,
		AttachmentRepo: attachmentRepo,
		UserRepo:       userRepo,
		CompanyRepo:    companyRepo,
		OfferingRepo:   offeringRepo,
		Tx:             txRunner,
		Capabilities:   capabilities,
		Dispatcher:     dispatcher,
		Logger:         logger,
		StoreTimeout:   cfg.App.StoreTimeout(),
	})
	statsService := service.NewStatsService(ticketRepo, redis.Client, logger)
	authService := service.NewAuthService(userRepo, tokenManager)
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		CompanyRepo:     companyRepo,
		OfferingRepo:    offeringRepo,
		CategoryRepo:    categoryRepo,
		ContactRoleRepo: contactRoleRepo,
		SoftwareRepo:    softwareRepo,
	})

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, statsService),
		Users:          handlers.NewUsersHandler(authService, userService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
