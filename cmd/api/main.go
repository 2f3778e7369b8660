package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/engagekit/engage-go-api/internal/config"
	"github.com/engagekit/engage-go-api/internal/database"
	"github.com/engagekit/engage-go-api/internal/handler"
	"github.com/engagekit/engage-go-api/internal/middleware"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/repository"
	"github.com/engagekit/engage-go-api/internal/router"
	"github.com/engagekit/engage-go-api/internal/service"
	"github.com/engagekit/engage-go-api/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Organization{},
		&models.Program{},
		&models.Activity{},
		&models.Question{},
		&models.Participant{},
		&models.Response{},
		&models.Answer{},
		&models.NotificationTemplate{},
		&models.Notification{},
		&models.NotificationReport{},
		&models.UserNotification{},
		&models.User{},
		&models.ContactRequest{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, cross-node notification fan-out disabled")
		} else {
			defer natsConn.Close()
		}
	}

	mail, err := mailer.New(mailer.Config{
		APIKey:      cfg.ResendAPIKey,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create mail client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := repository.NewActivityRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userNotificationRepo := repository.NewUserNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	templateService := service.NewTemplateService(templateRepo, activityRepo, validate, logger)
	participantService := service.NewParticipantService(participantRepo, validate, logger)
	userNotificationService := service.NewUserNotificationService(userNotificationRepo, redisClient, "engage:notifications", natsConn, validate, logger)
	userNotificationService.Start(ctx)

	emailSender := service.NewEmailSender(mail, notificationRepo, logger)
	smsSender := service.NewSMSSender(notificationRepo, logger)
	notificationService := service.NewNotificationService(
		activityRepo,
		participantRepo,
		responseRepo,
		notificationRepo,
		templateService,
		emailSender,
		smsSender,
		userNotificationService,
		cfg,
		validate,
		logger,
	)
	activityService, err := service.NewActivityService(activityRepo, userRepo, notificationService, validate, logger)
	if err != nil {
		log.Fatalf("failed to create activity service: %v", err)
	}
	statsService := service.NewStatsService(activityRepo, responseRepo, participantRepo, redisClient, cfg.StatsCacheTTL, logger)
	exportService := service.NewExportService(activityRepo, responseRepo, statsService, cfg.ExportDir, logger)
	contactService := service.NewContactService(contactRepo, userRepo, userNotificationService, mail, redisClient, validate, cfg, logger)

	activityHandler := handler.NewActivityHandler(activityService, logger)
	templateHandler := handler.NewTemplateHandler(templateService, logger)
	participantHandler := handler.NewParticipantHandler(participantService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	userNotificationHandler := handler.NewUserNotificationHandler(userNotificationService, logger, cfg.SSEKeepAlive)
	statsHandler := handler.NewStatsHandler(statsService, logger)
	exportHandler := handler.NewExportHandler(exportService, cfg.ExportDir, logger)
	contactHandler := handler.NewContactHandler(contactService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler:         activityHandler,
		TemplateHandler:         templateHandler,
		ParticipantHandler:      participantHandler,
		NotificationHandler:     notificationHandler,
		UserNotificationHandler: userNotificationHandler,
		StatsHandler:            statsHandler,
		ExportHandler:           exportHandler,
		ContactHandler:          contactHandler,
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
