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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scribe-go-api/internal/config"
	"github.com/noah-isme/scribe-go-api/internal/database"
	"github.com/noah-isme/scribe-go-api/internal/handler"
	"github.com/noah-isme/scribe-go-api/internal/middleware"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/repository"
	"github.com/noah-isme/scribe-go-api/internal/router"
	"github.com/noah-isme/scribe-go-api/internal/service"
	"github.com/noah-isme/scribe-go-api/pkg/ai"
	cloud "github.com/noah-isme/scribe-go-api/pkg/cloudinary"
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
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Document{},
		&models.VersionEntry{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionResult{},
		&models.AnalysisResult{},
		&models.AnalysisSection{},
		&models.Comment{},
		&models.Feedback{},
		&models.WordSuggestion{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, document cache disabled")
	}

	var events service.EventPublisher
	if cfg.NATSURL != "" {
		natsConn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		events = natsConn
	} else {
		logger.Warn().Msg("nats url not configured, submission events disabled")
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudService
	} else {
		logger.Warn().Msg("cloudinary not configured, source archival disabled")
	}

	var analyzer ai.Analyzer
	if cfg.OpenAIAPIKey != "" {
		openaiAnalyzer, err := ai.NewOpenAIAnalyzer(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AnalysisModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create analyzer: %v", err)
		}
		analyzer = openaiAnalyzer
	} else {
		logger.Warn().Msg("openai api key not configured, document analysis disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	chainRepo := repository.NewVersionChainRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	resultRepo := repository.NewSubmissionResultRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	policy := service.NewAccessPolicy(userRepo, groupRepo, documentRepo, logger)

	documentService := service.NewDocumentService(documentRepo, chainRepo, policy, validate, redisClient, cfg.DocumentCacheTTL, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, policy, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, documentRepo, policy, validate, events, cfg.NATSSubject, logger)
	evaluationService := service.NewEvaluationService(resultRepo, policy, validate, events, cfg.NATSSubject, logger)
	analysisService := service.NewAnalysisService(analysisRepo, documentRepo, policy, analyzer, logger)
	ingestService := service.NewIngestService(documentService, uploader, nil, logger)

	documentHandler := handler.NewDocumentHandler(documentService, ingestService, analysisService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, evaluationService, logger)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DocumentHandler:   documentHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		EvaluationHandler: evaluationHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
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
