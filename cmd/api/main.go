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
	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/config"
	"github.com/noah-isme/scholartrack-api/internal/database"
	"github.com/noah-isme/scholartrack-api/internal/handler"
	"github.com/noah-isme/scholartrack-api/internal/middleware"
	"github.com/noah-isme/scholartrack-api/internal/repository"
	"github.com/noah-isme/scholartrack-api/internal/router"
	"github.com/noah-isme/scholartrack-api/internal/service"
	cloud "github.com/noah-isme/scholartrack-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	ctx := context.Background()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cloudinary client")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	setRepo := repository.NewRequirementSetRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	var revocation service.TokenRevocationStore
	var revocationChecker middleware.RevocationChecker
	var rateLimitStorage fiber.Storage
	if redisClient != nil {
		store := service.NewRedisTokenStore(redisClient, "")
		revocation = store
		revocationChecker = store
		rateLimitStorage = middleware.NewRedisStorage(redisClient, "")
	} else {
		logger.Warn().Msg("redis not configured; logout will not revoke tokens and rate limits are per instance")
	}

	events := service.NewEventPublisher(natsConn, cfg.NATSSubjectPrefix, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	setService := service.NewRequirementSetService(setRepo, validate, activityService, logger)
	assignmentService := service.NewAssignmentService(setRepo, assignmentRepo, userRepo, validate, activityService, events, logger)
	submissionService := service.NewSubmissionService(service.SubmissionServiceDeps{
		Submissions: submissionRepo,
		Sets:        setRepo,
		Users:       userRepo,
		Uploader:    uploader,
		Validator:   validate,
		Activity:    activityService,
		Events:      events,
		MaxSizeMB:   cfg.UploadMaxSizeMB,
	}, logger)
	commentService := service.NewCommentService(commentRepo, submissionRepo, validate, logger)
	viewService := service.NewStudentViewService(setRepo, submissionRepo, userRepo, logger)
	userService := service.NewUserService(userRepo, uploader, validate, activityService, service.SessionRevocation{Store: revocation, TTL: cfg.JWTTTL}, cfg.UploadMaxSizeMB, logger)
	articleService := service.NewArticleService(articleRepo, uploader, validate, activityService, cfg.UploadMaxSizeMB, logger)
	authService := service.NewAuthService(userRepo, revocation, validate, service.AuthConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
		Issuer: cfg.AppName,
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		RequirementSetHandler: handler.NewRequirementSetHandler(setService, logger),
		AssignmentHandler:     handler.NewAssignmentHandler(assignmentService, logger),
		StudentViewHandler:    handler.NewStudentViewHandler(viewService, logger),
		SubmissionHandler:     handler.NewSubmissionHandler(submissionService, logger),
		CommentHandler:        handler.NewCommentHandler(commentService, logger),
		UserHandler:           handler.NewUserHandler(userService, logger),
		AuthHandler:           handler.NewAuthHandler(authService, logger),
		ArticleHandler:        handler.NewArticleHandler(articleService, logger),
		ActivityHandler:       handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret, revocationChecker),
		HealthChecks:          healthChecks(db, redisClient, natsConn),
		RateLimitStorage:      rateLimitStorage,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("nats drain failed")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Str("service", "scholartrack-api").Logger()
}

func healthChecks(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) []handler.HealthCheck {
	checks := []handler.HealthCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	if natsConn != nil {
		checks = append(checks, handler.HealthCheck{
			Name: "nats",
			Check: func(context.Context) error {
				if !natsConn.IsConnected() {
					return nats.ErrConnectionClosed
				}
				return nil
			},
		})
	}
	return checks
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
