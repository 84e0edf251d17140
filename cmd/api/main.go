package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/agent-trainer/pkg/validator"

	"github.com/johnquangdev/agent-trainer/internal/adapter/handler"
	"github.com/johnquangdev/agent-trainer/internal/adapter/repository"
	"github.com/johnquangdev/agent-trainer/internal/infrastructure/cache"
	"github.com/johnquangdev/agent-trainer/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/agent-trainer/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/agent-trainer/internal/infrastructure/storage"
	"github.com/johnquangdev/agent-trainer/internal/usecase/voice"
	pkgai "github.com/johnquangdev/agent-trainer/pkg/ai"
	"github.com/johnquangdev/agent-trainer/pkg/config"
	"github.com/johnquangdev/agent-trainer/pkg/jwt"
	"github.com/johnquangdev/agent-trainer/pkg/metrics"
)

// @title           Agent Trainer API
// @version         1.0
// @description     Voice performance analysis for call-center agent simulations

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Supabase access token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http.request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Cookie"},
		AllowCredentials: true,
	}))

	// Multipart overhead on top of the recording itself
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.Server.MaxUploadBytes+1<<20, 10)))

	logger.Info("initializing dependencies", zap.String("environment", cfg.Server.Environment))

	// Initialize Database
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Production deployments apply the schema with cmd/migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			logger.Fatal("DB_AUTO_MIGRATE is enabled in production; run cmd/migrate instead")
		}
		if err := database.AutoMigrate(db, logger); err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Initialize cache: Redis when configured, in-memory otherwise
	var store cache.Store
	checks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisStore(startCtx, cfg)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		store = redisStore
		checks["cache"] = redisStore.Ping
		logger.Info("redis cache connected", zap.String("addr", cfg.GetRedisAddr()))
	} else {
		store = cache.NewMemoryStore()
		logger.Warn("REDIS_HOST not set, using in-memory cache")
	}
	defer store.Close()

	// Initialize recording storage; uploads are disabled when it is unreachable
	var recordings voice.RecordingStorage
	minioClient, err := storage.NewMinIOClient(startCtx, &cfg.Storage)
	if err != nil {
		logger.Warn("recording storage unavailable, uploads disabled", zap.Error(err))
	} else {
		recordings = minioClient
		checks["storage"] = minioClient.Ping
	}

	// Initialize providers
	transcriber, err := newTranscriber(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize transcription provider", zap.Error(err))
	}

	var scorer voice.RubricScorer
	if cfg.Groq.APIKey != "" {
		groqClient := pkgai.NewGroqClient(&cfg.Groq)
		scorer = groqClient
		logger.Info("tone scoring enabled", zap.String("model", groqClient.Model()))
	} else {
		logger.Warn("GROQ_API_KEY not set, tone scores will be neutral")
	}

	rules, err := voice.LoadRules(cfg.Voice.RulesFile)
	if err != nil {
		logger.Fatal("failed to load voice rules", zap.Error(err))
	}

	analyzer := voice.NewAnalyzer(transcriber, scorer, rules, cfg.Voice.Language, logger)
	voiceService := voice.NewService(
		analyzer,
		repository.NewVoiceAnalysisRepository(db),
		store,
		recordings,
		voice.ServiceConfig{
			AnalysisTimeout: cfg.Voice.AnalysisTimeout,
			CacheTTL:        cfg.Redis.TTL,
			URLExpiry:       cfg.Storage.URLExpiry,
		},
		logger,
	)
	voiceHandler := handler.NewVoiceHandler(voiceService, cfg.Server.MaxUploadBytes, logger)

	// Supabase signs access tokens with the project JWT secret
	issuer := ""
	if cfg.Supabase.URL != "" {
		issuer = strings.TrimRight(cfg.Supabase.URL, "/") + "/auth/v1"
	}
	jwtManager := jwt.NewManager(cfg.Supabase.JWTSecret, cfg.Supabase.Audience, issuer)
	authMW := httpmw.EchoAuth(jwtManager, logger)

	router := handler.NewRouter(cfg, voiceHandler, authMW, checks)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("provider", analyzer.Provider()),
			zap.String("language", cfg.Voice.Language),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped gracefully")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newTranscriber(cfg *config.Config, logger *zap.Logger) (voice.Transcriber, error) {
	switch strings.ToLower(cfg.Voice.Provider) {
	case "assemblyai":
		return pkgai.NewAssemblyAIClient(&cfg.Assembly, logger), nil
	case "whisper":
		return pkgai.NewWhisperClient(&cfg.Whisper, logger), nil
	}
	return nil, fmt.Errorf("unsupported VOICE_PROVIDER %q", cfg.Voice.Provider)
}
