package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boam79/ai-interview/internal/archive"
	"github.com/boam79/ai-interview/internal/config"
	"github.com/boam79/ai-interview/internal/handlers"
	"github.com/boam79/ai-interview/internal/jobs"
	"github.com/boam79/ai-interview/internal/llm"
	_ "github.com/boam79/ai-interview/internal/llm/gemini"
	_ "github.com/boam79/ai-interview/internal/llm/openai"
	"github.com/boam79/ai-interview/internal/metrics"
	"github.com/boam79/ai-interview/internal/orchestrator"
	"github.com/boam79/ai-interview/internal/prompts"
	"github.com/boam79/ai-interview/internal/questions"
	"github.com/boam79/ai-interview/internal/routers"
	"github.com/boam79/ai-interview/internal/session"
	"github.com/boam79/ai-interview/internal/summary"
	"github.com/boam79/ai-interview/internal/transcribe"
	"github.com/boam79/ai-interview/internal/tts"
	"github.com/boam79/ai-interview/internal/webhook"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, transcribeHandler *handlers.TranscribeHandler, ttsHandler *handlers.TTSHandler, archiveHandler *handlers.ArchiveHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler, transcribeHandler, ttsHandler)
	if archiveHandler != nil {
		routers.ArchiveRoutes(router, archiveHandler)
	}
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&archive.InterviewRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Int("question_budget", cfg.QuestionBudget))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// AI provider based on configuration
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	// session store: Redis when configured, in-memory otherwise
	var store session.Store
	if cfg.RedisAddr != "" {
		store = session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL, cfg.QuestionBudget)
		logger.Info("Using Redis session store", zap.String("addr", cfg.RedisAddr))
	} else {
		store = session.NewMemoryStore(cfg.QuestionBudget)
		logger.Info("Using in-memory session store")
	}

	retryPolicy := llm.DefaultRetryPolicy()
	questionGen := questions.NewGenerator(aiProvider, promptManager, retryPolicy, logger)
	summaryGen := summary.NewGenerator(aiProvider, promptManager, retryPolicy, logger)

	orch := orchestrator.New(store, questionGen, summaryGen, cfg.CallTimeout, logger)

	// completed interviews are pushed to the webhook when one is configured
	if cfg.WebhookURL != "" {
		if !webhook.IsValidURL(cfg.WebhookURL) {
			logger.Fatal("WEBHOOK_URL must be a valid https URL", zap.String("url", cfg.WebhookURL))
		}
		orch.SetWebhook(webhook.NewClient(cfg.WebhookURL, logger))
		logger.Info("Webhook delivery enabled")
	}

	// speech-to-text and text-to-speech clients
	whisperConfig, err := transcribe.NewWhisperConfig()
	if err != nil {
		logger.Fatal("Failed to initialize transcription config", zap.Error(err))
	}
	adapter := transcribe.NewAdapter(transcribe.NewWhisperClient(whisperConfig), cfg.StreamPacing, logger)

	ttsConfig, err := tts.NewConfig()
	if err != nil {
		logger.Fatal("Failed to initialize TTS config", zap.Error(err))
	}
	ttsClient := tts.NewClient(ttsConfig)

	interviewHandler := handlers.NewInterviewHandler(orch, logger)
	transcribeHandler := handlers.NewTranscribeHandler(adapter, logger)
	ttsHandler := handlers.NewTTSHandler(ttsClient, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, store, cfg)

	// Initialize database for interview archival
	db, err := initDatabase()
	if err != nil {
		logger.Error("Failed to initialize database, interview archival will be disabled", zap.Error(err))
	}

	var archiveHandler *handlers.ArchiveHandler
	var exporterJob *jobs.ArchiveExporterJob

	if db != nil {
		archiveManager := archive.NewManager(db)
		orch.SetArchive(archiveManager)
		archiveHandler = handlers.NewArchiveHandler(archiveManager, logger)

		exporterConfig := &jobs.ExporterConfig{
			Schedule:      cfg.ExportSchedule,
			ExportDir:     cfg.ExportDir,
			ExportEnabled: cfg.ExportEnabled,
		}
		exporterJob = jobs.NewArchiveExporterJob(archiveManager, exporterConfig)
		if exporterConfig.ExportEnabled {
			if err := exporterJob.Start(); err != nil {
				logger.Error("Failed to start archive exporter job", zap.Error(err))
			} else {
				logger.Info("Archive exporter job started", zap.String("schedule", exporterConfig.Schedule))
			}
		}

		logger.Info("Interview archival initialized successfully")
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://interview.boam79.dev"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// request timeout covers the slowest path: an audio upload followed
	// by one speech API round trip
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(cfg.CallTimeout+30*time.Second))
	router.Use(metrics.Middleware("interview"))

	registerRoutes(router, interviewHandler, transcribeHandler, ttsHandler, archiveHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts sized for audio uploads and LLM calls
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.CallTimeout + 60*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
		logger.Info("Archive exporter job stopped")
	}

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
