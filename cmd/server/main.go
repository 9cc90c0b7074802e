package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"folio/internal/analysis"
	"folio/internal/assemble"
	"folio/internal/auth"
	"folio/internal/config"
	"folio/internal/convert"
	"folio/internal/domain/repositories"
	exportformats "folio/internal/export"
	"folio/internal/generation"
	"folio/internal/handler"
	"folio/internal/handler/sse"
	"folio/internal/markup"
	"folio/internal/middleware"
	"folio/internal/queue"
	"folio/internal/repository/postgres"
	"folio/internal/service"
	"folio/internal/service/entitlement"
	exportservice "folio/internal/service/export"
	generationservice "folio/internal/service/generation"
	"folio/internal/storage"
	"folio/internal/tier"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer func() { _ = jwtVerifier.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected", "max_conns", 25, "min_conns", 5)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	projectRepo := postgres.NewProjectRepository(repoConfig)
	chapterRepo := postgres.NewChapterRepository(repoConfig)
	templateRepo := postgres.NewTemplateRepository(repoConfig)
	artifactRepo := postgres.NewArtifactRepository(repoConfig)
	entitlementRepo := postgres.NewEntitlementRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	tiers, err := tier.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load tier registry: %v", err)
	}

	ledger := entitlement.NewLedger(entitlementRepo, projectRepo, tiers, logger, nil)
	analyzer := analysis.NewAnalyzer()
	assembler := assemble.New(markup.New(), nil)

	store := storage.NewLocalStore(cfg.StorageBasePath, cfg.StorageBaseURL, logger)
	if cfg.UploadSecret == "" {
		log.Fatalf("UPLOAD_SECRET is required")
	}
	presigner := storage.NewPresigner([]byte(cfg.UploadSecret), cfg.PublicBaseURL, nil)

	jobs, err := setupQueue(ctx, cfg, chapterRepo, analyzer, logger)
	if err != nil {
		log.Fatalf("Failed to start analysis queue: %v", err)
	}

	provider := setupProvider(cfg, logger)

	projectService := service.NewProjectService(projectRepo, ledger, logger)
	chapterService := service.NewChapterService(chapterRepo, projectRepo, txManager, ledger, analyzer, convert.NewRegistry(), logger)
	exportService := exportservice.NewOrchestrator(
		projectRepo, chapterRepo, templateRepo, artifactRepo,
		ledger, assembler, exportformats.NewRegistry(), store,
		logger, nil,
	)
	generationService := generationservice.NewService(projectRepo, chapterRepo, ledger, provider, analyzer, jobs, logger)

	projectHandler := handler.NewProjectHandler(projectService, logger)
	chapterHandler := handler.NewChapterHandler(chapterService, logger)
	templateHandler := handler.NewTemplateHandler(templateRepo, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)
	accountHandler := handler.NewAccountHandler(ledger, logger)
	generationHandler := handler.NewGenerationHandler(generationService, sse.DefaultConfig(), logger)
	uploadHandler := handler.NewUploadHandler(presigner, store, logger)

	logger.Info("services initialized", "generation_provider", provider.Name())

	// Authenticated API routes (Go 1.22+ enhanced patterns)
	api := http.NewServeMux()

	api.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	api.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	api.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	api.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	api.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	api.HandleFunc("POST /api/projects/{projectID}/chapters", chapterHandler.CreateChapter)
	api.HandleFunc("GET /api/projects/{projectID}/chapters", chapterHandler.ListChapters)
	api.HandleFunc("POST /api/projects/{projectID}/chapters/import", chapterHandler.ImportChapter)
	api.HandleFunc("GET /api/projects/{projectID}/chapters/{id}", chapterHandler.GetChapter)
	api.HandleFunc("PATCH /api/projects/{projectID}/chapters/{id}", chapterHandler.UpdateChapter)
	api.HandleFunc("DELETE /api/projects/{projectID}/chapters/{id}", chapterHandler.DeleteChapter)

	api.HandleFunc("GET /api/templates", templateHandler.ListTemplates)
	api.HandleFunc("GET /api/templates/{id}", templateHandler.GetTemplate)

	api.HandleFunc("POST /api/projects/{projectID}/exports", exportHandler.Export)
	api.HandleFunc("GET /api/projects/{projectID}/exports", exportHandler.ListArtifacts)

	api.HandleFunc("GET /api/account", accountHandler.GetAccount)
	api.HandleFunc("POST /api/account/credits", accountHandler.PurchaseCredits)
	api.HandleFunc("POST /api/account/tier", accountHandler.ChangeTier)

	api.HandleFunc("POST /api/generate", generationHandler.Complete)
	api.HandleFunc("POST /api/projects/{projectID}/chapters/{id}/generate", generationHandler.Stream)

	api.HandleFunc("POST /api/uploads/covers", uploadHandler.PresignCoverUpload)

	// Public routes: health, token-authorized uploads, stored files.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.HandleFunc("PUT /v1/uploads", uploadHandler.ReceiveUpload)
	mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.StorageBasePath))))
	mux.Handle("/api/", middleware.Auth(jwtVerifier, logger)(api))

	// Order: CORS -> Recovery -> Routes. CORS outermost so OPTIONS
	// pre-flights never hit auth.
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)
	root = cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	}).Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
}

// setupLogger builds the JSON logger. Debug mode also mirrors logs to
// a timestamped file so streamed-generation sessions can be replayed.
func setupLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if cfg.Debug {
		if logFile, err := config.SetupLogFile("logs", 5); err == nil {
			out = io.MultiWriter(os.Stdout, logFile)
		}
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: logLevel}))
}

// setupQueue wires the chapter-analysis worker. Redis Streams when a
// URL is configured; an in-process queue otherwise.
func setupQueue(ctx context.Context, cfg *config.Config, chapterRepo repositories.ChapterRepository, analyzer *analysis.Analyzer, logger *slog.Logger) (queue.Enqueuer, error) {
	analysisHandler := queue.NewChapterAnalysisHandler(chapterRepo, analyzer, logger)

	if cfg.RedisURL == "" {
		memQueue := queue.NewMemoryQueue(logger)
		memQueue.RegisterHandler(queue.TypeChapterAnalysis, analysisHandler.Handle)
		if err := memQueue.Start(ctx); err != nil {
			return nil, err
		}
		logger.Info("analysis queue running in-process")
		return memQueue, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	hostname, _ := os.Hostname()
	consumer := queue.NewRedisConsumer(client, hostname, logger)
	consumer.RegisterHandler(queue.TypeChapterAnalysis, analysisHandler.Handle)
	if err := consumer.Start(ctx); err != nil {
		return nil, err
	}

	logger.Info("analysis queue connected", "consumer", hostname)
	return queue.NewRedisProducer(client, logger), nil
}

func setupProvider(cfg *config.Config, logger *slog.Logger) generation.Provider {
	if cfg.GenerationProvider == "anthropic" && cfg.AnthropicAPIKey != "" {
		return generation.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.GenerationModel)
	}
	if cfg.GenerationProvider == "anthropic" {
		logger.Warn("ANTHROPIC_API_KEY not set, falling back to lorem provider")
	}
	return generation.NewLoremProvider()
}
