package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/config"
	"github.com/holthoefer/qmflow/internal/handlers"
	"github.com/holthoefer/qmflow/internal/logger"
	"github.com/holthoefer/qmflow/internal/middleware"
	"github.com/holthoefer/qmflow/internal/profile"
	"github.com/holthoefer/qmflow/internal/queue"
	"github.com/holthoefer/qmflow/internal/services/ai"
	"github.com/holthoefer/qmflow/internal/services/oidc"
	"github.com/holthoefer/qmflow/internal/storage"
	"github.com/holthoefer/qmflow/internal/store"
	"github.com/holthoefer/qmflow/internal/telemetry"
)

const serviceName = "qmflow-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry tracing
	var tracerEnabled bool
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerEnabled = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tp.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Document store
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, 10*time.Second)
	connectCancel()
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			zapLogger.Warn("failed_to_close_store_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_store", zap.String("database", cfg.MongoDatabase))

	// Redis for rate limiting
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// RabbitMQ with retry; broker startup can lag the application
	jobQueue := connectQueue(cfg.RabbitMQURL, zapLogger)
	if jobQueue != nil {
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
	}

	// Object storage
	var attachmentStore *storage.AttachmentStore
	if cfg.MinioEndpoint != "" {
		attachmentStore, err = storage.NewAttachmentStore(storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_object_storage", zap.Error(err))
		}
		zapLogger.Info("connected_to_object_storage", zap.String("bucket", cfg.MinioBucket))
	} else {
		zapLogger.Warn("object_storage_not_configured_attachments_disabled")
	}

	// Repositories
	profileRepo := store.NewProfileRepository(st, zapLogger)
	workstationRepo := store.NewWorkstationRepository(st)
	controlPlanRepo := store.NewControlPlanRepository(st)
	incidentRepo := store.NewIncidentRepository(st)
	eventRepo := store.NewEventRepository(st)
	sampleRepo := store.NewSampleRepository(st)
	noteRepo := store.NewNoteRepository(st)
	attachmentRepo := store.NewAttachmentRepository(st)

	// Services
	jwksManager := oidc.NewJWKSManager()
	verifier := oidc.NewVerifier(jwksManager, cfg.OIDCIssuer, cfg.OIDCJWKSURL)
	lifecycle := profile.NewLifecycle(profileRepo, cfg.BootstrapAdminEmail, zapLogger)
	adminService := profile.NewAdminService(profileRepo, zapLogger)

	var aiProvider ai.Provider
	if cfg.OpenAIKey != "" {
		aiProvider = ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
	} else {
		zapLogger.Warn("openai_key_not_configured_ai_features_disabled")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler()
	profileHandler := handlers.NewProfileHandler(adminService)
	workstationHandler := handlers.NewWorkstationHandler(workstationRepo)
	controlPlanHandler := handlers.NewControlPlanHandler(controlPlanRepo, aiProvider, zapLogger)
	incidentHandler := handlers.NewIncidentHandler(incidentRepo)
	eventHandler := handlers.NewEventHandler(eventRepo)
	sampleHandler := handlers.NewSampleHandler(sampleRepo)
	noteHandler := handlers.NewNoteHandler(noteRepo, jobQueue, zapLogger)
	assistHandler := handlers.NewAssistHandler(aiProvider, zapLogger)
	healthChecker := handlers.NewHealthChecker(st, redisClient, jobQueue)

	var attachmentHandler *handlers.AttachmentHandler
	if attachmentStore != nil {
		attachmentHandler = handlers.NewAttachmentHandler(attachmentRepo, attachmentStore, zapLogger)
	}

	// Router and middleware. gorilla/mux runs middleware in registration
	// order, so the outermost concerns register first.
	r := mux.NewRouter()

	if tracerEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// Authenticated API
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)
	apiRouter.Use(middleware.Auth(verifier, lifecycle, zapLogger))

	authHandler.RegisterRoutes(apiRouter.PathPrefix("/auth").Subrouter())
	profileHandler.RegisterRoutes(apiRouter.PathPrefix("/profiles").Subrouter())
	workstationHandler.RegisterRoutes(apiRouter.PathPrefix("/workstations").Subrouter())
	controlPlanHandler.RegisterRoutes(apiRouter.PathPrefix("/controlplans").Subrouter())
	incidentHandler.RegisterRoutes(apiRouter.PathPrefix("/incidents").Subrouter())
	eventHandler.RegisterRoutes(apiRouter.PathPrefix("/events").Subrouter())
	sampleHandler.RegisterRoutes(apiRouter.PathPrefix("/samples").Subrouter())
	noteHandler.RegisterRoutes(apiRouter.PathPrefix("/notes").Subrouter())
	assistHandler.RegisterRoutes(apiRouter.PathPrefix("/assist").Subrouter())
	if attachmentHandler != nil {
		attachmentHandler.RegisterRoutes(apiRouter.PathPrefix("/attachments").Subrouter())
	}

	// Preflight requests short-circuit after the CORS middleware sets headers
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	// DLQ garbage collection, hourly with 24h retention
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(backgroundCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	backgroundCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue dials RabbitMQ with exponential backoff. Returns nil when the
// broker never becomes reachable; tag suggestions are then disabled but the
// API stays up.
func connectQueue(amqpURL string, zapLogger *zap.Logger) queue.JobQueue {
	if amqpURL == "" {
		zapLogger.Warn("rabbitmq_not_configured_tag_jobs_disabled")
		return nil
	}

	const maxRetries = 10
	const initialDelay = 2 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue
		}

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Error("failed_to_connect_to_rabbitmq_after_retries", zap.Int("max_retries", maxRetries))
	return nil
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
