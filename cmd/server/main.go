package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/config"
	"github.com/benvon/questlog/internal/gamification"
	"github.com/benvon/questlog/internal/handlers"
	"github.com/benvon/questlog/internal/lifecycle"
	"github.com/benvon/questlog/internal/logger"
	"github.com/benvon/questlog/internal/middleware"
	"github.com/benvon/questlog/internal/notify"
	"github.com/benvon/questlog/internal/queue"
	"github.com/benvon/questlog/internal/remotesync"
	"github.com/benvon/questlog/internal/scheduler"
	"github.com/benvon/questlog/internal/storage"
	"github.com/benvon/questlog/internal/telemetry"
)

const serviceName = "questlog-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger("server", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("timezone", cfg.Location.String()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
		zap.Bool("sync_enabled", cfg.RabbitMQURL != ""),
	)

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(ctx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	catalog, err := gamification.LoadCatalog()
	if err != nil {
		zapLogger.Fatal("failed_to_load_catalog", zap.Error(err))
	}

	redisClient, err := storage.NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	store := storage.NewRedisStore(redisClient, cfg.RedisKeyPrefix)
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	deps := map[string]handlers.Pinger{"redis": store}

	// Remote sync is optional for the API; without a broker mutations stay local
	var trigger remotesync.Trigger = remotesync.NoopTrigger{}
	var queueTrigger *remotesync.QueueTrigger
	if cfg.RabbitMQURL != "" {
		jobQueue, err := connectQueue(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		queueTrigger = remotesync.NewQueueTrigger(jobQueue, zapLogger, 5*time.Second)
		trigger = queueTrigger
		deps["queue"] = jobQueue
	}

	sink := notify.NewZapSink(zapLogger)
	manager := lifecycle.New(store, catalog, lifecycle.Options{
		Sink:               sink,
		Trigger:            trigger,
		Logger:             zapLogger,
		Location:           cfg.Location,
		DefaultPreferences: cfg.DefaultPreferences(),
	})
	if err := manager.Load(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_load_state", zap.Error(err))
	}

	sched := scheduler.New(zapLogger, cfg.Location)
	defer sched.Stop()
	var fullSync scheduler.FullSyncRequester
	if queueTrigger != nil {
		fullSync = queueTrigger
	}
	reminders := scheduler.NewReminders(sched, manager, sink, fullSync, zapLogger)
	reminders.Apply(manager.Preferences())
	manager.OnPreferencesChanged(reminders.Apply)

	rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimit, cfg.RedisKeyPrefix, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	openAPIHandler, err := handlers.NewOpenAPIHandler()
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_document", zap.Error(err))
	}

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first registered is outermost
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL, zapLogger))
	r.Use(middleware.MaxRequestSize(cfg.MaxRequestBytes))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.HandleFunc("/healthz", handlers.NewHealthChecker(deps).HealthCheck).Methods("GET")
	openAPIHandler.RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(rateLimitMW)
	handlers.NewTaskHandler(manager, zapLogger).RegisterRoutes(api.PathPrefix("/tasks").Subrouter())
	handlers.NewCategoryHandler(manager, zapLogger).RegisterRoutes(api.PathPrefix("/categories").Subrouter())
	handlers.NewProfileHandler(manager, zapLogger).RegisterRoutes(api)

	// Preflight requests are answered by the CORS middleware before routing
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	if queueTrigger != nil {
		queueTrigger.Wait()
	}

	zapLogger.Info("server_exited")
}

// connectQueue retries with exponential backoff to ride out broker startup
func connectQueue(url string, zapLogger *zap.Logger) (*queue.RabbitMQQueue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err
		delay := min(initialDelay*time.Duration(1<<uint(attempt)), 30*time.Second)
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}
	return nil, lastErr
}
