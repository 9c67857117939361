package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kemalcalak/Resume-Builder/internal/ai"
	"github.com/kemalcalak/Resume-Builder/internal/api"
	"github.com/kemalcalak/Resume-Builder/internal/auth"
	"github.com/kemalcalak/Resume-Builder/internal/config"
	"github.com/kemalcalak/Resume-Builder/internal/database"
	"github.com/kemalcalak/Resume-Builder/internal/document"
	"github.com/kemalcalak/Resume-Builder/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := auth.NewVerifierFromFile(cfg.Auth.PublicKeyPath, cfg.Auth.Issuer)
	if err != nil {
		log.Fatalf("init token verifier: %v", err)
	}

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("name", cfg.Database.Name),
	)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password})
	defer asynqClient.Close()

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}

	deps := api.Dependencies{
		Store:          document.NewStore(db, logger),
		Verifier:       verifier,
		Queue:          asynqClient,
		Signer:         storageClient,
		Redis:          redisClient,
		Logger:         logger,
		AllowedOrigins: cfg.API.AllowedOrigins,
		AIRateLimit:    cfg.AI.RateLimitPerHour,
		ExportMaxRetry: cfg.Worker.MaxRetry,
	}

	if cfg.AI.GeminiAPIKey != "" {
		gen, err := ai.NewGeminiGenerator(ctx, cfg.AI.GeminiAPIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("init ai generator: %v", err)
		}
		deps.Writer = ai.NewAssistant(gen)
		logger.Info("ai suggestions enabled", slog.String("model", cfg.AI.Model))
	} else {
		logger.Warn("GEMINI_API_KEY not set, ai suggestions disabled")
	}

	if cfg.Clamd.Addr != "" {
		deps.Scanner = api.ClamdScanner{Addr: cfg.Clamd.Addr}
	}

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, deps)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("api listening", slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to start api server: %v", err)
	}
}
