package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coursegen-backend/internal/config"
	"coursegen-backend/internal/database"
	"coursegen-backend/internal/handlers"
	"coursegen-backend/internal/logger"
	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/pipeline"
	"coursegen-backend/internal/repository"
	"coursegen-backend/internal/router"
	"coursegen-backend/internal/services"
	"coursegen-backend/internal/storage"
	"coursegen-backend/internal/websocket"
	"coursegen-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if err := cfg.Validate(); err != nil {
		zlog.Fatal("invalid configuration", zap.Error(err))
	}
	zlog.Info("starting course generation backend", zap.String("env", cfg.Env))

	ctx := context.Background()

	// ──── Step 2: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		zlog.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClients.Close()
	zlog.Info("redis connected")

	// ──── Step 3: Initialize Document Store ────
	store, closeStore, err := openStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("document store initialization failed", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()
	zlog.Info("document store ready", zap.String("backend", cfg.StoreBackend))

	courseRepo := repository.NewCourseRepo(store)
	jobRepo := repository.NewJobRepo(store)

	// ──── Step 4: Initialize Providers ────
	text, closeText, err := openTextProvider(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("text provider initialization failed", zap.String("provider", cfg.TextProvider), zap.Error(err))
	}
	defer closeText()

	images := openImageProvider(cfg, zlog)

	imageStore, closeImages, err := openImageStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("image store initialization failed", zap.String("store", cfg.ImageStore), zap.Error(err))
	}
	defer closeImages()

	enricher := pipeline.NewEnricher(images, imageStore, pipeline.EnricherConfig{
		Width:  cfg.ImageWidth,
		Height: cfg.ImageHeight,
		Delay:  cfg.ImageCallDelay,
	}, zlog)
	generator := pipeline.NewGenerator(text, enricher, courseRepo, zlog)
	notifier := services.NewNotifier(redisClients.Queue, zlog)

	// ──── Step 5: Start Job Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, generator, jobRepo, notifier, cfg.WorkerCount, zlog)
	workerPool.Start()

	// ──── Step 6: Start WebSocket Hub ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth, zlog)

	// ──── Step 7: Start HTTP Server ────
	generateLimiter := middleware.NewRateLimiter(cfg.GenerateRatePerMinute)
	defer generateLimiter.Stop()

	courseHandler := handlers.NewCourseHandler(courseRepo, jobRepo, worker.NewQueue(redisClients.Queue), cfg.GenerationMaxAttempts, zlog)
	jobHandler := handlers.NewJobHandler(jobRepo)

	var uploads router.Uploads
	if cfg.ImageStore == "local" {
		uploads = router.Uploads{Dir: cfg.ImageStoragePath, Prefix: cfg.ImagePublicBaseURL}
	}

	r := router.New(zlog, jwtAuth, generateLimiter, courseHandler, jobHandler, wsHub, uploads, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdown(shutdownCtx, workerPool, wsHub, server, zlog)
	}()

	zlog.Info("server ready",
		zap.String("api", fmt.Sprintf("http://localhost:%s/api/v1", cfg.Port)),
		zap.String("ws", fmt.Sprintf("ws://localhost:%s/api/v1/ws", cfg.Port)),
	)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("server error", zap.Error(err))
	}
	<-done
	zlog.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (repository.DocumentStore, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.WorkerCount)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, pool, cfg.MigrationsDir, zlog); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return repository.NewPostgresStore(pool), pool.Close, nil
	case "firestore":
		fs, err := repository.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.GoogleCredentials)
		if err != nil {
			return nil, nil, err
		}
		return fs, closer(fs, "firestore", zlog), nil
	default:
		zlog.Warn("using in-memory document store; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}
}

func openTextProvider(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (pipeline.TextGenerator, func(), error) {
	switch cfg.TextProvider {
	case "openai":
		t, err := services.NewOpenAIText(services.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}, zlog)
		if err != nil {
			return nil, nil, err
		}
		return t, func() {}, nil
	default:
		t, err := services.NewGeminiText(ctx, services.GeminiConfig{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			ConcurrentReqs: cfg.GeminiConcurrentReqs,
		}, zlog)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	}
}

// openImageProvider returns nil when no provider is usable; every image
// then resolves to a placeholder.
func openImageProvider(cfg *config.Config, zlog *zap.Logger) pipeline.ImageGenerator {
	var (
		images pipeline.ImageGenerator
		err    error
	)
	switch cfg.ImageProvider {
	case "huggingface":
		var hf *services.HuggingFaceImages
		hf, err = services.NewHuggingFaceImages(services.HuggingFaceConfig{
			Token:    cfg.HuggingFaceToken,
			ModelURL: cfg.HuggingFaceModelURL,
		})
		if err == nil {
			images = hf
		}
	case "openai":
		var oa *services.OpenAIImages
		oa, err = services.NewOpenAIImages(services.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err == nil {
			images = oa
		}
	}

	if err != nil {
		zlog.Warn("image provider unavailable, using placeholders", zap.String("provider", cfg.ImageProvider), zap.Error(err))
	} else if images == nil {
		zlog.Info("image generation disabled, using placeholders")
	}
	return images
}

func openImageStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (pipeline.ImageStore, func(), error) {
	if cfg.ImageStore == "gcs" {
		gcs, err := storage.NewGCSImageStore(ctx, storage.GCSConfig{
			Bucket:          cfg.GCSBucket,
			CDNDomain:       cfg.GCSCDNDomain,
			CredentialsFile: cfg.GoogleCredentials,
		}, zlog)
		if err != nil {
			return nil, nil, err
		}
		return gcs, closer(gcs, "gcs", zlog), nil
	}

	local, err := storage.NewLocalImageStore(cfg.ImageStoragePath, cfg.ImagePublicBaseURL)
	if err != nil {
		return nil, nil, err
	}
	return local, func() {}, nil
}

func closer(c io.Closer, name string, zlog *zap.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			zlog.Warn("close failed", zap.String("resource", name), zap.Error(err))
		}
	}
}
