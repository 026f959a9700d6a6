package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jafar090/CompliBot/internal/archive"
	"github.com/Jafar090/CompliBot/internal/cache"
	"github.com/Jafar090/CompliBot/internal/config"
	"github.com/Jafar090/CompliBot/internal/convo"
	"github.com/Jafar090/CompliBot/internal/handlers"
	"github.com/Jafar090/CompliBot/internal/intake"
	"github.com/Jafar090/CompliBot/internal/intent"
	"github.com/Jafar090/CompliBot/internal/llm"
	"github.com/Jafar090/CompliBot/internal/metrics"
	"github.com/Jafar090/CompliBot/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed loading config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting complibot", "env", cfg.AppEnv, "addr", cfg.HTTPListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(cfg.MetricsNamespace, registry)

	var redis *cache.Redis
	if cfg.SessionBackend == "redis" {
		redis, err = cache.New(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TLS:      cfg.RedisTLS,
		})
		if err != nil {
			logger.Error("failed connecting redis", "error", err)
			os.Exit(1)
		}
		defer redis.Close()
	}

	var store session.Store
	if redis != nil {
		store = session.NewRedisStore(redis, cfg.SessionTTL)
	} else {
		store = session.NewMemoryStore()
	}

	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		logger.Error("failed initialising archive", "error", err)
		os.Exit(1)
	}
	defer archiver.Close()

	llmClient := llm.New(llm.Config{
		BaseURL:    cfg.LLMBaseURL,
		APIKey:     cfg.LLMAPIKey,
		Model:      cfg.LLMModel,
		AudioModel: cfg.TranscribeModel,
		MaxTokens:  cfg.LLMMaxTokens,
		Timeout:    cfg.LLMTimeout,
	}, logger, m)

	var classifier intent.Classifier
	if cfg.IntentClassifier == "model" {
		classifier = intent.NewModelClassifier(llmClient, logger)
	} else {
		classifier = intent.NewKeywordClassifier()
	}

	machine := intake.New(m, logger)
	engine := convo.New(store, machine, classifier, llmClient, archiver, m, logger, cfg.MaxHistory)

	chatHandler := handlers.NewChatHandler(engine, m, logger)
	audioHandler := handlers.NewAudioHandler(engine, llmClient, redis, m, logger, cfg.AudioRateLimit, cfg.AudioRateWindow)

	mux := http.NewServeMux()
	mux.Handle("/chat", chatHandler)
	mux.Handle("/process", chatHandler)
	mux.Handle("/process_audio", audioHandler)
	mux.HandleFunc("/healthz", handlers.Healthz)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func newArchiver(ctx context.Context, cfg *config.Config) (archive.Archiver, error) {
	switch cfg.ArchiveBackend {
	case "sqlite":
		return archive.NewSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		return archive.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return archive.Noop{}, nil
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
