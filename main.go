package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loanlens/config"
	httpLayer "loanlens/http"
	"loanlens/llm"
	"loanlens/logger"
	"loanlens/metrics"
	"loanlens/repository"
	"loanlens/service"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.JSON)
	slog.SetDefault(log)

	if cfg.LLM.APIKey == "" {
		log.Warn("OPENROUTER_API_KEY is not set; analysis and letter requests will fail until it is configured")
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	llmClient := llm.NewOpenRouterClient(llm.OpenRouterConfig{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Referer:           cfg.LLM.Referer,
		Title:             cfg.LLM.Title,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})

	var letterCache repository.CacheRepository
	if cfg.Cache.Enabled {
		letterCache = repository.NewRedisCache(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.LetterTTL)
		log.Info("letter cache enabled", slog.String("addr", cfg.Cache.Addr))
	} else {
		letterCache = repository.NewMockCache()
	}

	reportRepo := repository.NewReportRepositoryMemory()

	analysisService := service.NewAnalysisService(llmClient, cfg.LLM.AnalysisModel, log)
	letterService := service.NewLetterService(llmClient, cfg.LLM.LetterModel, letterCache, log)
	session := service.NewSessionService(analysisService, letterService, reportRepo, cfg.Lender.ToDomain())

	handler := httpLayer.NewUnderwriteHandler(session, log)

	rateLimiter := httpLayer.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitWindow)
	defer rateLimiter.Stop()

	mux := http.NewServeMux()
	mux.Handle(
		"/underwrite/analyze",
		httpLayer.RateLimitMiddleware(rateLimiter, http.HandlerFunc(handler.Analyze)),
	)
	mux.Handle(
		"/underwrite/letter",
		httpLayer.RateLimitMiddleware(rateLimiter, http.HandlerFunc(handler.Letter)),
	)
	mux.HandleFunc("/underwrite/reports", handler.Reports)
	mux.HandleFunc("/underwrite/stats", handler.Stats)
	mux.HandleFunc("/underwrite/config", handler.Config)
	mux.HandleFunc("/healthz", handler.Health)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("loanlens underwriting API listening", slog.String("addr", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("server error", slog.Any("error", err))
		return
	case <-quit:
		log.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("error during server shutdown", slog.Any("error", err))
	}

	log.Info("server exited")
}
