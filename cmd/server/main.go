// Package main provides the portfolio chatbot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chat"
	"github.com/sayeesck/portfolio-chatbot-go/internal/chat/search"
	"github.com/sayeesck/portfolio-chatbot-go/internal/chatlog"
	"github.com/sayeesck/portfolio-chatbot-go/internal/config"
	"github.com/sayeesck/portfolio-chatbot-go/internal/genai"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
	"github.com/sayeesck/portfolio-chatbot-go/internal/objstore"
	"github.com/sayeesck/portfolio-chatbot-go/internal/profile"
	"github.com/sayeesck/portfolio-chatbot-go/internal/ratelimit"
	"github.com/sayeesck/portfolio-chatbot-go/internal/sentry"
	"github.com/sayeesck/portfolio-chatbot-go/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithBetterstack(cfg.LogLevel, cfg.BetterstackToken)
	log.Info("Starting portfolio chatbot server")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: "production",
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error reporting disabled")
	}
	defer sentry.Flush(2 * time.Second)

	p, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load profile")
	}
	log.WithField("owner", p.DisplayName()).
		WithField("projects", len(p.Projects)).
		Info("Profile loaded")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	index := search.NewProjectIndex(log)
	if err := index.Initialize(p.Projects); err != nil {
		log.WithError(err).Warn("Failed to build project search index, fuzzy name match only")
	}

	engine := chat.NewEngine(p, index, cfg.Engine, log, m)

	// Optional LLM reply polish behind a per-session budget.
	llmLimiter := ratelimit.NewLLMRateLimiter(
		cfg.Engine.LLMBurstTokens,
		cfg.Engine.LLMRefillPerHour,
		cfg.Engine.LLMDailyLimit,
		5*time.Minute,
		m,
	)
	defer llmLimiter.Stop()

	chain, err := genai.NewChainFromConfig(context.Background(), cfg, log, m)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize LLM providers, reply polish disabled")
	} else if chain != nil {
		engine.SetCompleter(genai.NewLimitedCompleter(chain, llmLimiter))
		log.WithField("primary", chain.Provider().String()).Info("Reply polish enabled")
	} else {
		log.Info("No LLM API keys configured, reply polish disabled")
	}

	// Optional chat log with archival.
	var store *chatlog.Store
	if cfg.ChatLogEnabled {
		store, err = chatlog.New(cfg.SQLitePath(), m)
		if err != nil {
			log.WithError(err).Fatal("Failed to open chat log database")
		}
		defer func() { _ = store.Close() }()
		log.WithField("path", store.Path()).Info("Chat log database connected")
	} else {
		log.Info("Chat logging disabled")
	}

	var archiver *objstore.Archiver
	if store != nil && cfg.ArchiveConfigured() {
		client, err := objstore.New(context.Background(), objstore.Config{
			Endpoint:    cfg.ArchiveEndpoint,
			AccessKeyID: cfg.ArchiveAccessKeyID,
			SecretKey:   cfg.ArchiveSecretKey,
			BucketName:  cfg.ArchiveBucket,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to create archive client, transcript export disabled")
		} else {
			archiver = objstore.NewArchiver(store, client, cfg.ArchivePrefix, cfg.ArchiveInterval, log, m)
			log.WithField("bucket", cfg.ArchiveBucket).
				WithField("interval", cfg.ArchiveInterval).
				Info("Transcript archiver configured")
		}
	}

	sessionLimiter := ratelimit.NewPerSessionLimiter(ratelimit.PerSessionLimiterConfig{
		MaxTokens:     cfg.Engine.SessionRateBurst,
		RefillRate:    cfg.Engine.SessionRateRefillSec,
		CleanupPeriod: 5 * time.Minute,
	})
	sessionLimiter.OnDrop(func() { m.RecordRateLimiterDrop("session") })
	defer sessionLimiter.Stop()

	sessions := server.NewSessionManager(engine, cfg.SessionTTL, log, m)
	defer sessions.Stop()

	handler := server.NewHandler(engine, sessions, p, store, sessionLimiter, log, m)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(corsMiddleware(cfg.AllowedOrigins))
	router.Use(loggingMiddleware(log))
	if sentry.IsEnabled() {
		router.Use(sentryMiddleware())
	}

	setupRoutes(router, handler, registry, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	if store != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("Panic in chat log pruning goroutine")
				}
			}()
			pruneChatLog(ctx, store, cfg.ChatLogRetention, log)
		}()
	}

	if archiver != nil {
		archiver.Start(ctx)
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	cancel()
	if archiver != nil {
		archiver.Stop()
	}

	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()
	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if chain != nil {
		if err := chain.Close(); err != nil {
			log.WithError(err).Error("Failed to close LLM providers")
		}
	}

	log.Info("Server stopped")
}
