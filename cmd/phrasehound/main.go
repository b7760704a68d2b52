package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/huntline/phrasehound/internal/config"
	"github.com/huntline/phrasehound/internal/db"
	dbMemory "github.com/huntline/phrasehound/internal/db/memory"
	dbRedis "github.com/huntline/phrasehound/internal/db/redis"
	logpkg "github.com/huntline/phrasehound/internal/logger"
	"github.com/huntline/phrasehound/internal/metrics"
	sessionrepo "github.com/huntline/phrasehound/internal/repository/session"
	"github.com/huntline/phrasehound/internal/transport/telegram"
	"github.com/huntline/phrasehound/internal/transport/telemetr"
	healthuc "github.com/huntline/phrasehound/internal/usecase/health"
	matchuc "github.com/huntline/phrasehound/internal/usecase/match"
	searchuc "github.com/huntline/phrasehound/internal/usecase/search"
	"github.com/huntline/phrasehound/internal/version"
)

func main() {
	// .env keeps local tokens out of the YAML configs
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting phrasehound bot",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("ops_port", cfg.Ops.Port),
		zap.String("sessions_driver", cfg.Sessions.Driver),
		zap.Int("telemetr_pages", cfg.Telemetr.Pages),
	)

	metrics.RegisterBotMetrics()

	// Session store based on driver
	var store db.Store
	switch cfg.Sessions.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Sessions.Addrs,
			Password: cfg.Sessions.Password,
		})
	case "memory":
		store = dbMemory.NewStore()
	default:
		logger.Fatal("Unknown sessions driver", zap.String("driver", cfg.Sessions.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create session store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(context.Background(),
		time.Duration(cfg.Sessions.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Session store not ready", zap.Error(err))
	}
	logger.Info("Connected to session store")

	sessions := sessionrepo.New(store, cfg.Sessions.KeyPrefix,
		time.Duration(cfg.Sessions.TTLSec)*time.Second)

	engine, err := matchuc.NewEngine(matchuc.Config{
		RequireExact:   *cfg.Match.RequireExact,
		MaxGapWords:    cfg.Match.MaxGapWords,
		FuzzyThreshold: *cfg.Match.FuzzyThreshold,
	})
	if err != nil {
		logger.Fatal("Failed to build match engine", zap.Error(err))
	}

	telemetrClient, err := telemetr.NewClient(telemetr.Config{
		BaseURL:   cfg.Telemetr.BaseURL,
		Token:     cfg.Telemetr.Token,
		Pages:     cfg.Telemetr.Pages,
		PageSize:  cfg.Telemetr.PageSize,
		UseQuotes: *cfg.Telemetr.UseQuotes,
		Timeout:   time.Duration(cfg.Telemetr.TimeoutSec) * time.Second,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to create telemetr client", zap.Error(err))
	}

	searcher := searchuc.New(telemetrClient, engine, searchuc.Config{
		Workers:  cfg.Search.Workers,
		MinViews: cfg.Telemetr.MinViews,
		Debug:    cfg.Match.Debug,
	})

	botAPI, err := telegram.NewClient(telegram.ClientConfig{
		Token:       cfg.Telegram.Token,
		PollTimeout: time.Duration(cfg.Telegram.PollTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create telegram client", zap.Error(err))
	}

	bot := telegram.NewBot(botAPI, sessions, searcher, telegram.Config{
		AllowedChatIDs: cfg.Telegram.AllowedChatIDs,
		MaxResultCards: cfg.Telegram.MaxResultCards,
		Debug:          cfg.Match.Debug,
	}, logger)

	// Telemetr has no side-effect-free probe endpoint, so health only
	// covers the session store.
	healthSvc := healthuc.New(store, nil)

	// Ops surface: health and metrics only, the bot itself speaks
	// to Telegram over long polling and needs no inbound port.
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		report := healthSvc.Check(req.Context())

		httpStatus := http.StatusOK
		if report.Status != healthuc.Healthy {
			httpStatus = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": report.Status,
			"checks": report.Checks,
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Ops.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Ops.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Ops.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting ops HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ops HTTP server error", zap.Error(err))
		}
	}()

	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		if err := bot.Run(ctx); err != nil {
			logger.Error("Bot run failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Ops.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// let the in-flight update finish before dropping the store
	<-botDone

	logger.Info("Stopped gracefully")
}
