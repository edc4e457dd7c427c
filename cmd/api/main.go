// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/trip-concierge/internal/config"
	"github.com/capitalize-ai/trip-concierge/internal/dispatch"
	"github.com/capitalize-ai/trip-concierge/internal/handler"
	"github.com/capitalize-ai/trip-concierge/internal/intent"
	"github.com/capitalize-ai/trip-concierge/internal/llm"
	natsclient "github.com/capitalize-ai/trip-concierge/internal/nats"
	"github.com/capitalize-ai/trip-concierge/internal/provider"
	"github.com/capitalize-ai/trip-concierge/internal/service"
	"github.com/capitalize-ai/trip-concierge/internal/slots"
	"github.com/capitalize-ai/trip-concierge/internal/store"
	"github.com/capitalize-ai/trip-concierge/internal/synth"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
	"github.com/capitalize-ai/trip-concierge/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.LogFormat == "console" {
		log, err = logger.NewDevelopment()
	} else {
		log, err = logger.New(cfg.LogLevel)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting API server",
		zap.String("session_store", cfg.SessionStore),
		zap.String("llm_provider", string(cfg.Provider())),
		zap.Bool("journal", cfg.JournalEnabled),
	)

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, tracing.Config{
			ServiceName: "trip-concierge",
			Endpoint:    cfg.TracingEndpoint,
			Insecure:    cfg.TracingInsecure,
			SampleRate:  cfg.TracingSampleRate,
		})
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	// Session store
	var repo store.Repository
	switch cfg.SessionStore {
	case config.StoreRedis:
		rs, err := store.NewRedisFromURL(ctx, cfg.RedisURL, cfg.SessionKeyPrefix, cfg.SessionTTL)
		if err != nil {
			return fmt.Errorf("connect session store: %w", err)
		}
		defer rs.Close()
		repo = rs
	default:
		repo = store.NewMemory()
	}

	// Turn journal
	var (
		journal       *natsclient.Journal
		turnJournal   service.Journal
		journalReader handler.JournalReader
		journalHealth handler.JournalHealth
	)
	if cfg.JournalEnabled {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
			Name:     "trip-concierge",
		}, log)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer natsClient.Close()

		journal = natsclient.NewJournal(natsClient, cfg.NATSStream, cfg.JournalMaxAge)
		if err := journal.EnsureStream(ctx); err != nil {
			return fmt.Errorf("ensure journal stream: %w", err)
		}
		turnJournal, journalReader, journalHealth = journal, journal, journal
		go recordJournalStats(ctx, journal, log)
	}

	// Initialize LLM client
	llmClient, err := llm.NewClient(ctx, cfg.Provider(), cfg.LLMAPIKey())
	if err != nil {
		log.Warn("failed to create LLM client, free-form replies disabled", zap.Error(err))
		llmClient = nil
	}

	// Options
	seed := cfg.MockSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var options provider.OptionProvider = provider.NewMock(seed)
	log.Info("option provider ready", zap.String("provider", options.Name()), zap.Int64("seed", seed))

	// Initialize services
	sessionOpts := []service.SessionOption{service.WithDefaultLanguage(cfg.Language())}
	if turnJournal != nil {
		sessionOpts = append(sessionOpts, service.WithJournal(turnJournal))
	}
	sessionSvc := service.NewSessionService(repo, log, sessionOpts...)
	turnSvc := service.NewTurnService(service.TurnDeps{
		Sessions:   sessionSvc,
		Classifier: intent.NewClassifier(nil, log),
		Resolver:   intent.NewResolver(log),
		Extractor:  slots.NewExtractor(time.Now),
		Dispatcher: dispatch.New(options, options, synth.New(cfg.Strategy(), cfg.MaxPackages), log),
		LLM:        llmClient,
		Journal:    turnJournal,
	}, service.TurnConfig{
		HistoryWindow: cfg.HistoryWindow,
		LLMModel:      cfg.LLMModel,
		MaxTokens:     cfg.LLMMaxTokens,
		LLMTimeout:    cfg.LLMTimeout,
	}, log)

	// Initialize handlers
	router := handler.NewRouter(handler.RouterConfig{
		Chat:              handler.NewChatHandler(turnSvc, journalReader, cfg.Language(), log),
		WebSocket:         handler.NewWebSocketHandler(turnSvc, cfg.CORSOrigins, log),
		Health:            handler.NewHealthHandler(sessionSvc, journalHealth),
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		MaxBodyBytes:      cfg.MaxBodyBytes,
	}, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

func recordJournalStats(ctx context.Context, j *natsclient.Journal, log *logger.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.RecordStats(ctx); err != nil {
				log.Debug("failed to record journal stats", zap.Error(err))
			}
		}
	}
}
