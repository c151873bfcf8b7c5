package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fieldops/backend/internal/ai"
	"github.com/fieldops/backend/internal/config"
	"github.com/fieldops/backend/internal/db"
	httpapi "github.com/fieldops/backend/internal/http"
	"github.com/fieldops/backend/internal/metrics"
	"github.com/fieldops/backend/internal/nlq"
	"github.com/fieldops/backend/internal/session"
)

type recordSource interface {
	nlq.RecordSource
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "fieldops-backend").Logger()

	ctx := context.Background()
	source, err := openSource(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.DataSource).Msg("failed to open record source")
	}
	defer source.Close()

	contexts, closeContexts, err := openContexts(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open context store")
	}
	defer closeContexts()

	vocab := nlq.DefaultVocabulary()
	if cfg.VocabularyFile != "" {
		vocab, err = nlq.LoadVocabulary(cfg.VocabularyFile)
		if err != nil {
			logger.Fatal().Err(err).Str("file", cfg.VocabularyFile).Msg("failed to load vocabulary")
		}
	}

	m := metrics.New(cfg.MetricsNamespace)
	engine := nlq.NewEngine(source, contexts, vocab, logger)
	engine.Assistant = newAssistant(cfg, logger)
	engine.Metrics = m

	router := httpapi.Router(cfg, engine, source, m, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

func openSource(ctx context.Context, cfg config.Config) (recordSource, error) {
	if cfg.DataSource == config.SourceSQLite {
		return db.OpenSQLite(ctx, cfg.SQLitePath)
	}
	return db.New(ctx, cfg.DatabaseURL)
}

func openContexts(ctx context.Context, cfg config.Config, logger zerolog.Logger) (nlq.ContextStore, func(), error) {
	var (
		store   nlq.ContextStore
		closeFn = func() {}
	)
	if cfg.RedisAddr != "" {
		rs, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.ContextTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		store = rs
		closeFn = func() { _ = rs.Close() }
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis context store")
	} else {
		store = session.NewMemoryStore(cfg.ContextTTL)
	}
	if cfg.ContextScope == config.ScopeGlobal {
		logger.Warn().Msg("conversation context is shared by all callers")
		store = session.Global(store)
	}
	return store, closeFn, nil
}

func newAssistant(cfg config.Config, logger zerolog.Logger) ai.Assistant {
	switch cfg.AssistantProvider {
	case config.ProviderOpenAI:
		return ai.NewOpenAICompatAssistant(cfg.AssistantBaseURL, cfg.AssistantAPIKey, cfg.AssistantModel, cfg.AssistantMaxTokens)
	case config.ProviderAnthropic:
		return ai.NewAnthropicAssistant(cfg.AssistantBaseURL, cfg.AssistantAPIKey, cfg.AssistantModel, cfg.AssistantMaxTokens)
	case config.ProviderMock:
		logger.Info().Msg("using mock assistant")
		return ai.MockAssistant{ModelVersion: "mock-v1"}
	default:
		return nil
	}
}
