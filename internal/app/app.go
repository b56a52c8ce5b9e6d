package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"ai-diet-planner/internal/codec"
	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/confirm"
	"ai-diet-planner/internal/daily"
	"ai-diet-planner/internal/database"
	"ai-diet-planner/internal/feedback"
	"ai-diet-planner/internal/history"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/metrics"
	"ai-diet-planner/internal/pending"
	"ai-diet-planner/internal/planner"
	"ai-diet-planner/internal/profile"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	pendingCacheSize = 1000
	plannerTemp      = 0.7
)

// App holds the application's dependencies.
type App struct {
	Assistant    *daily.Assistant
	MetricsStore *metrics.Store
	Registry     *prometheus.Registry

	cfg     *config.Config
	logger  zerolog.Logger
	out     io.Writer
	closers []func() error
}

// Build opens the stores and text generator selected by cfg and wires the
// assistant on top of them. Callers must Close the returned App.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, out: os.Stdout}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	// The local database always exists: it carries the metrics tables.
	db, err := database.NewDB(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	store, err := a.historyStore(ctx, db)
	if err != nil {
		return nil, err
	}

	textGen, err := a.textGenerator(ctx)
	if err != nil {
		return nil, err
	}
	textGen = llm.NewRateLimited(textGen, cfg.LLMRequestsPerMinute)

	a.Registry = prometheus.NewRegistry()
	a.MetricsStore = metrics.NewStore(db.SQL)
	recorder := metrics.NewRecorder(metrics.MustNewCollectors(a.Registry), a.MetricsStore, logger)

	a.Assistant = daily.NewAssistant(daily.Deps{
		Store:     store,
		Planner:   planner.NewPlanner(textGen, codec.GenerationOptions{}),
		Analyst:   feedback.NewAnalyst(textGen),
		Collector: profile.NewCollector(textGen, store),
		Pending:   a.pendingStore(ctx),
		Tokens:    confirm.NewIssuer(cfg.ConfirmationSecret, cfg.PendingPlanTTL),
		Recorder:  recorder,
		Logger:    logger,
		Location:  cfg.Location(),
	})

	ok = true
	return a, nil
}

type historyStore interface {
	daily.Store
	profile.Store
}

func (a *App) historyStore(ctx context.Context, db *database.DB) (historyStore, error) {
	if a.cfg.StoreDriver != config.DriverPostgres {
		return history.NewSQLiteStore(db.SQL), nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	pg := history.NewPostgresStore(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	a.logger.Info().Msg("using postgres history store")
	return pg, nil
}

func (a *App) textGenerator(ctx context.Context) (llm.TextGenerator, error) {
	if a.cfg.LLMProvider == config.ProviderGroq {
		return llm.NewGroqClient(a.cfg, plannerTemp), nil
	}
	gemini, err := llm.NewGeminiClient(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, gemini.Close)
	return gemini, nil
}

func (a *App) pendingStore(ctx context.Context) pending.Store {
	if a.cfg.RedisAddr == "" {
		return pending.NewMemoryStore(pendingCacheSize, a.cfg.PendingPlanTTL)
	}
	client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		a.logger.Warn().Err(err).Str("addr", a.cfg.RedisAddr).Msg("redis not reachable yet")
	}
	a.closers = append(a.closers, client.Close)
	return pending.NewRedisStore(client, a.cfg.PendingPlanTTL)
}

// Close releases everything Build opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
