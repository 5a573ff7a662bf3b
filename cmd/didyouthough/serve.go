package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/api"
	"github.com/MikeSquared-Agency/didyouthough/internal/auth"
	"github.com/MikeSquared-Agency/didyouthough/internal/config"
	"github.com/MikeSquared-Agency/didyouthough/internal/extractor"
	"github.com/MikeSquared-Agency/didyouthough/internal/gateway"
	"github.com/MikeSquared-Agency/didyouthough/internal/groq"
	"github.com/MikeSquared-Agency/didyouthough/internal/hermes"
	"github.com/MikeSquared-Agency/didyouthough/internal/review"
	"github.com/MikeSquared-Agency/didyouthough/internal/slack"
	"github.com/MikeSquared-Agency/didyouthough/internal/store"
)

var skipMigrations bool

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Without DATABASE_URL the server keeps tasks and meetings in memory, and
without REDIS_URL pending reviews live in memory too. Both are lost on
restart.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("didyouthough starting", zap.Int("port", cfg.Port), zap.String("version", version))

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	var (
		notifier gateway.Notifier
		changes  api.ChangeFeed
	)
	if cfg.NatsURL != "" {
		nc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", zap.Error(err))
			return err
		}
		defer nc.Close()
		notifier, changes = nc, nc
		logger.Info("NATS connected", zap.String("url", cfg.NatsURL))
	} else {
		logger.Warn("NATS_URL not set, live updates disabled")
	}

	reviewStore, err := openReviewStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var (
		llm         extractor.Completer
		transcriber api.Transcriber
	)
	if cfg.GroqAPIKey != "" {
		client := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqTranscriptionModel)
		client.SetBaseURL(cfg.GroqBaseURL)
		llm, transcriber = client, client
		logger.Info("groq client ready", zap.String("model", cfg.GroqModel))
	} else {
		logger.Warn("GROQ_API_KEY not set, extraction requests will fail")
	}

	var poster api.Poster
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		poster = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger)
		logger.Info("slack poster ready", zap.String("channel", cfg.SlackChannel))
	}

	if cfg.JWTSecret == "" {
		logger.Warn("SUPABASE_JWT_SECRET not set, authenticated routes will reject every request")
	}

	srv := api.NewServer(cfg.Port, api.Deps{
		Extractor:   extractor.New(llm, logger),
		Transcriber: transcriber,
		Reviews:     review.NewService(reviewStore, logger),
		Data:        gateway.New(repo, notifier, logger),
		Changes:     changes,
		Slack:       poster,
		Auth:        auth.NewValidator(cfg.JWTSecret),
		Logger:      logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("didyouthough stopped")
	return nil
}

// openRepository connects to Postgres and migrates it, or falls back to the
// in-memory repository when no database is configured.
func openRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (gateway.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		return gateway.NewMemoryRepository(), func() {}, nil
	}

	if !skipMigrations {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to migrate database", zap.Error(err))
			return nil, nil, err
		}
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, nil, err
	}
	logger.Info("database connected")
	return db, db.Close, nil
}

func openReviewStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (review.Store, error) {
	if cfg.RedisURL == "" {
		return review.NewMemoryStore(cfg.ReviewTTL), nil
	}
	rdb, err := review.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", zap.Error(err))
		return nil, err
	}
	logger.Info("redis connected", zap.Duration("review_ttl", cfg.ReviewTTL))
	return review.NewRedisStore(rdb, cfg.ReviewTTL), nil
}
