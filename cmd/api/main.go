package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"luxelens/internal/credits"
	"luxelens/internal/engine"
	"luxelens/internal/gateway/gemini"
	"luxelens/internal/http/handlers"
	httpapi "luxelens/internal/http"
	"luxelens/internal/infra"
	"luxelens/internal/notify"
	"luxelens/internal/sqlinline"
	"luxelens/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openCreditStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open credit store")
	}
	defer closeStore()

	ledger, err := credits.Open(ctx, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open credit ledger")
	}
	logger.Info().Int("remaining", ledger.Remaining()).Str("backend", cfg.CreditsStore).Msg("credit ledger ready")

	client, err := gemini.NewClient(gemini.Options{
		APIKey:       cfg.GeminiAPIKey,
		BaseURL:      cfg.GeminiBaseURL,
		ImageModel:   cfg.GeminiImageModel,
		VideoModel:   cfg.GeminiVideoModel,
		Logger:       &logger,
		PollInterval: cfg.VideoPollEvery,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, serving synthetic previews")
	}

	var notifier notify.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.NotifyAMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.NotifyAMQPURL, cfg.NotifyExchange, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect notification broker")
		}
		defer amqpNotifier.Close()
		notifier = notify.Multi{notify.LogNotifier{Logger: logger}, amqpNotifier}
	}

	var archive *storage.Archive
	if cfg.StoragePath != "" {
		archive, err = storage.NewArchive(cfg.StoragePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare result archive")
		}
	}

	eng := engine.New(ctx, engine.Options{
		Ledger:    ledger,
		Retoucher: client,
		Notifier:  notifier,
		Archive:   archive,
		Logger:    logger,
		StepDelay: cfg.StepDelay,
	})

	app := &handlers.App{
		Engine:   eng,
		Ledger:   ledger,
		Animator: client,
		Notifier: notifier,
		Archive:  archive,
		Logger:   logger,
	}

	router := httpapi.NewRouter(app, logger, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// openCreditStore builds the configured persistence backend. The returned
// close function releases backend resources on shutdown.
func openCreditStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (credits.Store, func(), error) {
	switch cfg.CreditsStore {
	case infra.CreditsStoreFile:
		store, err := credits.NewFileStore(cfg.CreditsFilePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case infra.CreditsStorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		runner := infra.NewSQLRunner(pool, logger)
		if _, err := runner.Exec(ctx, sqlinline.QEnsureCreditSchema); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return credits.NewPGStore(runner, cfg.CreditsAccount), pool.Close, nil

	case infra.CreditsStoreRedis:
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return credits.NewRedisStore(client, ""), func() { client.Close() }, nil
	}
	return nil, nil, errors.New("unknown credit store backend")
}
