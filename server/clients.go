package server

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/viper"

	"github.com/reavers-game/go-reavers/env"
	"github.com/reavers-game/go-reavers/publicapi"
	"github.com/reavers-game/go-reavers/service/cache"
	"github.com/reavers-game/go-reavers/service/logger"
	"github.com/reavers-game/go-reavers/service/notifications"
	"github.com/reavers-game/go-reavers/service/wallet"
	"github.com/reavers-game/go-reavers/service/worker"
)

// Clients bundles everything an entrypoint needs to drive the pipeline
type Clients struct {
	Worker      *worker.Client
	Wallet      wallet.Wallet
	Notifs      *notifications.Dispatcher
	Invalidator cache.Invalidator
	API         *publicapi.PublicAPI
}

// SetDefaults registers the environment defaults shared by all entrypoints
func SetDefaults() {
	viper.SetDefault("ENV", "local")
	viper.SetDefault("WORKER_URL", "http://localhost:3001")
	viper.SetDefault("NOTIFICATIONS_WS_URL", "ws://localhost:3001/notifications/stream")
	viper.SetDefault("AUTH_TOKEN", "")
	viper.SetDefault("WALLET_KEYFILE", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("CACHE_PREFIX", "reavers")
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("VERSION", "")
	viper.SetDefault("JOB_TIMEOUT_SINGLE_SECONDS", 30)
	viper.SetDefault("JOB_TIMEOUT_BULK_SECONDS", 150)
	viper.SetDefault("JOB_TIMEOUT_QUICK_SECONDS", 20)

	viper.AutomaticEnv()
}

// ClientInit builds the client bundle from the environment
func ClientInit(ctx context.Context) *Clients {
	logger.InitWithDefaults(env.GetString("ENV"))
	initSentry(ctx)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	workerClient := worker.NewClient(env.MustGetString("WORKER_URL"), httpClient, env.GetString("AUTH_TOKEN"))

	var w wallet.Wallet
	if keyfile := env.GetString("WALLET_KEYFILE"); keyfile != "" {
		lw, err := wallet.FromKeyfile(keyfile)
		if err != nil {
			logger.For(ctx).WithError(err).Fatal("failed to load wallet keyfile")
		}
		w = lw
		logger.For(ctx).Infof("loaded wallet %s", lw.Address())
	}

	notifs := notifications.NewDispatcher()

	var invalidator cache.Invalidator = cache.NoopInvalidator{}
	if addr := env.GetString("REDIS_URL"); addr != "" {
		invalidator = cache.NewRedisInvalidator(addr, env.GetString("REDIS_PASSWORD"), env.GetString("CACHE_PREFIX"))
	}

	timeouts := publicapi.TimeoutConfig{
		Single: time.Duration(env.GetInt("JOB_TIMEOUT_SINGLE_SECONDS")) * time.Second,
		Bulk:   time.Duration(env.GetInt("JOB_TIMEOUT_BULK_SECONDS")) * time.Second,
		Quick:  time.Duration(env.GetInt("JOB_TIMEOUT_QUICK_SECONDS")) * time.Second,
	}

	return &Clients{
		Worker:      workerClient,
		Wallet:      w,
		Notifs:      notifs,
		Invalidator: invalidator,
		API:         publicapi.New(workerClient, w, notifs, invalidator, timeouts),
	}
}

func initSentry(ctx context.Context) {
	if env.GetString("ENV") == "local" || env.GetString("SENTRY_DSN") == "" {
		logger.For(ctx).Info("skipping sentry init")
		return
	}

	logger.For(ctx).Info("initializing sentry...")

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              env.GetString("SENTRY_DSN"),
		Environment:      env.GetString("ENV"),
		Release:          env.GetString("VERSION"),
		AttachStacktrace: true,
	})
	if err != nil {
		logger.For(ctx).Fatalf("failed to start sentry: %s", err)
	}
}
