package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/internhub/modules/certificates"
	notificationsmod "github.com/dmitrymomot/internhub/modules/notifications"
	"github.com/dmitrymomot/internhub/pkg/async"
	"github.com/dmitrymomot/internhub/pkg/callable"
	"github.com/dmitrymomot/internhub/pkg/config"
	"github.com/dmitrymomot/internhub/pkg/httpserver"
	"github.com/dmitrymomot/internhub/pkg/jwt"
	"github.com/dmitrymomot/internhub/pkg/logger"
	"github.com/dmitrymomot/internhub/pkg/mongo"
	"github.com/dmitrymomot/internhub/pkg/notifications"
	"github.com/dmitrymomot/internhub/pkg/redis"
	"github.com/dmitrymomot/internhub/pkg/requestid"
	"github.com/dmitrymomot/internhub/pkg/toast"
	"github.com/dmitrymomot/internhub/pkg/workflow"
)

const serviceName = "internhub"

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTP     httpserver.Config
	Mongo    mongo.Config
	Redis    redis.Config
	Auth     jwt.Config
	Notify   notifications.Config
	Toast    toast.Config
	SNS      notifications.SNSConfig
	Callable callable.Config
}

func main() {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		slog.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithContextExtractors(requestid.LoggerExtractor),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("internhub stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	storage := notifications.NewMongoStorage(db, notifications.WithTransactions(cfg.Mongo.Transactions))
	if err := storage.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	feed := notifications.NewRedisFeed(rdb, cfg.Redis.ChannelPrefix)

	opts := []notifications.Option{
		notifications.WithLogger(log),
		notifications.WithConfig(cfg.Notify),
	}
	if cfg.SNS.TopicARN != "" {
		sns, err := notifications.NewSNSDelivererFromConfig(ctx, cfg.SNS)
		if err != nil {
			return err
		}
		opts = append(opts, notifications.WithDeliverer(sns))
		log.Info("push mirror enabled", slog.String("topic", cfg.SNS.TopicARN))
	}
	svc := notifications.NewService(storage, feed, opts...)

	auth, err := jwt.NewFromConfig(cfg.Auth)
	if err != nil {
		return err
	}

	runner := async.NewRunner(async.WithRunnerLogger(log))

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, 2*time.Second,
		httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(db)},
		httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
	))
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/notifications", notificationsmod.NewHandler(svc, auth,
		notificationsmod.WithLogger(log),
		notificationsmod.WithFallbackRole(cfg.Notify.FallbackRole),
		notificationsmod.WithToastOptions(toast.WithConfig(cfg.Toast)),
	).Handle())

	if cfg.Callable.BaseURL != "" {
		client, err := callable.New(cfg.Callable.BaseURL,
			callable.WithConfig(cfg.Callable),
			callable.WithLogger(log),
			callable.WithResultSchema(workflow.GenerateCertificateFunction, workflow.CertificateResultSchema),
		)
		if err != nil {
			return err
		}
		notifier := workflow.NewNotifier(svc, workflow.WithNotifierLogger(log))
		issuer := workflow.NewCertificateIssuer(client, notifier, runner, log)
		r.Mount("/certificates", certificates.NewHandler(issuer, auth, log).Handle())
	}

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook("notification subscriptions", func(context.Context) error {
			svc.Cleanup()
			return nil
		}),
		httpserver.WithShutdownHook("background tasks", runner.Shutdown),
		httpserver.WithShutdownHook("redis", func(context.Context) error {
			return rdb.Close()
		}),
		httpserver.WithShutdownHook("mongo", func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		}),
	)

	if err := srv.Run(ctx, r); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
