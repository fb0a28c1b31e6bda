// Package api собирает HTTP-приложение кооператива: хранилище, кеш параметров,
// брокер уведомлений, правила выдач и маршруты.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/csa-backend/internal/cache"
	"github.com/magabrotheeeer/csa-backend/internal/config"
	"github.com/magabrotheeeer/csa-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/csa-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/lookup"
	"github.com/magabrotheeeer/csa-backend/internal/migrations"
	"github.com/magabrotheeeer/csa-backend/internal/services/delivery"
	"github.com/magabrotheeeer/csa-backend/internal/services/deliverycycle"
	"github.com/magabrotheeeer/csa-backend/internal/services/joker"
	"github.com/magabrotheeeer/csa-backend/internal/services/notification"
	"github.com/magabrotheeeer/csa-backend/internal/services/parameter"
	"github.com/magabrotheeeer/csa-backend/internal/services/payment"
	"github.com/magabrotheeeer/csa-backend/internal/services/scheduler"
	"github.com/magabrotheeeer/csa-backend/internal/services/subscription"
	"github.com/magabrotheeeer/csa-backend/internal/storage/repository"
)

// App HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создаёт приложение и применяет миграции.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.api.New"

	anchor, err := cfg.FourWeeksAnchor()
	if err != nil {
		return nil, err
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: cache not initialized: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	parameters := parameter.New(db, cacheRedis, cfg.Defaults, logger)
	newMemo := lookup.Factory(db, parameters)
	resolver := deliverycycle.NewResolver(cfg.Weekday(), anchor, cfg.JokerChangeNoticeDays)
	notifier := notification.New(ch, db, logger)

	engine := joker.NewEngine(db, resolver, logger)
	builder := payment.NewBuilder(db, payment.NewMemberRhythms(db), resolver, newMemo, logger)

	services := Services{
		Deliveries:    delivery.New(db, resolver, engine, newMemo, logger),
		Jokers:        joker.NewService(engine, db, notifier, func() joker.Lookup { return newMemo() }, logger),
		Subscriptions: subscription.New(db, resolver, newMemo, logger),
		Parameters:    parameters,
		Payments:      builder,
		Scheduler:     scheduler.New(builder, notifier, logger),
		Health: func() error {
			return db.DB.PingContext(context.Background())
		},
	}

	router := chi.NewRouter()
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	RegisterRoutes(router, logger, tokens, limiter, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
