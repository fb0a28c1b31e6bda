// Package scheduler собирает приложение, которое по расписанию выставляет платежи.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/csa-backend/internal/cache"
	"github.com/magabrotheeeer/csa-backend/internal/config"
	"github.com/magabrotheeeer/csa-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/lookup"
	"github.com/magabrotheeeer/csa-backend/internal/services/deliverycycle"
	"github.com/magabrotheeeer/csa-backend/internal/services/notification"
	"github.com/magabrotheeeer/csa-backend/internal/services/parameter"
	"github.com/magabrotheeeer/csa-backend/internal/services/payment"
	schedulerservice "github.com/magabrotheeeer/csa-backend/internal/services/scheduler"
	"github.com/magabrotheeeer/csa-backend/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	schedule         string
	db               *repository.Storage
	cache            *cache.Cache
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	anchor, err := cfg.FourWeeksAnchor()
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	parameters := parameter.New(db, cacheRedis, cfg.Defaults, logger)
	resolver := deliverycycle.NewResolver(cfg.Weekday(), anchor, cfg.JokerChangeNoticeDays)
	builder := payment.NewBuilder(db, payment.NewMemberRhythms(db), resolver, lookup.Factory(db, parameters), logger)

	return &App{
		schedulerService: schedulerservice.New(builder, notification.New(ch, db, logger), logger),
		schedule:         cfg.PaymentsSchedule,
		db:               db,
		cache:            cacheRedis,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.schedulerService.Start(a.schedule); err != nil {
		closeResources(a.ch, a.conn, a.logger)
		return err
	}

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	// дожидаемся выполняющегося задания
	<-a.schedulerService.Stop().Done()

	closeResources(a.ch, a.conn, a.logger)
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
