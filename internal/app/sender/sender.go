// Package sender собирает приложение, которое читает очереди уведомлений и рассылает письма.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/csa-backend/internal/config"
	"github.com/magabrotheeeer/csa-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/csa-backend/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.New(smtp.NewTransport(cfg.SMTP, logger), logger),
		logger:        logger,
	}, nil
}

func (a *App) handlers() map[string]func([]byte) error {
	return map[string]func([]byte) error{
		rabbitmq.RoutingJokerUsed:       a.senderService.SendJokerUsed,
		rabbitmq.RoutingJokerCancelled:  a.senderService.SendJokerCancelled,
		rabbitmq.RoutingPaymentsCreated: a.senderService.SendPaymentCreated,
	}
}

func (a *App) Run(ctx context.Context) error {
	handlers := a.handlers()
	for _, q := range rabbitmq.GetNotificationQueues() {
		if err := rabbitmq.ConsumeMessages(ctx, a.ch, q.QueueName, a.logger, handlers[q.RoutingKey]); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
