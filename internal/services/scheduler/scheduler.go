// Package scheduler запускает генерацию платежей по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/csa-backend/internal/lib/metrics"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// PaymentCreator сохраняет платежи за месяц.
type PaymentCreator interface {
	CreatePaymentsForMonth(ctx context.Context, reference time.Time) ([]models.Payment, error)
}

// PaymentNotifier сообщает участникам о новых платежах.
type PaymentNotifier interface {
	PaymentsCreated(ctx context.Context, payments []models.Payment) int
}

// Service выполняет задания планировщика.
type Service struct {
	payments PaymentCreator
	notifier PaymentNotifier
	log      *slog.Logger
	cron     *cron.Cron
	now      func() time.Time
	timeout  time.Duration
}

// New создаёт новый экземпляр Service.
func New(payments PaymentCreator, notifier PaymentNotifier, log *slog.Logger) *Service {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	return &Service{
		payments: payments,
		notifier: notifier,
		log:      log,
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		now:      time.Now,
		timeout:  10 * time.Minute,
	}
}

// Start регистрирует задание генерации платежей и запускает cron.
func (s *Service) Start(schedule string) error {
	const op = "scheduler.Start"
	if _, err := s.cron.AddFunc(schedule, s.runPayments); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("scheduled monthly payments job", slog.String("schedule", schedule))
	s.cron.Start()
	return nil
}

// Stop останавливает cron, контекст закрывается после завершения текущих заданий.
func (s *Service) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Service) runPayments() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.CreateMonthlyPayments(ctx); err != nil {
		s.log.Error("monthly payments job failed", sl.Err(err))
	}
}

// CreateMonthlyPayments сохраняет платежи за текущий месяц и уведомляет участников.
func (s *Service) CreateMonthlyPayments(ctx context.Context) ([]models.Payment, error) {
	now := s.now().UTC()
	return s.CreatePayments(ctx, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}

// CreatePayments сохраняет платежи за месяц reference и уведомляет участников о новых.
func (s *Service) CreatePayments(ctx context.Context, reference time.Time) ([]models.Payment, error) {
	const op = "scheduler.CreatePayments"
	started := time.Now()
	defer func() {
		metrics.PaymentRunDuration.Observe(time.Since(started).Seconds())
	}()

	s.log.Info("starting payments job", slog.String("reference", reference.Format(time.DateOnly)))
	payments, err := s.payments.CreatePaymentsForMonth(ctx, reference)
	if err != nil {
		metrics.PaymentRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PaymentRuns.WithLabelValues("ok").Inc()
	metrics.PaymentsCreated.Add(float64(len(payments)))

	if len(payments) == 0 {
		s.log.Info("no new payments")
		return payments, nil
	}
	published := s.notifier.PaymentsCreated(ctx, payments)
	s.log.Info("payments created",
		slog.Int("count", len(payments)),
		slog.Int("notified", published),
	)
	return payments, nil
}
