// Package subscription содержит правила отмены подписок и смены пункта выдачи.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
	"github.com/magabrotheeeer/csa-backend/internal/lookup"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

// ErrCancellationTooLate срок уведомления об отмене уже прошёл.
var ErrCancellationTooLate = errors.New("notice period for cancellation has passed")

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// ListMemberSubscriptions возвращает подписки участника, пересекающиеся с [from, to].
	ListMemberSubscriptions(ctx context.Context, memberID int, from, to time.Time) ([]models.Subscription, error)
	// GetSubscription возвращает подписку по ID.
	GetSubscription(ctx context.Context, id int) (*models.Subscription, error)
	// CancelSubscription проставляет метку отмены.
	CancelSubscription(ctx context.Context, id int, ts time.Time) error
}

// DeliveryCalendar вычисляет ближайшую выдачу.
type DeliveryCalendar interface {
	NextDeliveryDate(date time.Time, openingTimes []models.PickupLocationOpeningTime) time.Time
}

// Overview подписка с рассчитанными сроками отмены и ценой.
type Overview struct {
	models.Subscription
	MonthlyPrice         decimal.Decimal `json:"monthly_price"`
	NoticePeriodMonths   int             `json:"notice_period_months"`
	CancellationDeadline time.Time       `json:"cancellation_deadline"`
}

// Service правила подписок.
type Service struct {
	repo     Repository
	calendar DeliveryCalendar
	newMemo  func() *lookup.Memo
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт новый экземпляр Service.
func New(repo Repository, calendar DeliveryCalendar, newMemo func() *lookup.Memo, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		calendar: calendar,
		newMemo:  newMemo,
		log:      log,
		now:      time.Now,
	}
}

// NoticePeriodMonths срок уведомления об отмене подписки в месяцах.
//
// Приоритет: значение подписки, затем запись для типа продукта и сезона,
// затем параметр по умолчанию.
func NoticePeriodMonths(ctx context.Context, memo *lookup.Memo, sub models.Subscription) (int, error) {
	if sub.NoticePeriodOverride != nil {
		return *sub.NoticePeriodOverride, nil
	}
	notices, err := memo.NoticePeriods(ctx)
	if err != nil {
		return 0, err
	}
	for _, n := range notices {
		if n.ProductTypeID == sub.Product.Type.ID && n.GrowingPeriodID == sub.GrowingPeriodID {
			return n.Months, nil
		}
	}
	return memo.IntParam(ctx, models.ParamDefaultNoticePeriod)
}

// CancellationDeadline последний день, когда подписку ещё можно отменить.
func CancellationDeadline(sub models.Subscription, noticeMonths int) time.Time {
	return sub.EndDate.AddDate(0, -noticeMonths, 0)
}

// MemberSubscriptions возвращает подписки участника в [from, to] со сроками отмены.
func (s *Service) MemberSubscriptions(ctx context.Context, memberID int, from, to time.Time) ([]Overview, error) {
	const op = "subscription.MemberSubscriptions"
	memo := s.newMemo()

	subs, err := s.repo.ListMemberSubscriptions(ctx, memberID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]Overview, 0, len(subs))
	for _, sub := range subs {
		months, err := NoticePeriodMonths(ctx, memo, sub)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, Overview{
			Subscription:         sub,
			MonthlyPrice:         sub.MonthlyPrice(daterange.Max(sub.StartDate, daterange.Day(s.now()))).Round(2),
			NoticePeriodMonths:   months,
			CancellationDeadline: CancellationDeadline(sub, months),
		})
	}
	return result, nil
}

// Cancel отменяет подписку участника, если срок уведомления ещё не прошёл.
// Чужая подписка считается ненайденной.
func (s *Service) Cancel(ctx context.Context, memberID, subscriptionID int) error {
	const op = "subscription.Cancel"

	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if sub.MemberID != memberID {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	months, err := NoticePeriodMonths(ctx, s.newMemo(), *sub)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()
	if daterange.Day(now).After(CancellationDeadline(*sub, months)) {
		return fmt.Errorf("%s: %w", op, ErrCancellationTooLate)
	}

	if err := s.repo.CancelSubscription(ctx, subscriptionID, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription cancelled", slog.Int("member_id", memberID), slog.Int("subscription_id", subscriptionID))
	return nil
}

// EarliestPickupLocationChange первая выдача, с которой может действовать новый пункт выдачи.
// Это ближайшая выдача после сегодняшнего дня плюс срок уведомления о смене пункта.
func (s *Service) EarliestPickupLocationChange(ctx context.Context, memberID int) (time.Time, error) {
	const op = "subscription.EarliestPickupLocationChange"
	memo := s.newMemo()

	days, err := memo.IntParam(ctx, models.ParamPickupLocationChangeNotice)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	earliest := daterange.Day(s.now()).AddDate(0, 0, days)

	location, err := memo.PickupLocationAt(ctx, memberID, earliest)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	var openingTimes []models.PickupLocationOpeningTime
	if location != nil {
		if openingTimes, err = memo.OpeningTimes(ctx, location.ID); err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return s.calendar.NextDeliveryDate(earliest, openingTimes), nil
}
