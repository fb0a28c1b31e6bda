// Package delivery строит прогноз выдач участника на заданный период.
package delivery

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
	"github.com/magabrotheeeer/csa-backend/internal/lookup"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/services/deliverycycle"
	"github.com/magabrotheeeer/csa-backend/internal/services/joker"
)

// SubscriptionRepository возвращает подписки участника, пересекающиеся с периодом.
// Продления, ожидающие начала, хранилище возвращает как обычные подписки следующего сезона.
type SubscriptionRepository interface {
	ListMemberSubscriptions(ctx context.Context, memberID int, from, to time.Time) ([]models.Subscription, error)
}

// CycleResolver определяет недели выдач.
type CycleResolver interface {
	IsActive(cycle models.DeliveryCycle, date time.Time) bool
	NextDeliveryDate(date time.Time, openingTimes []models.PickupLocationOpeningTime) time.Time
}

// JokerChecker правила джокеров, нужные для прогноза.
type JokerChecker interface {
	JokersEnabled(ctx context.Context, lk joker.Lookup) (bool, error)
	HasJoker(ctx context.Context, lk joker.Lookup, memberID int, date time.Time) (bool, error)
	CanJokerBeUsed(ctx context.Context, lk joker.Lookup, memberID int, date time.Time) (bool, error)
	CanJokerBeUsedRelativeToDateLimit(date time.Time) bool
}

// Service строит прогноз выдач.
type Service struct {
	subs    SubscriptionRepository
	cycles  CycleResolver
	jokers  JokerChecker
	newMemo func() *lookup.Memo
	log     *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(subs SubscriptionRepository, cycles CycleResolver, jokers JokerChecker, newMemo func() *lookup.Memo, log *slog.Logger) *Service {
	return &Service{
		subs:    subs,
		cycles:  cycles,
		jokers:  jokers,
		newMemo: newMemo,
		log:     log,
	}
}

// Deliveries возвращает ленивую последовательность выдач участника в [from, to].
//
// Кандидаты перебираются неделя за неделей от from. Недели без подходящих подписок
// пропускаются. Последовательность можно обходить повторно: каждый обход заново
// читает данные и использует собственный Memo. После первой ошибки обход прекращается.
func (s *Service) Deliveries(ctx context.Context, memberID int, from, to time.Time) iter.Seq2[models.Delivery, error] {
	const op = "delivery.Deliveries"
	from, to = daterange.Day(from), daterange.Day(to)

	return func(yield func(models.Delivery, error) bool) {
		memo := s.newMemo()

		subs, err := s.subs.ListMemberSubscriptions(ctx, memberID, from, to)
		if err != nil {
			yield(models.Delivery{}, fmt.Errorf("%s: %w", op, err))
			return
		}

		for candidate := s.cycles.NextDeliveryDate(from, nil); !candidate.After(to); candidate = s.cycles.NextDeliveryDate(candidate.AddDate(0, 0, 7), nil) {
			active := lo.Filter(subs, func(sub models.Subscription, _ int) bool {
				return sub.IsActiveOn(candidate) && s.cycles.IsActive(sub.DeliveryCycle(), candidate)
			})
			if len(active) == 0 {
				continue
			}

			d, err := s.project(ctx, memo, memberID, candidate, active)
			if err != nil {
				yield(models.Delivery{}, fmt.Errorf("%s: %w", op, err))
				return
			}
			if !yield(d, nil) {
				return
			}
		}
	}
}

// ListDeliveries собирает прогноз выдач в срез.
func (s *Service) ListDeliveries(ctx context.Context, memberID int, from, to time.Time) ([]models.Delivery, error) {
	deliveries := make([]models.Delivery, 0)
	for d, err := range s.Deliveries(ctx, memberID, from, to) {
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

func (s *Service) project(ctx context.Context, memo *lookup.Memo, memberID int, candidate time.Time, subs []models.Subscription) (models.Delivery, error) {
	location, err := memo.PickupLocationAt(ctx, memberID, candidate)
	if err != nil {
		return models.Delivery{}, err
	}

	var openingTimes []models.PickupLocationOpeningTime
	if location != nil {
		openingTimes, err = memo.OpeningTimes(ctx, location.ID)
		if err != nil {
			return models.Delivery{}, err
		}
	}
	date := deliverycycle.ShiftToOpeningDay(candidate, openingTimes)

	jokerUsed, err := s.jokers.HasJoker(ctx, memo, memberID, date)
	if err != nil {
		return models.Delivery{}, err
	}
	if jokerUsed {
		subs = lo.Filter(subs, func(sub models.Subscription, _ int) bool {
			return !sub.Product.Type.IsAffectedByJokers
		})
	}

	enabled, err := s.jokers.JokersEnabled(ctx, memo)
	if err != nil {
		return models.Delivery{}, err
	}
	canUse := false
	if enabled && !jokerUsed {
		canUse, err = s.jokers.CanJokerBeUsed(ctx, memo, memberID, date)
		if err != nil {
			return models.Delivery{}, err
		}
	}

	period, err := memo.GrowingPeriodAt(ctx, date)
	if err != nil {
		return models.Delivery{}, err
	}

	return models.Delivery{
		DeliveryDate:                      date,
		PickupLocation:                    location,
		PickupLocationOpeningTimes:        openingTimes,
		Subscriptions:                     subs,
		JokerUsed:                         jokerUsed,
		CanJokerBeUsed:                    canUse,
		CanJokerBeUsedRelativeToDateLimit: s.jokers.CanJokerBeUsedRelativeToDateLimit(date),
		IsDeliveryCancelledThisWeek:       period != nil && period.IsDeliveryCancelled(date),
	}, nil
}
