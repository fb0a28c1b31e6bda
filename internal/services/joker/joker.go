// Package joker реализует правила использования и отмены джокеров,
// пропуска одной недельной выдачи без отмены подписки.
package joker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
	"github.com/magabrotheeeer/csa-backend/internal/lib/metrics"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

var (
	// ErrJokersDisabled джокеры выключены параметром.
	ErrJokersDisabled = errors.New("jokers are disabled")
	// ErrJokerAlreadyUsed у участника уже есть джокер на эту неделю.
	ErrJokerAlreadyUsed = errors.New("joker already used for this week")
	// ErrJokerNotAllowed джокер на эту неделю взять нельзя.
	ErrJokerNotAllowed = errors.New("joker cannot be used for this week")
	// ErrJokerChangeTooLate срок изменения джокера на эту неделю истёк.
	ErrJokerChangeTooLate = errors.New("too late to change joker for this week")
)

// Repository определяет методы для работы с джокерами в хранилище.
type Repository interface {
	// HasJokerInWeek сообщает, есть ли у участника джокер в ISO-неделе даты.
	HasJokerInWeek(ctx context.Context, memberID int, date time.Time) (bool, error)
	// CountJokers считает джокеры участника с датой в [from, to].
	CountJokers(ctx context.Context, memberID int, from, to time.Time) (int, error)
	// CreateJoker сохраняет джокер и возвращает его ID.
	CreateJoker(ctx context.Context, joker models.Joker) (int, error)
	// DeleteJoker удаляет джокер.
	DeleteJoker(ctx context.Context, id int) error
}

// DateLimitCalculator вычисляет последний день изменений джокера для недели даты.
type DateLimitCalculator interface {
	DateLimitForJokerChanges(date time.Time) time.Time
}

// Lookup справочные данные текущего вызова.
type Lookup interface {
	GrowingPeriodAt(ctx context.Context, date time.Time) (*models.GrowingPeriod, error)
	IntParam(ctx context.Context, key string) (int, error)
	BoolParam(ctx context.Context, key string) (bool, error)
	Param(ctx context.Context, key string) (string, error)
}

// Engine проверяет и применяет правила джокеров.
type Engine struct {
	repo   Repository
	limits DateLimitCalculator
	log    *slog.Logger
	now    func() time.Time
}

// NewEngine создаёт новый экземпляр Engine.
func NewEngine(repo Repository, limits DateLimitCalculator, log *slog.Logger) *Engine {
	return &Engine{
		repo:   repo,
		limits: limits,
		log:    log,
		now:    time.Now,
	}
}

func (e *Engine) today() time.Time {
	return daterange.Day(e.now())
}

// JokersEnabled сообщает, включены ли джокеры. Без параметра джокеры выключены.
func (e *Engine) JokersEnabled(ctx context.Context, lk Lookup) (bool, error) {
	return lk.BoolParam(ctx, models.ParamJokersEnabled)
}

// HasJoker сообщает, взят ли джокер участником на неделю даты.
// При выключенных джокерах всегда false.
func (e *Engine) HasJoker(ctx context.Context, lk Lookup, memberID int, date time.Time) (bool, error) {
	const op = "joker.HasJoker"
	enabled, err := e.JokersEnabled(ctx, lk)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !enabled {
		return false, nil
	}
	has, err := e.repo.HasJokerInWeek(ctx, memberID, date)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return has, nil
}

// CanJokerBeUsedRelativeToDateLimit сообщает, не истёк ли срок изменений для недели даты.
func (e *Engine) CanJokerBeUsedRelativeToDateLimit(date time.Time) bool {
	return !e.today().After(e.limits.DateLimitForJokerChanges(date))
}

// CanJokerBeCancelled сообщает, можно ли ещё отменить джокер.
func (e *Engine) CanJokerBeCancelled(joker models.Joker) bool {
	return e.CanJokerBeUsedRelativeToDateLimit(joker.Date)
}

// CanJokerBeUsed проверяет, может ли участник взять джокер на неделю даты.
//
// Проверки идут строго по порядку и прерываются на первой неудачной:
// джокер на этой неделе уже взят, срок изменений истёк, выдача на неделе отменена,
// исчерпан лимит сезона, нарушено одно из дополнительных ограничений.
func (e *Engine) CanJokerBeUsed(ctx context.Context, lk Lookup, memberID int, date time.Time) (bool, error) {
	const op = "joker.CanJokerBeUsed"
	log := e.log.With(slog.String("op", op), slog.Int("member_id", memberID), slog.Time("date", date))

	has, err := e.repo.HasJokerInWeek(ctx, memberID, date)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if has {
		log.Debug("joker already used this week")
		return false, nil
	}

	if !e.CanJokerBeUsedRelativeToDateLimit(date) {
		log.Debug("date limit for joker changes passed")
		return false, nil
	}

	period, err := lk.GrowingPeriodAt(ctx, date)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if period == nil {
		log.Debug("no growing period for date")
		return false, nil
	}
	if period.IsDeliveryCancelled(date) {
		log.Debug("delivery cancelled this week")
		return false, nil
	}

	ok, err := e.isUnderMaxAmount(ctx, lk, memberID, period)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		log.Debug("max jokers per growing period reached")
		return false, nil
	}

	ok, err = e.isAllowedByRestrictions(ctx, lk, memberID, date)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		log.Debug("joker restriction exceeded")
	}
	return ok, nil
}

func (e *Engine) isUnderMaxAmount(ctx context.Context, lk Lookup, memberID int, period *models.GrowingPeriod) (bool, error) {
	maxJokers := period.MaxJokersPerMember
	if maxJokers <= 0 {
		var err error
		maxJokers, err = lk.IntParam(ctx, models.ParamMaxJokersPerContract)
		if err != nil {
			return false, err
		}
	}
	count, err := e.repo.CountJokers(ctx, memberID, period.StartDate, period.EndDate)
	if err != nil {
		return false, err
	}
	return count < maxJokers, nil
}

func (e *Engine) isAllowedByRestrictions(ctx context.Context, lk Lookup, memberID int, date time.Time) (bool, error) {
	raw, err := lk.Param(ctx, models.ParamJokerRestrictions)
	if err != nil {
		return false, err
	}
	restrictions, err := ParseRestrictions(raw)
	if err != nil {
		return false, err
	}
	for _, r := range restrictions {
		if !r.Applies(date) {
			continue
		}
		start, end := r.Window(date)
		count, err := e.repo.CountJokers(ctx, memberID, start, end)
		if err != nil {
			return false, err
		}
		if count >= r.MaxJokers {
			return false, nil
		}
	}
	return true, nil
}

// UseJoker берёт джокер на неделю даты.
//
// Уникальный индекс хранилища по участнику и ISO-неделе защищает от гонки двух
// параллельных запросов: нарушение индекса возвращается как ErrJokerAlreadyUsed.
func (e *Engine) UseJoker(ctx context.Context, lk Lookup, memberID int, date time.Time) (models.Joker, error) {
	const op = "joker.UseJoker"

	enabled, err := e.JokersEnabled(ctx, lk)
	if err != nil {
		return models.Joker{}, fmt.Errorf("%s: %w", op, err)
	}
	if !enabled {
		return models.Joker{}, fmt.Errorf("%s: %w", op, ErrJokersDisabled)
	}

	ok, err := e.CanJokerBeUsed(ctx, lk, memberID, date)
	if err != nil {
		return models.Joker{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return models.Joker{}, fmt.Errorf("%s: %w", op, ErrJokerNotAllowed)
	}

	joker := models.Joker{MemberID: memberID, Date: daterange.Day(date)}
	id, err := e.repo.CreateJoker(ctx, joker)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return models.Joker{}, fmt.Errorf("%s: %w", op, ErrJokerAlreadyUsed)
	}
	if err != nil {
		e.log.Error("failed to create joker", slog.String("op", op), sl.Err(err))
		return models.Joker{}, fmt.Errorf("%s: %w", op, err)
	}
	joker.ID = id

	metrics.JokerOperations.WithLabelValues("used").Inc()
	e.log.Info("joker used", slog.Int("member_id", memberID), slog.Int("joker_id", id))
	return joker, nil
}

// CancelJoker отменяет джокер, если срок изменений ещё не истёк.
func (e *Engine) CancelJoker(ctx context.Context, joker models.Joker) error {
	const op = "joker.CancelJoker"
	if !e.CanJokerBeCancelled(joker) {
		return fmt.Errorf("%s: %w", op, ErrJokerChangeTooLate)
	}
	if err := e.repo.DeleteJoker(ctx, joker.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.JokerOperations.WithLabelValues("cancelled").Inc()
	e.log.Info("joker cancelled", slog.Int("member_id", joker.MemberID), slog.Int("joker_id", joker.ID))
	return nil
}
