package joker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

// Store выборки джокеров участника.
type Store interface {
	GetJoker(ctx context.Context, id int) (*models.Joker, error)
	ListMemberJokers(ctx context.Context, memberID int, from, to time.Time) ([]models.Joker, error)
}

// Notifier сообщает участнику об изменении джокеров.
type Notifier interface {
	JokerUsed(ctx context.Context, joker models.Joker) error
	JokerCancelled(ctx context.Context, joker models.Joker) error
}

// Overview джокер с признаком, можно ли его ещё отменить.
type Overview struct {
	models.Joker
	CanBeCancelled bool `json:"can_be_cancelled"`
}

// Service операции участника с джокерами.
// Каждый вызов работает со своим набором справочных данных.
type Service struct {
	engine    *Engine
	store     Store
	notifier  Notifier
	newLookup func() Lookup
	log       *slog.Logger
}

// NewService создаёт новый экземпляр Service.
func NewService(engine *Engine, store Store, notifier Notifier, newLookup func() Lookup, log *slog.Logger) *Service {
	return &Service{
		engine:    engine,
		store:     store,
		notifier:  notifier,
		newLookup: newLookup,
		log:       log,
	}
}

// Use берёт джокер на неделю даты и уведомляет участника.
// Ошибка уведомления не отменяет джокер.
func (s *Service) Use(ctx context.Context, memberID int, date time.Time) (models.Joker, error) {
	joker, err := s.engine.UseJoker(ctx, s.newLookup(), memberID, date)
	if err != nil {
		return models.Joker{}, err
	}
	if err := s.notifier.JokerUsed(ctx, joker); err != nil {
		s.log.Error("failed to notify about joker", slog.Int("joker_id", joker.ID), sl.Err(err))
	}
	return joker, nil
}

// Cancel отменяет джокер участника. Чужой джокер считается ненайденным.
func (s *Service) Cancel(ctx context.Context, memberID, jokerID int) error {
	const op = "joker.Cancel"
	joker, err := s.store.GetJoker(ctx, jokerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if joker.MemberID != memberID {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err := s.engine.CancelJoker(ctx, *joker); err != nil {
		return err
	}
	if err := s.notifier.JokerCancelled(ctx, *joker); err != nil {
		s.log.Error("failed to notify about cancelled joker", slog.Int("joker_id", joker.ID), sl.Err(err))
	}
	return nil
}

// List возвращает джокеры участника с датой в [from, to].
func (s *Service) List(ctx context.Context, memberID int, from, to time.Time) ([]Overview, error) {
	const op = "joker.List"
	jokers, err := s.store.ListMemberJokers(ctx, memberID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]Overview, 0, len(jokers))
	for _, j := range jokers {
		result = append(result, Overview{Joker: j, CanBeCancelled: s.engine.CanJokerBeCancelled(j)})
	}
	return result, nil
}
