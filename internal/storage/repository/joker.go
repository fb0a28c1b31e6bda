package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

// HasJokerInWeek сообщает, есть ли у участника джокер в ISO-неделе даты.
func (s *Storage) HasJokerInWeek(ctx context.Context, memberID int, date time.Time) (bool, error) {
	const op = "storage.HasJokerInWeek"
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM jokers WHERE member_id = $1 AND week_start = $2)`,
		memberID, daterange.StartOfWeek(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CountJokers считает джокеры участника с датой в [from, to].
func (s *Storage) CountJokers(ctx context.Context, memberID int, from, to time.Time) (int, error) {
	const op = "storage.CountJokers"
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jokers WHERE member_id = $1 AND date BETWEEN $2 AND $3`,
		memberID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CreateJoker сохраняет джокер. Второй джокер в той же неделе даёт storage.ErrAlreadyExists.
func (s *Storage) CreateJoker(ctx context.Context, joker models.Joker) (int, error) {
	const op = "storage.CreateJoker"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO jokers (member_id, date, week_start)
			  VALUES ($1, $2, $3) RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		joker.MemberID, joker.Date, daterange.StartOfWeek(joker.Date)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newID, nil
}

// DeleteJoker удаляет джокер.
func (s *Storage) DeleteJoker(ctx context.Context, id int) error {
	const op = "storage.DeleteJoker"
	res, err := s.DB.ExecContext(ctx, `DELETE FROM jokers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// GetJoker возвращает джокер по ID.
func (s *Storage) GetJoker(ctx context.Context, id int) (*models.Joker, error) {
	const op = "storage.GetJoker"
	var j models.Joker
	err := s.DB.QueryRowContext(ctx, `SELECT id, member_id, date FROM jokers WHERE id = $1`, id).
		Scan(&j.ID, &j.MemberID, &j.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &j, nil
}

// ListMemberJokers возвращает джокеры участника с датой в [from, to].
func (s *Storage) ListMemberJokers(ctx context.Context, memberID int, from, to time.Time) ([]models.Joker, error) {
	const op = "storage.ListMemberJokers"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, member_id, date FROM jokers
		 WHERE member_id = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date`, memberID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Joker{}
	for rows.Next() {
		var j models.Joker
		if err := rows.Scan(&j.ID, &j.MemberID, &j.Date); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
