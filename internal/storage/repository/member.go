package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// GetMember возвращает участника по ID.
func (s *Storage) GetMember(ctx context.Context, id int) (*models.Member, error) {
	const op = "storage.GetMember"
	var (
		m      models.Member
		rhythm string
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, payment_rhythm FROM members WHERE id = $1`, id).
		Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &rhythm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	m.PaymentRhythm = models.PaymentRhythm(rhythm)
	return &m, nil
}

// GetMemberByMandate возвращает владельца мандата по подпискам.
func (s *Storage) GetMemberByMandate(ctx context.Context, mandateRef string) (*models.Member, error) {
	const op = "storage.GetMemberByMandate"
	var (
		m      models.Member
		rhythm string
	)
	err := s.DB.QueryRowContext(ctx, `SELECT m.id, m.email, m.first_name, m.last_name, m.payment_rhythm
		FROM members m
		JOIN subscriptions s ON s.member_id = m.id
		WHERE s.mandate_ref = $1
		ORDER BY s.start_date DESC
		LIMIT 1`, mandateRef).
		Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &rhythm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	m.PaymentRhythm = models.PaymentRhythm(rhythm)
	return &m, nil
}
