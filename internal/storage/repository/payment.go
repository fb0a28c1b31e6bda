package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/csa-backend/internal/models"
)

const paymentColumns = `id, mandate_ref, due_date, amount, status, type, payment_range_start, payment_range_end, edited`

func scanPayment(row rowScanner) (models.Payment, error) {
	var (
		p      models.Payment
		status string
	)
	err := row.Scan(&p.ID, &p.MandateRef, &p.DueDate, &p.Amount, &status, &p.Type,
		&p.RangeStart, &p.RangeEnd, &p.Edited)
	p.Status = models.PaymentStatus(status)
	return p, err
}

// ListPayments возвращает платежи мандата по типу продукта.
func (s *Storage) ListPayments(ctx context.Context, mandateRef, paymentType string) ([]models.Payment, error) {
	const op = "storage.ListPayments"
	rows, err := s.DB.QueryContext(ctx, `SELECT `+paymentColumns+`
		FROM payments
		WHERE mandate_ref = $1 AND type = $2
		ORDER BY due_date`, mandateRef, paymentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreatePayments сохраняет платежи в одной транзакции.
// Платёж с уже существующими (mandate_ref, due_date, type) пропускается,
// возвращаются только сохранённые.
func (s *Storage) CreatePayments(ctx context.Context, payments []models.Payment) ([]models.Payment, error) {
	const op = "storage.CreatePayments"
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO payments
			  (mandate_ref, due_date, amount, status, type, payment_range_start, payment_range_end, edited)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (mandate_ref, due_date, type) DO NOTHING
			  RETURNING id`

	created := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if p.Status == "" {
			p.Status = models.PaymentStatusDue
		}
		err := tx.QueryRowContext(ctx, query,
			p.MandateRef, p.DueDate, p.Amount, string(p.Status), p.Type,
			p.RangeStart, p.RangeEnd, p.Edited).Scan(&p.ID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		created = append(created, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}
