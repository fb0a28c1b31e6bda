package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

const subscriptionColumns = `s.id, s.member_id, s.growing_period_id, s.quantity, s.start_date, s.end_date,
	s.cancellation_ts, s.solidarity_price_percentage, s.solidarity_price_absolute, s.mandate_ref,
	s.notice_period_duration, s.trial_disabled, s.trial_end_date_override,
	p.id, p.name, t.id, t.name, t.delivery_cycle, t.is_affected_by_jokers`

const subscriptionFrom = `FROM subscriptions s
	JOIN products p ON p.id = s.product_id
	JOIN product_types t ON t.id = p.type_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (models.Subscription, error) {
	var (
		sub          models.Subscription
		cancellation sql.NullTime
		absolute     decimal.NullDecimal
		notice       sql.NullInt32
		trialEnd     sql.NullTime
		cycle        string
	)
	err := row.Scan(
		&sub.ID, &sub.MemberID, &sub.GrowingPeriodID, &sub.Quantity, &sub.StartDate, &sub.EndDate,
		&cancellation, &sub.SolidarityPercentage, &absolute, &sub.MandateRef,
		&notice, &sub.TrialDisabled, &trialEnd,
		&sub.Product.ID, &sub.Product.Name,
		&sub.Product.Type.ID, &sub.Product.Type.Name, &cycle, &sub.Product.Type.IsAffectedByJokers,
	)
	if err != nil {
		return models.Subscription{}, err
	}
	sub.Product.Type.DeliveryCycle = models.DeliveryCycle(cycle)
	if cancellation.Valid {
		sub.CancellationTS = &cancellation.Time
	}
	if absolute.Valid {
		sub.SolidarityAbsolute = &absolute.Decimal
	}
	if notice.Valid {
		months := int(notice.Int32)
		sub.NoticePeriodOverride = &months
	}
	if trialEnd.Valid {
		sub.TrialEndDateOverride = &trialEnd.Time
	}
	return sub, nil
}

func (s *Storage) querySubscriptions(ctx context.Context, query string, args ...any) ([]models.Subscription, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachPrices(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// attachPrices подгружает историю цен продуктов одним запросом.
func (s *Storage) attachPrices(ctx context.Context, subs []models.Subscription) error {
	if len(subs) == 0 {
		return nil
	}
	productIDs := lo.Uniq(lo.Map(subs, func(sub models.Subscription, _ int) int {
		return sub.Product.ID
	}))

	rows, err := s.DB.QueryContext(ctx, `SELECT product_id, valid_from, price
		FROM product_prices
		WHERE product_id = ANY($1)
		ORDER BY valid_from`, productIDs)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	prices := make(map[int][]models.ProductPrice, len(productIDs))
	for rows.Next() {
		var (
			productID int
			price     models.ProductPrice
		)
		if err := rows.Scan(&productID, &price.ValidFrom, &price.Price); err != nil {
			return err
		}
		prices[productID] = append(prices[productID], price)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range subs {
		subs[i].Product.Prices = prices[subs[i].Product.ID]
	}
	return nil
}

// ListSubscriptions возвращает все подписки, пересекающиеся с [from, to].
func (s *Storage) ListSubscriptions(ctx context.Context, from, to time.Time) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	query := `SELECT ` + subscriptionColumns + ` ` + subscriptionFrom + `
		WHERE s.start_date <= $2 AND s.end_date >= $1
		ORDER BY s.id`
	subs, err := s.querySubscriptions(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// ListMemberSubscriptions возвращает подписки участника, пересекающиеся с [from, to].
func (s *Storage) ListMemberSubscriptions(ctx context.Context, memberID int, from, to time.Time) ([]models.Subscription, error) {
	const op = "storage.ListMemberSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` ` + subscriptionFrom + `
		WHERE s.member_id = $1 AND s.start_date <= $3 AND s.end_date >= $2
		ORDER BY s.start_date, s.id`
	subs, err := s.querySubscriptions(ctx, query, memberID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// GetSubscription возвращает подписку по ID.
func (s *Storage) GetSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	query := `SELECT ` + subscriptionColumns + ` ` + subscriptionFrom + ` WHERE s.id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	subs := []models.Subscription{sub}
	if err := s.attachPrices(ctx, subs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &subs[0], nil
}

// CancelSubscription проставляет метку отмены.
// Для уже отменённой подписки возвращается storage.ErrAlreadyExists.
func (s *Storage) CancelSubscription(ctx context.Context, id int, ts time.Time) error {
	const op = "storage.CancelSubscription"
	res, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET cancellation_ts = $2 WHERE id = $1 AND cancellation_ts IS NULL`, id, ts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return nil
	}

	// подписка либо уже отменена, либо не существует
	var exists bool
	err = s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}
