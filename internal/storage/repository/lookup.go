package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// ListGrowingPeriods возвращает все сезоны по дате начала.
func (s *Storage) ListGrowingPeriods(ctx context.Context) ([]models.GrowingPeriod, error) {
	const op = "storage.ListGrowingPeriods"
	query := `SELECT id, start_date, end_date, weeks_without_delivery, max_jokers_per_member
			  FROM growing_periods
			  ORDER BY start_date`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.GrowingPeriod
	for rows.Next() {
		var gp models.GrowingPeriod
		if err := rows.Scan(&gp.ID, &gp.StartDate, &gp.EndDate,
			s.types.SQLScanner(&gp.WeeksWithoutDelivery), &gp.MaxJokersPerMember); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, gp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPickupLocation возвращает пункт выдачи по ID.
func (s *Storage) GetPickupLocation(ctx context.Context, id int) (*models.PickupLocation, error) {
	const op = "storage.GetPickupLocation"
	var loc models.PickupLocation
	err := s.DB.QueryRowContext(ctx, `SELECT id, name FROM pickup_locations WHERE id = $1`, id).
		Scan(&loc.ID, &loc.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &loc, nil
}

// ListOpeningTimes возвращает часы работы пункта выдачи в порядке добавления.
func (s *Storage) ListOpeningTimes(ctx context.Context, pickupLocationID int) ([]models.PickupLocationOpeningTime, error) {
	const op = "storage.ListOpeningTimes"
	query := `SELECT pickup_location_id, day_of_week, to_char(open_time, 'HH24:MI'), to_char(close_time, 'HH24:MI')
			  FROM pickup_location_opening_times
			  WHERE pickup_location_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, pickupLocationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.PickupLocationOpeningTime
	for rows.Next() {
		var ot models.PickupLocationOpeningTime
		if err := rows.Scan(&ot.PickupLocationID, &ot.DayOfWeek, &ot.OpenTime, &ot.CloseTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, ot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPickupLocationAssignments возвращает выборы пункта выдачи участника.
func (s *Storage) ListPickupLocationAssignments(ctx context.Context, memberID int) ([]models.PickupLocationAssignment, error) {
	const op = "storage.ListPickupLocationAssignments"
	query := `SELECT member_id, pickup_location_id, valid_from
			  FROM pickup_location_assignments
			  WHERE member_id = $1
			  ORDER BY valid_from`
	rows, err := s.DB.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.PickupLocationAssignment
	for rows.Next() {
		var a models.PickupLocationAssignment
		if err := rows.Scan(&a.MemberID, &a.PickupLocationID, &a.ValidFrom); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListNoticePeriods возвращает сроки уведомления по типам продуктов и сезонам.
func (s *Storage) ListNoticePeriods(ctx context.Context) ([]models.NoticePeriod, error) {
	const op = "storage.ListNoticePeriods"
	rows, err := s.DB.QueryContext(ctx, `SELECT product_type_id, growing_period_id, months FROM notice_periods`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.NoticePeriod
	for rows.Next() {
		var np models.NoticePeriod
		if err := rows.Scan(&np.ProductTypeID, &np.GrowingPeriodID, &np.Months); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, np)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
