package deliverycycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
	"github.com/magabrotheeeer/csa-backend/internal/models"
)

var date = daterange.Date

func TestResolver_IsActive(t *testing.T) {
	r := NewResolver(time.Wednesday, date(2025, 1, 8), 6)

	tests := []struct {
		name  string
		cycle models.DeliveryCycle
		at    time.Time
		want  bool
	}{
		{"weekly always", models.Weekly, date(2025, 1, 1), true},
		{"no delivery never", models.NoDelivery, date(2025, 1, 1), false},
		{"odd week 1", models.OddWeeks, date(2025, 1, 1), true},
		{"even week 1", models.EvenWeeks, date(2025, 1, 1), false},
		{"even week 2", models.EvenWeeks, date(2025, 1, 6), true},
		{"four weeks at anchor week", models.EveryFourWeeks, date(2025, 1, 6), true},
		{"four weeks one week later", models.EveryFourWeeks, date(2025, 1, 15), false},
		{"four weeks four weeks later", models.EveryFourWeeks, date(2025, 2, 5), true},
		{"four weeks before anchor", models.EveryFourWeeks, date(2024, 12, 11), true},
		{"four weeks three weeks before anchor", models.EveryFourWeeks, date(2024, 12, 18), false},
		{"unknown cycle", models.DeliveryCycle("fortnightly"), date(2025, 1, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsActive(tt.cycle, tt.at))
		})
	}
}

func TestResolver_EveryFourWeeksWithoutAnchor(t *testing.T) {
	r := NewResolver(time.Wednesday, time.Time{}, 6)
	assert.False(t, r.IsActive(models.EveryFourWeeks, date(2025, 1, 8)))
}

func TestResolver_ActiveCycles(t *testing.T) {
	r := NewResolver(time.Wednesday, time.Time{}, 6)
	assert.ElementsMatch(t, []models.DeliveryCycle{models.Weekly, models.OddWeeks}, r.ActiveCycles(date(2025, 1, 1)))
}

func TestValidate(t *testing.T) {
	for _, cycle := range models.DeliveryCycles {
		assert.NoError(t, Validate(cycle))
	}
	err := Validate("monthly")
	assert.True(t, errors.Is(err, ErrUnknownDeliveryCycle))
}

func TestResolver_CountDeliveries(t *testing.T) {
	r := NewResolver(time.Wednesday, time.Time{}, 6)
	period := models.GrowingPeriod{StartDate: date(2025, 1, 1), EndDate: date(2025, 2, 28)}

	assert.Equal(t, 9, r.CountDeliveries(period, models.Weekly, period.StartDate, period.EndDate))
	assert.Equal(t, 4, r.CountDeliveries(period, models.EvenWeeks, period.StartDate, period.EndDate))
	assert.Equal(t, 5, r.CountDeliveries(period, models.OddWeeks, period.StartDate, period.EndDate))
	assert.Equal(t, 0, r.CountDeliveries(period, models.NoDelivery, period.StartDate, period.EndDate))
}

func TestResolver_CountDeliveriesSkipsWeeksWithoutDelivery(t *testing.T) {
	r := NewResolver(time.Wednesday, time.Time{}, 6)
	period := models.GrowingPeriod{
		StartDate:            date(2025, 1, 1),
		EndDate:              date(2025, 2, 28),
		WeeksWithoutDelivery: []int{1, 2},
	}

	assert.Equal(t, 7, r.CountDeliveries(period, models.Weekly, period.StartDate, period.EndDate))
	assert.Equal(t, 3, r.CountDeliveries(period, models.EvenWeeks, period.StartDate, period.EndDate))
	assert.Equal(t, 4, r.CountDeliveries(period, models.OddWeeks, period.StartDate, period.EndDate))
}

func TestResolver_CountDeliveriesEndIsExclusive(t *testing.T) {
	r := NewResolver(time.Wednesday, time.Time{}, 6)
	period := models.GrowingPeriod{StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31)}

	// среда 2025-01-08 в полуинтервал не входит
	assert.Equal(t, 1, r.CountDeliveries(period, models.Weekly, date(2025, 1, 1), date(2025, 1, 8)))
}

func TestResolver_NextDeliveryDate(t *testing.T) {
	r := NewResolver(time.Wednesday, time.Time{}, 6)
	friday := []models.PickupLocationOpeningTime{{DayOfWeek: 4}, {DayOfWeek: 5}}
	monday := []models.PickupLocationOpeningTime{{DayOfWeek: 0}}

	tests := []struct {
		name    string
		from    time.Time
		opening []models.PickupLocationOpeningTime
		want    time.Time
	}{
		{"on delivery day", date(2025, 1, 1), nil, date(2025, 1, 1)},
		{"before delivery day", date(2024, 12, 30), nil, date(2025, 1, 1)},
		{"after delivery day", date(2025, 1, 2), nil, date(2025, 1, 8)},
		{"shifted to first opening day", date(2025, 1, 1), friday, date(2025, 1, 3)},
		{"thursday with friday opening stays in week", date(2025, 1, 2), friday, date(2025, 1, 3)},
		{"saturday with friday opening moves to next week", date(2025, 1, 4), friday, date(2025, 1, 10)},
		{"monday opening on tuesday moves to next week", date(2024, 12, 31), monday, date(2025, 1, 6)},
		{"time of day ignored", time.Date(2025, 1, 1, 18, 30, 0, 0, time.UTC), nil, date(2025, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.NextDeliveryDate(tt.from, tt.opening))
		})
	}
}

func TestShiftToOpeningDay(t *testing.T) {
	wed := date(2025, 1, 1)
	assert.Equal(t, wed, ShiftToOpeningDay(wed, nil))
	assert.Equal(t, date(2025, 1, 3), ShiftToOpeningDay(wed, []models.PickupLocationOpeningTime{{DayOfWeek: 4}}))
	assert.Equal(t, date(2024, 12, 30), ShiftToOpeningDay(wed, []models.PickupLocationOpeningTime{{DayOfWeek: 0}}))
}

func TestResolver_DateLimitForJokerChanges(t *testing.T) {
	r := NewResolver(time.Wednesday, time.Time{}, 6)
	// выдача 2025-08-13 (среда), изменения до четверга предыдущей недели
	assert.Equal(t, date(2025, 8, 7), r.DateLimitForJokerChanges(date(2025, 8, 15)))
	assert.Equal(t, date(2025, 8, 7), r.DateLimitForJokerChanges(date(2025, 8, 11)))
}
