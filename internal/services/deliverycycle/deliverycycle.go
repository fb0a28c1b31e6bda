// Package deliverycycle определяет, в какие недели активен ритм выдачи,
// и вычисляет даты выдач с учётом часов работы пунктов выдачи.
package deliverycycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// ErrUnknownDeliveryCycle неизвестное значение ритма выдачи.
var ErrUnknownDeliveryCycle = errors.New("unknown delivery cycle")

// Resolver вычисляет активность ритмов выдачи и даты выдач.
type Resolver struct {
	weekday         time.Weekday
	fourWeeksAnchor time.Time
	jokerNoticeDays int
}

// NewResolver создаёт Resolver.
//
// weekday задаёт день выдачи по умолчанию. От недели даты fourWeeksAnchor
// отсчитывается ритм «раз в четыре недели», нулевое значение отключает этот ритм.
// За jokerNoticeDays дней до выдачи закрываются изменения джокеров.
func NewResolver(weekday time.Weekday, fourWeeksAnchor time.Time, jokerNoticeDays int) *Resolver {
	return &Resolver{
		weekday:         weekday,
		fourWeeksAnchor: fourWeeksAnchor,
		jokerNoticeDays: jokerNoticeDays,
	}
}

// Validate проверяет, что ритм выдачи известен.
func Validate(cycle models.DeliveryCycle) error {
	switch cycle {
	case models.NoDelivery, models.Weekly, models.OddWeeks, models.EvenWeeks, models.EveryFourWeeks:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownDeliveryCycle, cycle)
}

// IsActive сообщает, есть ли выдача по ритму cycle в ISO-неделе даты date.
func (r *Resolver) IsActive(cycle models.DeliveryCycle, date time.Time) bool {
	_, week := date.ISOWeek()
	switch cycle {
	case models.Weekly:
		return true
	case models.EvenWeeks:
		return week%2 == 0
	case models.OddWeeks:
		return week%2 == 1
	case models.EveryFourWeeks:
		if r.fourWeeksAnchor.IsZero() {
			return false
		}
		weeks := daterange.DaysBetween(daterange.StartOfWeek(r.fourWeeksAnchor), daterange.StartOfWeek(date)) / 7
		return ((weeks%4)+4)%4 == 0
	default:
		return false
	}
}

// ActiveCycles возвращает ритмы, активные в неделе даты date.
func (r *Resolver) ActiveCycles(date time.Time) []models.DeliveryCycle {
	var active []models.DeliveryCycle
	for _, cycle := range models.DeliveryCycles {
		if r.IsActive(cycle, date) {
			active = append(active, cycle)
		}
	}
	return active
}

// DeliveryDayOfWeek возвращает день выдачи по умолчанию в неделе даты date.
func (r *Resolver) DeliveryDayOfWeek(date time.Time) time.Time {
	offset := (int(r.weekday) + 6) % 7
	return daterange.StartOfWeek(date).AddDate(0, 0, offset)
}

// ShiftToOpeningDay переносит дату выдачи на день недели первой записи часов работы.
// Без часов работы дата не меняется.
func ShiftToOpeningDay(date time.Time, openingTimes []models.PickupLocationOpeningTime) time.Time {
	if len(openingTimes) == 0 {
		return date
	}
	return date.AddDate(0, 0, openingTimes[0].DayOfWeek-daterange.WeekdayIndex(date))
}

// NextDeliveryDate возвращает ближайшую дату выдачи не раньше date
// для пункта выдачи с часами работы openingTimes.
func (r *Resolver) NextDeliveryDate(date time.Time, openingTimes []models.PickupLocationOpeningTime) time.Time {
	day := daterange.Day(date)
	candidate := ShiftToOpeningDay(r.DeliveryDayOfWeek(day), openingTimes)
	if candidate.Before(day) {
		candidate = ShiftToOpeningDay(r.DeliveryDayOfWeek(day.AddDate(0, 0, 7)), openingTimes)
	}
	return candidate
}

// CountDeliveries считает выдачи по ритму cycle в полуинтервале [start, end) сезона period.
//
// Подсчёт идёт неделя за неделей, чтобы исключить недели без выдачи сезона.
func (r *Resolver) CountDeliveries(period models.GrowingPeriod, cycle models.DeliveryCycle, start, end time.Time) int {
	count := 0
	for d := r.NextDeliveryDate(start, nil); d.Before(daterange.Day(end)); d = d.AddDate(0, 0, 7) {
		if period.IsDeliveryCancelled(d) {
			continue
		}
		if r.IsActive(cycle, d) {
			count++
		}
	}
	return count
}

// DateLimitForJokerChanges последний день, когда ещё можно взять или отменить джокер
// на выдачу в неделе даты date.
func (r *Resolver) DateLimitForJokerChanges(date time.Time) time.Time {
	return r.DeliveryDayOfWeek(date).AddDate(0, 0, -r.jokerNoticeDays)
}
