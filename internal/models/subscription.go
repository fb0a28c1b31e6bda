// Package models содержит доменные структуры кооператива: подписки на доли урожая,
// сезоны, джокеры, платежи и пункты выдачи.
// Все даты хранятся как календарные дни (time.Time в полночь UTC).
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryCycle ритм, с которым тип продукта выдаётся участникам.
type DeliveryCycle string

const (
	NoDelivery     DeliveryCycle = "no_delivery"
	Weekly         DeliveryCycle = "weekly"
	OddWeeks       DeliveryCycle = "odd_weeks"
	EvenWeeks      DeliveryCycle = "even_weeks"
	EveryFourWeeks DeliveryCycle = "every_four_weeks"
)

// DeliveryCycles перечисляет все известные ритмы выдачи.
var DeliveryCycles = []DeliveryCycle{NoDelivery, Weekly, OddWeeks, EvenWeeks, EveryFourWeeks}

// ProductType тип продукта (например, овощи или хлеб).
type ProductType struct {
	ID                 int           `json:"id"`
	Name               string        `json:"name"`
	DeliveryCycle      DeliveryCycle `json:"delivery_cycle"`
	IsAffectedByJokers bool          `json:"is_affected_by_jokers"`
}

// ProductPrice месячная цена продукта, действующая с ValidFrom.
type ProductPrice struct {
	ValidFrom time.Time       `json:"valid_from"`
	Price     decimal.Decimal `json:"price"`
}

// Product продукт, на который оформляется подписка.
type Product struct {
	ID     int            `json:"id"`
	Name   string         `json:"name"`
	Type   ProductType    `json:"type"`
	Prices []ProductPrice `json:"prices"`
}

// PriceAt возвращает месячную цену, действующую на дату date.
// Если ни одна цена ещё не действует, возвращается ноль.
func (p Product) PriceAt(date time.Time) decimal.Decimal {
	var (
		found  bool
		latest ProductPrice
	)
	for _, price := range p.Prices {
		if price.ValidFrom.After(date) {
			continue
		}
		if !found || price.ValidFrom.After(latest.ValidFrom) {
			latest = price
			found = true
		}
	}
	if !found {
		return decimal.Zero
	}
	return latest.Price
}

// Subscription подписка участника на продукт в рамках сезона.
// Даты начала и окончания включительные.
type Subscription struct {
	ID                   int              `json:"id"`
	MemberID             int              `json:"member_id"`
	Product              Product          `json:"product"`
	GrowingPeriodID      int              `json:"growing_period_id"`
	Quantity             int              `json:"quantity"`
	StartDate            time.Time        `json:"start_date"`
	EndDate              time.Time        `json:"end_date"`
	CancellationTS       *time.Time       `json:"cancellation_ts,omitempty"`
	SolidarityPercentage decimal.Decimal  `json:"solidarity_price_percentage"`
	SolidarityAbsolute   *decimal.Decimal `json:"solidarity_price_absolute,omitempty"`
	MandateRef           string           `json:"mandate_ref"`
	NoticePeriodOverride *int             `json:"notice_period_duration,omitempty"`
	TrialDisabled        bool             `json:"trial_disabled"`
	TrialEndDateOverride *time.Time       `json:"trial_end_date_override,omitempty"`
}

// DeliveryCycle ритм выдачи по типу продукта подписки.
func (s Subscription) DeliveryCycle() DeliveryCycle {
	return s.Product.Type.DeliveryCycle
}

// IsActiveOn сообщает, покрывает ли подписка дату date.
func (s Subscription) IsActiveOn(date time.Time) bool {
	return !date.Before(s.StartDate) && !date.After(s.EndDate)
}

// MonthlyPrice полная месячная стоимость подписки на дату date с учётом солидарной надбавки.
// Абсолютная надбавка имеет приоритет над процентной.
func (s Subscription) MonthlyPrice(date time.Time) decimal.Decimal {
	base := s.Product.PriceAt(date).Mul(decimal.NewFromInt(int64(s.Quantity)))
	if s.SolidarityAbsolute != nil {
		return base.Add(*s.SolidarityAbsolute)
	}
	return base.Mul(decimal.NewFromInt(1).Add(s.SolidarityPercentage))
}

// TrialEndDate последний день пробного периода.
// Второе значение false, если у подписки нет пробного периода.
func (s Subscription) TrialEndDate() (time.Time, bool) {
	if s.TrialEndDateOverride != nil {
		return *s.TrialEndDateOverride, true
	}
	if s.TrialDisabled {
		return time.Time{}, false
	}
	firstOfNext := time.Date(s.StartDate.Year(), s.StartDate.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1), true
}

// IsInTrialOn сообщает, находится ли подписка в пробном периоде в какой-либо из дней [from, to].
func (s Subscription) IsInTrialOn(from, to time.Time) bool {
	trialEnd, ok := s.TrialEndDate()
	if !ok {
		return false
	}
	return !s.StartDate.After(to) && !trialEnd.Before(from)
}

// NoticePeriod срок уведомления об отмене для типа продукта в сезоне, в месяцах.
type NoticePeriod struct {
	ProductTypeID   int `json:"product_type_id"`
	GrowingPeriodID int `json:"growing_period_id"`
	Months          int `json:"months"`
}
