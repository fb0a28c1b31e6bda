package models

import (
	"slices"
	"time"
)

// GrowingPeriod сезон: окно, внутри которого действуют цены, ёмкости и лимит джокеров.
type GrowingPeriod struct {
	ID                   int       `json:"id"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	WeeksWithoutDelivery []int     `json:"weeks_without_delivery"`
	MaxJokersPerMember   int       `json:"max_jokers_per_member"`
}

// Contains сообщает, попадает ли дата в сезон (границы включительно).
func (g GrowingPeriod) Contains(date time.Time) bool {
	return !date.Before(g.StartDate) && !date.After(g.EndDate)
}

// IsDeliveryCancelled сообщает, отменена ли выдача в ISO-неделю даты date.
func (g GrowingPeriod) IsDeliveryCancelled(date time.Time) bool {
	_, week := date.ISOWeek()
	return slices.Contains(g.WeeksWithoutDelivery, week)
}
