package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus статус платежа.
type PaymentStatus string

const (
	PaymentStatusDue  PaymentStatus = "DUE"
	PaymentStatusPaid PaymentStatus = "PAID"
)

// Payment платёж по мандату за диапазон дат.
// Уникален по (MandateRef, DueDate, Type), где Type это название типа продукта.
type Payment struct {
	ID         int             `json:"id"`
	MandateRef string          `json:"mandate_ref"`
	DueDate    time.Time       `json:"due_date"`
	Amount     decimal.Decimal `json:"amount"`
	Status     PaymentStatus   `json:"status"`
	Type       string          `json:"type"`
	RangeStart time.Time       `json:"payment_range_start"`
	RangeEnd   time.Time       `json:"payment_range_end"`
	Edited     bool            `json:"edited"`
}

// PaymentRhythm частота выставления счетов участнику.
type PaymentRhythm string

const (
	RhythmMonthly    PaymentRhythm = "monthly"
	RhythmQuarterly  PaymentRhythm = "quarterly"
	RhythmSemesterly PaymentRhythm = "semesterly"
	RhythmYearly     PaymentRhythm = "yearly"
)

// Months количество месяцев в одном периоде ритма. Неизвестный ритм считается месячным.
func (r PaymentRhythm) Months() int {
	switch r {
	case RhythmQuarterly:
		return 3
	case RhythmSemesterly:
		return 6
	case RhythmYearly:
		return 12
	default:
		return 1
	}
}
