package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/services/deliverycycle"
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	weeksPerYear  = decimal.NewFromInt(52)
)

// FullMonthThreshold количество выдач в неполном месяце, после превышения которого
// месяц оплачивается полностью.
func FullMonthThreshold(cycle models.DeliveryCycle) (int, error) {
	switch cycle {
	case models.Weekly:
		return 4, nil
	case models.OddWeeks, models.EvenWeeks:
		return 2, nil
	case models.EveryFourWeeks:
		return 1, nil
	case models.NoDelivery:
		return 0, nil
	}
	return 0, fmt.Errorf("payment.FullMonthThreshold: %w: %q", deliverycycle.ErrUnknownDeliveryCycle, cycle)
}

// PricePerDelivery цена одной выдачи продукта на дату date без солидарной надбавки.
// Месячная цена приводится к неделе (12/52) и умножается на число недель между выдачами:
// раз в четыре недели это недельная цена ×4, так же как ×2 для чётных и нечётных недель.
func PricePerDelivery(product models.Product, date time.Time) (decimal.Decimal, error) {
	weekly := product.PriceAt(date).Mul(monthsPerYear).Div(weeksPerYear)
	switch product.Type.DeliveryCycle {
	case models.Weekly, models.NoDelivery:
		return weekly, nil
	case models.OddWeeks, models.EvenWeeks:
		return weekly.Mul(decimal.NewFromInt(2)), nil
	case models.EveryFourWeeks:
		return weekly.Mul(decimal.NewFromInt(4)), nil
	}
	return decimal.Zero, fmt.Errorf("payment.PricePerDelivery: %w: %q", deliverycycle.ErrUnknownDeliveryCycle, product.Type.DeliveryCycle)
}

// RhythmWindow окно оплаты [start, end) ритма rhythm, содержащее месяц reference.
// Окна выровнены по календарному году: кварталы начинаются в январе, апреле, июле и октябре.
func RhythmWindow(rhythm models.PaymentRhythm, reference time.Time) (time.Time, time.Time) {
	n := rhythm.Months()
	startMonth := (int(reference.Month())-1)/n*n + 1
	start := daterange.Date(reference.Year(), time.Month(startMonth), 1)
	return start, start.AddDate(0, n, 0)
}

// DueDate день оплаты в месяце reference. День больше длины месяца переносится на последний день.
func DueDate(reference time.Time, dueDay int) time.Time {
	last := daterange.Date(reference.Year(), reference.Month()+1, 0).Day()
	dueDay = max(1, min(dueDay, last))
	return daterange.Date(reference.Year(), reference.Month(), dueDay)
}
