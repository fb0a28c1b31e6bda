// Package payment рассчитывает ежемесячные платежи участников по подпискам.
package payment

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
	"github.com/magabrotheeeer/csa-backend/internal/lib/month"
	"github.com/magabrotheeeer/csa-backend/internal/lookup"
	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// Repository определяет методы хранилища, нужные для расчёта платежей.
type Repository interface {
	// ListSubscriptions возвращает подписки, пересекающиеся с [from, to].
	ListSubscriptions(ctx context.Context, from, to time.Time) ([]models.Subscription, error)
	// ListPayments возвращает платежи мандата по типу продукта.
	ListPayments(ctx context.Context, mandateRef, paymentType string) ([]models.Payment, error)
	// CreatePayments сохраняет платежи, пропуская уже существующие, и возвращает сохранённые.
	CreatePayments(ctx context.Context, payments []models.Payment) ([]models.Payment, error)
}

// RhythmResolver определяет ритм оплаты участника.
type RhythmResolver interface {
	RhythmFor(ctx context.Context, memberID int, date time.Time) (models.PaymentRhythm, error)
}

// CycleResolver вычисляет даты выдач для подсчёта выдач в неполном месяце.
type CycleResolver interface {
	IsActive(cycle models.DeliveryCycle, date time.Time) bool
	NextDeliveryDate(date time.Time, openingTimes []models.PickupLocationOpeningTime) time.Time
}

// Builder формирует платежи за календарный месяц.
type Builder struct {
	repo    Repository
	rhythms RhythmResolver
	cycles  CycleResolver
	newMemo func() *lookup.Memo
	log     *slog.Logger
}

// NewBuilder создаёт новый экземпляр Builder.
func NewBuilder(repo Repository, rhythms RhythmResolver, cycles CycleResolver, newMemo func() *lookup.Memo, log *slog.Logger) *Builder {
	return &Builder{
		repo:    repo,
		rhythms: rhythms,
		cycles:  cycles,
		newMemo: newMemo,
		log:     log,
	}
}

type groupKey struct {
	MemberID   int
	MandateRef string
	Type       string
}

// run состояние одного вызова BuildPaymentsForMonth.
type run struct {
	memo      *lookup.Memo
	reference time.Time
	previous  time.Time
	dueDate   time.Time
	// generated подписки, уже выставленные за предыдущий месяц в пробном проходе.
	generated map[int]struct{}
}

// BuildPaymentsForMonth рассчитывает несохранённые платежи за месяц reference.
//
// Подписки группируются по участнику, мандату и типу продукта. Для каждой группы
// подписки после пробного периода оплачиваются вперёд за окно ритма участника,
// а подписки, бывшие в пробном периоде в предыдущем месяце, оплачиваются за
// предыдущий месяц. Обе части объединяются в один платёж на уже оплаченную сумму меньше.
func (b *Builder) BuildPaymentsForMonth(ctx context.Context, reference time.Time) ([]models.Payment, error) {
	const op = "payment.BuildPaymentsForMonth"
	log := b.log.With(slog.String("op", op), slog.String("month", reference.Format("01-2006")))

	r := &run{
		memo:      b.newMemo(),
		reference: month.FirstDay(reference),
		previous:  month.Previous(reference),
		generated: make(map[int]struct{}),
	}

	dueDay, err := r.memo.IntParam(ctx, models.ParamPaymentDueDay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.dueDate = DueDate(r.reference, dueDay)

	yearStart := daterange.Date(r.reference.Year(), time.January, 1)
	subs, err := b.repo.ListSubscriptions(ctx, daterange.Min(r.previous, yearStart), yearStart.AddDate(1, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	groups := lo.GroupBy(subs, func(s models.Subscription) groupKey {
		return groupKey{MemberID: s.MemberID, MandateRef: s.MandateRef, Type: s.Product.Type.Name}
	})
	keys := lo.Keys(groups)
	slices.SortFunc(keys, func(a, b groupKey) int {
		return cmp.Or(cmp.Compare(a.MemberID, b.MemberID), cmp.Compare(a.MandateRef, b.MandateRef), cmp.Compare(a.Type, b.Type))
	})

	payments := make([]models.Payment, 0)
	for _, key := range keys {
		p, err := b.buildGroupPayment(ctx, r, key, groups[key])
		if err != nil {
			return nil, fmt.Errorf("%s: member %d: %w", op, key.MemberID, err)
		}
		if p != nil {
			payments = append(payments, *p)
		}
	}

	log.Info("payments built", slog.Int("subscriptions", len(subs)), slog.Int("payments", len(payments)))
	return payments, nil
}

// CreatePaymentsForMonth рассчитывает и сохраняет платежи за месяц reference.
// Возвращает только платежи, которые действительно были сохранены.
func (b *Builder) CreatePaymentsForMonth(ctx context.Context, reference time.Time) ([]models.Payment, error) {
	const op = "payment.CreatePaymentsForMonth"
	payments, err := b.BuildPaymentsForMonth(ctx, reference)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return payments, nil
	}
	created, err := b.repo.CreatePayments(ctx, payments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (b *Builder) buildGroupPayment(ctx context.Context, r *run, key groupKey, subs []models.Subscription) (*models.Payment, error) {
	rhythm, err := b.rhythms.RhythmFor(ctx, key.MemberID, r.reference)
	if err != nil {
		return nil, err
	}
	windowStart, windowEnd := RhythmWindow(rhythm, r.reference)
	windowLast := windowEnd.AddDate(0, 0, -1)
	previousLast := month.LastDay(r.previous)

	// Пробный проход: подписки в пробном периоде в предыдущем месяце оплачиваются за него.
	trialTotal := decimal.Zero
	trialBilled := false
	for _, sub := range subs {
		if !sub.IsInTrialOn(r.previous, previousLast) || !daterange.Overlap(sub.StartDate, sub.EndDate, r.previous, previousLast) {
			continue
		}
		amount, err := b.amountForMonth(ctx, r, sub, r.previous)
		if err != nil {
			return nil, err
		}
		trialTotal = trialTotal.Add(amount)
		trialBilled = true
		r.generated[sub.ID] = struct{}{}
	}

	// Основной проход: подписки после пробного периода оплачиваются за окно ритма.
	regularTotal := decimal.Zero
	regularBilled := false
	for _, sub := range subs {
		if trialEnd, ok := sub.TrialEndDate(); ok && !trialEnd.Before(r.reference) {
			continue
		}
		if !daterange.Overlap(sub.StartDate, sub.EndDate, windowStart, windowLast) {
			continue
		}
		_, billedAsTrial := r.generated[sub.ID]
		for m := windowStart; m.Before(windowEnd); m = month.Next(m) {
			if billedAsTrial && m.Before(r.reference) {
				continue
			}
			amount, err := b.amountForMonth(ctx, r, sub, m)
			if err != nil {
				return nil, err
			}
			regularTotal = regularTotal.Add(amount)
		}
		regularBilled = true
	}

	if !trialBilled && !regularBilled {
		return nil, nil
	}

	existing, err := b.repo.ListPayments(ctx, key.MandateRef, key.Type)
	if err != nil {
		return nil, err
	}
	alreadyPaid := decimal.Zero
	for _, p := range existing {
		regular := regularBilled && daterange.Overlap(p.RangeStart, p.RangeEnd, windowStart, windowLast)
		// Оплата пробного месяца выставляется не раньше следующего месяца.
		trial := trialBilled && daterange.Overlap(p.RangeStart, p.RangeEnd, r.previous, previousLast) && !p.DueDate.Before(r.reference)
		if regular || trial {
			alreadyPaid = alreadyPaid.Add(p.Amount)
		}
	}

	newAmount := trialTotal.Add(regularTotal).Sub(alreadyPaid).Round(2)
	if !newAmount.IsPositive() {
		return nil, nil
	}

	rangeStart, rangeEnd := windowStart, windowLast
	switch {
	case trialBilled && regularBilled:
		rangeStart = daterange.Min(windowStart, r.previous)
	case trialBilled:
		rangeStart, rangeEnd = r.previous, previousLast
	}

	return &models.Payment{
		MandateRef: key.MandateRef,
		DueDate:    r.dueDate,
		Amount:     newAmount,
		Status:     models.PaymentStatusDue,
		Type:       key.Type,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	}, nil
}

// amountForMonth сумма к оплате по подписке за месяц monthStart.
//
// Полностью покрытый месяц оплачивается по месячной цене. В неполном месяце
// считаются выдачи: если их больше порога ритма выдачи, месяц оплачивается
// полностью, иначе оплачивается каждая выдача без солидарной надбавки.
func (b *Builder) amountForMonth(ctx context.Context, r *run, sub models.Subscription, monthStart time.Time) (decimal.Decimal, error) {
	monthLast := month.LastDay(monthStart)
	if !daterange.Overlap(sub.StartDate, sub.EndDate, monthStart, monthLast) {
		return decimal.Zero, nil
	}
	from := daterange.Max(sub.StartDate, monthStart)
	if month.IsFullyCovered(sub.StartDate, sub.EndDate, monthStart) {
		return sub.MonthlyPrice(from), nil
	}

	threshold, err := FullMonthThreshold(sub.DeliveryCycle())
	if err != nil {
		return decimal.Zero, err
	}
	count, err := b.countDeliveries(ctx, r, sub, from, daterange.Min(sub.EndDate, monthLast))
	if err != nil {
		return decimal.Zero, err
	}
	if count > threshold {
		return sub.MonthlyPrice(from), nil
	}

	perDelivery, err := PricePerDelivery(sub.Product, from)
	if err != nil {
		return decimal.Zero, err
	}
	return perDelivery.Mul(decimal.NewFromInt(int64(count * sub.Quantity))), nil
}

// countDeliveries считает выдачи подписки в [from, to] с учётом пункта выдачи
// на каждую дату и недель без выдачи.
func (b *Builder) countDeliveries(ctx context.Context, r *run, sub models.Subscription, from, to time.Time) (int, error) {
	count := 0
	for d := from; !d.After(to); {
		location, err := r.memo.PickupLocationAt(ctx, sub.MemberID, d)
		if err != nil {
			return 0, err
		}
		var openingTimes []models.PickupLocationOpeningTime
		if location != nil {
			if openingTimes, err = r.memo.OpeningTimes(ctx, location.ID); err != nil {
				return 0, err
			}
		}

		next := b.cycles.NextDeliveryDate(d, openingTimes)
		if next.After(to) {
			break
		}
		period, err := r.memo.GrowingPeriodAt(ctx, next)
		if err != nil {
			return 0, err
		}
		cancelled := period != nil && period.IsDeliveryCancelled(next)
		if !cancelled && b.cycles.IsActive(sub.DeliveryCycle(), next) {
			count++
		}
		d = next.AddDate(0, 0, 1)
	}
	return count, nil
}
