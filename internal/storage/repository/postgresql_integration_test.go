package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

func TestStorage_Integration(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(s)

	memberID := factory.CreateMember(t, "quarterly")
	periodID := factory.CreateGrowingPeriod(t, date(2025, 1, 1), date(2025, 12, 31), []int{1, 52}, 3)
	productID := factory.CreateProduct(t, "vegetables", "weekly", "100.00", date(2024, 1, 1))
	subID, mandate := factory.CreateSubscription(t, memberID, productID, periodID, date(2025, 1, 1), date(2025, 12, 31))
	locationID := factory.CreatePickupLocation(t, memberID, date(2025, 1, 1), 4)

	t.Run("growing periods", func(t *testing.T) {
		periods, err := s.ListGrowingPeriods(ctx)
		require.NoError(t, err)
		require.Len(t, periods, 1)
		assert.Equal(t, []int{1, 52}, periods[0].WeeksWithoutDelivery)
		assert.Equal(t, 3, periods[0].MaxJokersPerMember)
		assert.Equal(t, date(2025, 1, 1), periods[0].StartDate)
	})

	t.Run("pickup location", func(t *testing.T) {
		loc, err := s.GetPickupLocation(ctx, locationID)
		require.NoError(t, err)
		assert.Equal(t, "Hofladen", loc.Name)

		_, err = s.GetPickupLocation(ctx, locationID+100)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		times, err := s.ListOpeningTimes(ctx, locationID)
		require.NoError(t, err)
		require.Len(t, times, 1)
		assert.Equal(t, 4, times[0].DayOfWeek)
		assert.Equal(t, "16:00", times[0].OpenTime)

		assignments, err := s.ListPickupLocationAssignments(ctx, memberID)
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		assert.Equal(t, locationID, assignments[0].PickupLocationID)
	})

	t.Run("subscriptions", func(t *testing.T) {
		subs, err := s.ListMemberSubscriptions(ctx, memberID, date(2025, 3, 1), date(2025, 3, 31))
		require.NoError(t, err)
		require.Len(t, subs, 1)
		sub := subs[0]
		assert.Equal(t, subID, sub.ID)
		assert.Equal(t, models.Weekly, sub.DeliveryCycle())
		assert.Equal(t, mandate, sub.MandateRef)
		require.Len(t, sub.Product.Prices, 1)
		assert.True(t, decimal.NewFromInt(105).Equal(sub.MonthlyPrice(date(2025, 3, 1))))

		all, err := s.ListSubscriptions(ctx, date(2026, 1, 1), date(2026, 1, 31))
		require.NoError(t, err)
		assert.Empty(t, all)

		got, err := s.GetSubscription(ctx, subID)
		require.NoError(t, err)
		assert.Nil(t, got.CancellationTS)

		require.NoError(t, s.CancelSubscription(ctx, subID, date(2025, 3, 1)))
		assert.ErrorIs(t, s.CancelSubscription(ctx, subID, date(2025, 3, 2)), storage.ErrAlreadyExists)
		assert.ErrorIs(t, s.CancelSubscription(ctx, subID+100, date(2025, 3, 2)), storage.ErrNotFound)
	})

	t.Run("members", func(t *testing.T) {
		m, err := s.GetMember(ctx, memberID)
		require.NoError(t, err)
		assert.Equal(t, models.RhythmQuarterly, m.PaymentRhythm)

		byMandate, err := s.GetMemberByMandate(ctx, mandate)
		require.NoError(t, err)
		assert.Equal(t, memberID, byMandate.ID)

		_, err = s.GetMemberByMandate(ctx, "unknown")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("jokers", func(t *testing.T) {
		id, err := s.CreateJoker(ctx, models.Joker{MemberID: memberID, Date: date(2025, 8, 13)})
		require.NoError(t, err)

		// тот же участник в той же ISO-неделе
		_, err = s.CreateJoker(ctx, models.Joker{MemberID: memberID, Date: date(2025, 8, 15)})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		has, err := s.HasJokerInWeek(ctx, memberID, date(2025, 8, 11))
		require.NoError(t, err)
		assert.True(t, has)

		count, err := s.CountJokers(ctx, memberID, date(2025, 8, 1), date(2025, 8, 31))
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		listed, err := s.ListMemberJokers(ctx, memberID, date(2025, 1, 1), date(2025, 12, 31))
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, id, listed[0].ID)

		require.NoError(t, s.DeleteJoker(ctx, id))
		assert.ErrorIs(t, s.DeleteJoker(ctx, id), storage.ErrNotFound)
		_, err = s.GetJoker(ctx, id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("payments", func(t *testing.T) {
		p := models.Payment{
			MandateRef: mandate,
			DueDate:    date(2025, 1, 15),
			Amount:     decimal.RequireFromString("315.00"),
			Type:       "vegetables",
			RangeStart: date(2025, 1, 1),
			RangeEnd:   date(2025, 3, 31),
		}
		created, err := s.CreatePayments(ctx, []models.Payment{p})
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.NotZero(t, created[0].ID)
		assert.Equal(t, models.PaymentStatusDue, created[0].Status)

		again, err := s.CreatePayments(ctx, []models.Payment{p})
		require.NoError(t, err)
		assert.Empty(t, again)

		stored, err := s.ListPayments(ctx, mandate, "vegetables")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.True(t, p.Amount.Equal(stored[0].Amount))
		assert.Equal(t, date(2025, 3, 31), stored[0].RangeEnd)
	})

	t.Run("parameters", func(t *testing.T) {
		_, err := s.GetParameter(ctx, models.ParamJokersEnabled)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, s.SetParameter(ctx, models.ParamJokersEnabled, "true"))
		require.NoError(t, s.SetParameter(ctx, models.ParamJokersEnabled, "false"))

		v, err := s.GetParameter(ctx, models.ParamJokersEnabled)
		require.NoError(t, err)
		assert.Equal(t, "false", v)
	})
}
