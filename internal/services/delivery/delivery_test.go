package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/csa-backend/internal/lookup"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/services/deliverycycle"
	"github.com/magabrotheeeer/csa-backend/internal/services/joker"
)

type SubsMock struct{ mock.Mock }

func (m *SubsMock) ListMemberSubscriptions(ctx context.Context, memberID int, from, to time.Time) ([]models.Subscription, error) {
	args := m.Called(ctx, memberID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

type JokersMock struct{ mock.Mock }

func (m *JokersMock) JokersEnabled(ctx context.Context, lk joker.Lookup) (bool, error) {
	args := m.Called(ctx, lk)
	return args.Bool(0), args.Error(1)
}

func (m *JokersMock) HasJoker(ctx context.Context, lk joker.Lookup, memberID int, date time.Time) (bool, error) {
	args := m.Called(ctx, lk, memberID, date)
	return args.Bool(0), args.Error(1)
}

func (m *JokersMock) CanJokerBeUsed(ctx context.Context, lk joker.Lookup, memberID int, date time.Time) (bool, error) {
	args := m.Called(ctx, lk, memberID, date)
	return args.Bool(0), args.Error(1)
}

func (m *JokersMock) CanJokerBeUsedRelativeToDateLimit(date time.Time) bool {
	return m.Called(date).Bool(0)
}

// fakeStore справочные данные в памяти.
type fakeStore struct {
	periods      []models.GrowingPeriod
	locations    map[int]*models.PickupLocation
	openingTimes map[int][]models.PickupLocationOpeningTime
	assignments  []models.PickupLocationAssignment
}

func (f *fakeStore) ListGrowingPeriods(context.Context) ([]models.GrowingPeriod, error) {
	return f.periods, nil
}

func (f *fakeStore) GetPickupLocation(_ context.Context, id int) (*models.PickupLocation, error) {
	return f.locations[id], nil
}

func (f *fakeStore) ListOpeningTimes(_ context.Context, id int) ([]models.PickupLocationOpeningTime, error) {
	return f.openingTimes[id], nil
}

func (f *fakeStore) ListPickupLocationAssignments(context.Context, int) ([]models.PickupLocationAssignment, error) {
	return append([]models.PickupLocationAssignment(nil), f.assignments...), nil
}

func (f *fakeStore) ListNoticePeriods(context.Context) ([]models.NoticePeriod, error) {
	return nil, nil
}

type fakeParams map[string]string

func (p fakeParams) Get(_ context.Context, key string) (string, error) {
	return p[key], nil
}

type fakeJokerRepo struct{}

func (fakeJokerRepo) HasJokerInWeek(context.Context, int, time.Time) (bool, error) { return false, nil }
func (fakeJokerRepo) CountJokers(context.Context, int, time.Time, time.Time) (int, error) {
	return 0, nil
}
func (fakeJokerRepo) CreateJoker(context.Context, models.Joker) (int, error) { return 1, nil }
func (fakeJokerRepo) DeleteJoker(context.Context, int) error                 { return nil }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func date(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func weeklySub(id int, affected bool) models.Subscription {
	return models.Subscription{
		ID:       id,
		MemberID: 7,
		Product: models.Product{
			ID:   id,
			Name: "vegetables",
			Type: models.ProductType{ID: id, Name: "vegetables", DeliveryCycle: models.Weekly, IsAffectedByJokers: affected},
		},
		Quantity:  1,
		StartDate: date(2025, 1, 1),
		EndDate:   date(2025, 12, 31),
	}
}

func TestService_ListDeliveries_WeeklyJanuary(t *testing.T) {
	ctx := context.Background()
	sub := weeklySub(1, true)

	subs := new(SubsMock)
	subs.On("ListMemberSubscriptions", mock.Anything, 7, date(2025, 1, 1), date(2025, 1, 31)).
		Return([]models.Subscription{sub}, nil)

	store := &fakeStore{periods: []models.GrowingPeriod{{ID: 1, StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31)}}}
	params := fakeParams{models.ParamJokersEnabled: "false"}
	resolver := deliverycycle.NewResolver(time.Wednesday, time.Time{}, 6)
	engine := joker.NewEngine(fakeJokerRepo{}, resolver, newNoopLogger())

	svc := New(subs, resolver, engine, lookup.Factory(store, params), newNoopLogger())

	got, err := svc.ListDeliveries(ctx, 7, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	require.Len(t, got, 5)

	want := []time.Time{date(2025, 1, 1), date(2025, 1, 8), date(2025, 1, 15), date(2025, 1, 22), date(2025, 1, 29)}
	for i, d := range got {
		assert.Equal(t, want[i], d.DeliveryDate)
		assert.False(t, d.JokerUsed)
		assert.False(t, d.CanJokerBeUsed)
		assert.False(t, d.IsDeliveryCancelledThisWeek)
		assert.Nil(t, d.PickupLocation)
		require.Len(t, d.Subscriptions, 1)
		assert.Equal(t, sub.ID, d.Subscriptions[0].ID)
	}
}

func TestService_Deliveries_SkipsWeeksWithoutSubscriptions(t *testing.T) {
	ctx := context.Background()
	even := weeklySub(2, true)
	even.Product.Type.DeliveryCycle = models.EvenWeeks

	subs := new(SubsMock)
	subs.On("ListMemberSubscriptions", mock.Anything, 7, mock.Anything, mock.Anything).
		Return([]models.Subscription{even}, nil)

	store := &fakeStore{}
	resolver := deliverycycle.NewResolver(time.Wednesday, time.Time{}, 6)
	engine := joker.NewEngine(fakeJokerRepo{}, resolver, newNoopLogger())
	svc := New(subs, resolver, engine, lookup.Factory(store, fakeParams{}), newNoopLogger())

	got, err := svc.ListDeliveries(ctx, 7, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	// чётные ISO-недели января 2025: 2 и 4
	require.Len(t, got, 2)
	assert.Equal(t, date(2025, 1, 8), got[0].DeliveryDate)
	assert.Equal(t, date(2025, 1, 22), got[1].DeliveryDate)
}

func TestService_Deliveries_JokerAndOpeningTimes(t *testing.T) {
	ctx := context.Background()
	affected := weeklySub(1, true)
	unaffected := weeklySub(2, false)

	subs := new(SubsMock)
	subs.On("ListMemberSubscriptions", mock.Anything, 7, mock.Anything, mock.Anything).
		Return([]models.Subscription{affected, unaffected}, nil)

	location := &models.PickupLocation{ID: 3, Name: "Hof"}
	store := &fakeStore{
		periods: []models.GrowingPeriod{{
			ID: 1, StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31), WeeksWithoutDelivery: []int{3},
		}},
		locations: map[int]*models.PickupLocation{3: location},
		openingTimes: map[int][]models.PickupLocationOpeningTime{
			3: {{PickupLocationID: 3, DayOfWeek: 4, OpenTime: "14:00", CloseTime: "18:00"}},
		},
		assignments: []models.PickupLocationAssignment{{MemberID: 7, PickupLocationID: 3, ValidFrom: date(2025, 6, 1)}},
	}
	resolver := deliverycycle.NewResolver(time.Wednesday, time.Time{}, 6)

	jokers := new(JokersMock)
	jokers.On("JokersEnabled", mock.Anything, mock.Anything).Return(true, nil)
	// джокер взят на неделю 2: выдача переносится на пятницу 10 января
	jokers.On("HasJoker", mock.Anything, mock.Anything, 7, date(2025, 1, 10)).Return(true, nil)
	jokers.On("HasJoker", mock.Anything, mock.Anything, 7, mock.Anything).Return(false, nil)
	jokers.On("CanJokerBeUsed", mock.Anything, mock.Anything, 7, mock.Anything).Return(true, nil)
	jokers.On("CanJokerBeUsedRelativeToDateLimit", mock.Anything).Return(true)

	svc := New(subs, resolver, jokers, lookup.Factory(store, fakeParams{}), newNoopLogger())

	got, err := svc.ListDeliveries(ctx, 7, date(2025, 1, 6), date(2025, 1, 19))
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, date(2025, 1, 10), first.DeliveryDate)
	assert.Equal(t, location, first.PickupLocation)
	assert.Len(t, first.PickupLocationOpeningTimes, 1)
	assert.True(t, first.JokerUsed)
	assert.False(t, first.CanJokerBeUsed)
	require.Len(t, first.Subscriptions, 1)
	assert.Equal(t, unaffected.ID, first.Subscriptions[0].ID)

	second := got[1]
	assert.Equal(t, date(2025, 1, 17), second.DeliveryDate)
	assert.False(t, second.JokerUsed)
	assert.True(t, second.CanJokerBeUsed)
	assert.True(t, second.IsDeliveryCancelledThisWeek)
	assert.Len(t, second.Subscriptions, 2)

	jokers.AssertNotCalled(t, "CanJokerBeUsed", mock.Anything, mock.Anything, 7, date(2025, 1, 10))
}

func TestService_Deliveries_Restartable(t *testing.T) {
	ctx := context.Background()
	subs := new(SubsMock)
	subs.On("ListMemberSubscriptions", mock.Anything, 7, mock.Anything, mock.Anything).
		Return([]models.Subscription{weeklySub(1, true)}, nil)

	resolver := deliverycycle.NewResolver(time.Wednesday, time.Time{}, 6)
	engine := joker.NewEngine(fakeJokerRepo{}, resolver, newNoopLogger())
	svc := New(subs, resolver, engine, lookup.Factory(&fakeStore{}, fakeParams{}), newNoopLogger())

	seq := svc.Deliveries(ctx, 7, date(2025, 1, 1), date(2025, 1, 31))

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 5, count())
	assert.Equal(t, 5, count())

	// ранний выход из обхода
	for d, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, date(2025, 1, 1), d.DeliveryDate)
		break
	}
	subs.AssertNumberOfCalls(t, "ListMemberSubscriptions", 3)
}

func TestService_ListDeliveries_RepositoryError(t *testing.T) {
	subs := new(SubsMock)
	subs.On("ListMemberSubscriptions", mock.Anything, 7, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	resolver := deliverycycle.NewResolver(time.Wednesday, time.Time{}, 6)
	svc := New(subs, resolver, new(JokersMock), lookup.Factory(&fakeStore{}, fakeParams{}), newNoopLogger())

	got, err := svc.ListDeliveries(context.Background(), 7, date(2025, 1, 1), date(2025, 1, 31))
	assert.Error(t, err)
	assert.Nil(t, got)
}
