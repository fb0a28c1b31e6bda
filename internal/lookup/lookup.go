// Package lookup предоставляет Memo, кеш справочных данных на время одного вызова.
//
// Memo создаётся на каждый запрос верхнего уровня (HTTP-запрос, запуск генерации платежей)
// и передаётся по указателю через весь граф вызовов, чтобы сезоны, параметры,
// пункты выдачи и часы работы не перечитывались из хранилища повторно.
// Memo не потокобезопасен и не должен переживать вызов, для которого создан.
package lookup

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// Store описывает источник справочных данных.
type Store interface {
	ListGrowingPeriods(ctx context.Context) ([]models.GrowingPeriod, error)
	GetPickupLocation(ctx context.Context, id int) (*models.PickupLocation, error)
	ListOpeningTimes(ctx context.Context, pickupLocationID int) ([]models.PickupLocationOpeningTime, error)
	ListPickupLocationAssignments(ctx context.Context, memberID int) ([]models.PickupLocationAssignment, error)
	ListNoticePeriods(ctx context.Context) ([]models.NoticePeriod, error)
}

// Parameters возвращает значение параметра или его значение по умолчанию.
type Parameters interface {
	Get(ctx context.Context, key string) (string, error)
}

// Memo кеш справочных данных одного вызова.
type Memo struct {
	store  Store
	params Parameters

	periods       []models.GrowingPeriod
	periodsLoaded bool
	notices       []models.NoticePeriod
	noticesLoaded bool
	locations     map[int]*models.PickupLocation
	openingTimes  map[int][]models.PickupLocationOpeningTime
	assignments   map[int][]models.PickupLocationAssignment
	values        map[string]string
}

// New создаёт пустой Memo.
func New(store Store, params Parameters) *Memo {
	return &Memo{
		store:        store,
		params:       params,
		locations:    make(map[int]*models.PickupLocation),
		openingTimes: make(map[int][]models.PickupLocationOpeningTime),
		assignments:  make(map[int][]models.PickupLocationAssignment),
		values:       make(map[string]string),
	}
}

// Factory возвращает функцию, создающую новый Memo для каждого вызова.
func Factory(store Store, params Parameters) func() *Memo {
	return func() *Memo {
		return New(store, params)
	}
}

// GrowingPeriodAt возвращает сезон, содержащий дату, или nil.
func (m *Memo) GrowingPeriodAt(ctx context.Context, date time.Time) (*models.GrowingPeriod, error) {
	const op = "lookup.GrowingPeriodAt"
	if !m.periodsLoaded {
		periods, err := m.store.ListGrowingPeriods(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m.periods = periods
		m.periodsLoaded = true
	}
	for i := range m.periods {
		if m.periods[i].Contains(date) {
			return &m.periods[i], nil
		}
	}
	return nil, nil
}

// NoticePeriods возвращает все сроки уведомления об отмене.
func (m *Memo) NoticePeriods(ctx context.Context) ([]models.NoticePeriod, error) {
	const op = "lookup.NoticePeriods"
	if !m.noticesLoaded {
		notices, err := m.store.ListNoticePeriods(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m.notices = notices
		m.noticesLoaded = true
	}
	return m.notices, nil
}

// PickupLocation возвращает пункт выдачи по ID.
func (m *Memo) PickupLocation(ctx context.Context, id int) (*models.PickupLocation, error) {
	const op = "lookup.PickupLocation"
	if loc, ok := m.locations[id]; ok {
		return loc, nil
	}
	loc, err := m.store.GetPickupLocation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.locations[id] = loc
	return loc, nil
}

// OpeningTimes возвращает часы работы пункта выдачи в порядке хранения.
func (m *Memo) OpeningTimes(ctx context.Context, pickupLocationID int) ([]models.PickupLocationOpeningTime, error) {
	const op = "lookup.OpeningTimes"
	if times, ok := m.openingTimes[pickupLocationID]; ok {
		return times, nil
	}
	times, err := m.store.ListOpeningTimes(ctx, pickupLocationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.openingTimes[pickupLocationID] = times
	return times, nil
}

// PickupLocationAt возвращает пункт выдачи участника, действующий на дату.
//
// Берётся последнее назначение с ValidFrom <= date. Если у участника ровно одно
// назначение, оно действует независимо от ValidFrom. Без назначений возвращается nil.
func (m *Memo) PickupLocationAt(ctx context.Context, memberID int, date time.Time) (*models.PickupLocation, error) {
	const op = "lookup.PickupLocationAt"
	assignments, ok := m.assignments[memberID]
	if !ok {
		var err error
		assignments, err = m.store.ListPickupLocationAssignments(ctx, memberID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sort.SliceStable(assignments, func(i, j int) bool {
			return assignments[i].ValidFrom.After(assignments[j].ValidFrom)
		})
		m.assignments[memberID] = assignments
	}

	switch len(assignments) {
	case 0:
		return nil, nil
	case 1:
		return m.PickupLocation(ctx, assignments[0].PickupLocationID)
	}
	for _, a := range assignments {
		if !a.ValidFrom.After(date) {
			return m.PickupLocation(ctx, a.PickupLocationID)
		}
	}
	return nil, nil
}

// Param возвращает строковое значение параметра.
func (m *Memo) Param(ctx context.Context, key string) (string, error) {
	const op = "lookup.Param"
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	v, err := m.params.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	m.values[key] = v
	return v, nil
}

// IntParam возвращает целочисленное значение параметра.
func (m *Memo) IntParam(ctx context.Context, key string) (int, error) {
	const op = "lookup.IntParam"
	v, err := m.Param(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: parameter %s: %w", op, key, err)
	}
	return n, nil
}

// BoolParam возвращает логическое значение параметра.
// Пустое значение считается false.
func (m *Memo) BoolParam(ctx context.Context, key string) (bool, error) {
	const op = "lookup.BoolParam"
	v, err := m.Param(ctx, key)
	if err != nil {
		return false, err
	}
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: parameter %s: %w", op, key, err)
	}
	return b, nil
}
