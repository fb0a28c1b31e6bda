package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/csa-backend/internal/migrations"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateMember создает участника с уникальным email
func (f *TestDataFactory) CreateMember(t *testing.T, rhythm string) int {
	t.Helper()
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO members (email, first_name, last_name, payment_rhythm)
		VALUES ($1, 'Anna', 'Gärtner', $2) RETURNING id`,
		uuid.NewString()+"@example.com", rhythm).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateGrowingPeriod создает сезон
func (f *TestDataFactory) CreateGrowingPeriod(t *testing.T, start, end time.Time, weeksWithoutDelivery []int, maxJokers int) int {
	t.Helper()
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO growing_periods
		(start_date, end_date, weeks_without_delivery, max_jokers_per_member)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		start, end, weeksWithoutDelivery, maxJokers).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateProduct создает тип продукта, продукт и его цену
func (f *TestDataFactory) CreateProduct(t *testing.T, typeName, cycle string, price string, validFrom time.Time) int {
	t.Helper()
	var typeID, productID int
	err := f.storage.DB.QueryRow(`INSERT INTO product_types (name, delivery_cycle, is_affected_by_jokers)
		VALUES ($1, $2, true) RETURNING id`, typeName, cycle).Scan(&typeID)
	require.NoError(t, err)
	err = f.storage.DB.QueryRow(`INSERT INTO products (name, type_id) VALUES ($1, $2) RETURNING id`,
		typeName+" share", typeID).Scan(&productID)
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`INSERT INTO product_prices (product_id, valid_from, price) VALUES ($1, $2, $3)`,
		productID, validFrom, price)
	require.NoError(t, err)
	return productID
}

// CreateSubscription создает подписку и возвращает ее ID и мандат
func (f *TestDataFactory) CreateSubscription(t *testing.T, memberID, productID, periodID int, start, end time.Time) (int, string) {
	t.Helper()
	mandate := "M-" + uuid.NewString()[:8]
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions
		(member_id, product_id, growing_period_id, quantity, start_date, end_date, mandate_ref, solidarity_price_percentage)
		VALUES ($1, $2, $3, 1, $4, $5, $6, 0.05) RETURNING id`,
		memberID, productID, periodID, start, end, mandate).Scan(&id)
	require.NoError(t, err)
	return id, mandate
}

// CreatePickupLocation создает пункт выдачи с часами работы и назначает его участнику
func (f *TestDataFactory) CreatePickupLocation(t *testing.T, memberID int, validFrom time.Time, dayOfWeek int) int {
	t.Helper()
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO pickup_locations (name) VALUES ('Hofladen') RETURNING id`).Scan(&id)
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`INSERT INTO pickup_location_opening_times
		(pickup_location_id, day_of_week, open_time, close_time) VALUES ($1, $2, '16:00', '19:30')`, id, dayOfWeek)
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`INSERT INTO pickup_location_assignments
		(member_id, pickup_location_id, valid_from) VALUES ($1, $2, $3)`, memberID, id, validFrom)
	require.NoError(t, err)
	return id
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(storage))

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.Close()
		}
		_ = pgContainer.Terminate(ctx)
	}

	return storage, cleanup
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
