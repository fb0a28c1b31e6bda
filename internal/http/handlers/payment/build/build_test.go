package build

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/csa-backend/internal/models"
)

type MockBuilder struct {
	mock.Mock
}

func (m *MockBuilder) BuildPaymentsForMonth(ctx context.Context, reference time.Time) ([]models.Payment, error) {
	args := m.Called(ctx, reference)
	if res := args.Get(0); res != nil {
		return res.([]models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) CreatePayments(ctx context.Context, reference time.Time) ([]models.Payment, error) {
	args := m.Called(ctx, reference)
	if res := args.Get(0); res != nil {
		return res.([]models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestBuildHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	march := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	payment := models.Payment{MandateRef: "M-1", Amount: decimal.RequireFromString("120"), Type: "Vegetables"}

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockBuilder, *MockCreator)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "пробный расчёт",
			body: `{"month":"03-2025"}`,
			setupMocks: func(b *MockBuilder, _ *MockCreator) {
				b.On("BuildPaymentsForMonth", mock.Anything, march).Return([]models.Payment{payment}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"saved":false`,
		},
		{
			name: "расчёт с сохранением",
			body: `{"month":"03-2025","save":true}`,
			setupMocks: func(_ *MockBuilder, c *MockCreator) {
				c.On("CreatePayments", mock.Anything, march).Return([]models.Payment{payment}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"mandate_ref":"M-1"`,
		},
		{
			name:           "неверный формат месяца",
			body:           `{"month":"2025-03"}`,
			setupMocks:     func(*MockBuilder, *MockCreator) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Month must be a date in format 01-2006",
		},
		{
			name:           "некорректный json",
			body:           `month`,
			setupMocks:     func(*MockBuilder, *MockCreator) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "ошибка расчёта",
			body: `{"month":"03-2025"}`,
			setupMocks: func(b *MockBuilder, _ *MockCreator) {
				b.On("BuildPaymentsForMonth", mock.Anything, march).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not build payments"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, creator := new(MockBuilder), new(MockCreator)
			tt.setupMocks(builder, creator)

			req := httptest.NewRequest(http.MethodPost, "/admin/payments/build", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			New(logger, builder, creator).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			builder.AssertExpectations(t)
			creator.AssertExpectations(t)
		})
	}
}
