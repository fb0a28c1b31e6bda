package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/csa-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

type MembersMock struct{ mock.Mock }

func (m *MembersMock) GetMember(ctx context.Context, id int) (*models.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MembersMock) GetMemberByMandate(ctx context.Context, mandateRef string) (*models.Member, error) {
	args := m.Called(ctx, mandateRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

type ChannelMock struct{ mock.Mock }

func (m *ChannelMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var member = &models.Member{ID: 7, Email: "anna@example.com", FirstName: "Anna"}

func TestNotifier_JokerUsed(t *testing.T) {
	ch := new(ChannelMock)
	members := new(MembersMock)
	members.On("GetMember", mock.Anything, 7).Return(member, nil)

	jokerDate := time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC)
	ch.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingJokerUsed, false, false,
		mock.MatchedBy(func(p amqp.Publishing) bool {
			var msg models.JokerNotification
			return json.Unmarshal(p.Body, &msg) == nil && msg.Email == member.Email && msg.Date.Equal(jokerDate)
		})).Return(nil).Once()

	err := New(ch, members, newNoopLogger()).JokerUsed(context.Background(), models.Joker{ID: 1, MemberID: 7, Date: jokerDate})
	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestNotifier_JokerCancelled_UnknownMember(t *testing.T) {
	ch := new(ChannelMock)
	members := new(MembersMock)
	members.On("GetMember", mock.Anything, 9).Return(nil, storage.ErrNotFound)

	err := New(ch, members, newNoopLogger()).JokerCancelled(context.Background(), models.Joker{MemberID: 9})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifier_PaymentsCreated(t *testing.T) {
	ch := new(ChannelMock)
	members := new(MembersMock)
	members.On("GetMemberByMandate", mock.Anything, "M-7").Return(member, nil)
	members.On("GetMemberByMandate", mock.Anything, "M-8").Return(nil, storage.ErrNotFound)
	members.On("GetMemberByMandate", mock.Anything, "M-9").Return(member, nil)

	ch.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingPaymentsCreated, false, false,
		mock.MatchedBy(func(p amqp.Publishing) bool {
			var msg models.PaymentNotification
			return json.Unmarshal(p.Body, &msg) == nil && msg.MandateRef == "M-7"
		})).Return(nil).Once()
	ch.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingPaymentsCreated, false, false, mock.Anything).
		Return(errors.New("channel closed")).Once()

	payments := []models.Payment{
		{MandateRef: "M-7", Type: "vegetables", Amount: decimal.NewFromInt(52)},
		{MandateRef: "M-8", Type: "vegetables", Amount: decimal.NewFromInt(52)},
		{MandateRef: "M-9", Type: "bread", Amount: decimal.NewFromInt(20)},
	}

	published := New(ch, members, newNoopLogger()).PaymentsCreated(context.Background(), payments)
	assert.Equal(t, 1, published)
	ch.AssertExpectations(t)
}
