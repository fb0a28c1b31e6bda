// Package notification публикует события для рассылки писем участникам.
//
// Ядро ничего не отправляет само: обработчики и планировщик вызывают Notifier
// после успешного изменения данных.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/csa-backend/internal/lib/metrics"
	"github.com/magabrotheeeer/csa-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// MemberRepository возвращает получателей уведомлений.
type MemberRepository interface {
	GetMember(ctx context.Context, id int) (*models.Member, error)
	GetMemberByMandate(ctx context.Context, mandateRef string) (*models.Member, error)
}

// Notifier публикует уведомления в обменник RabbitMQ.
type Notifier struct {
	ch      rabbitmq.Channel
	members MemberRepository
	log     *slog.Logger
}

// New создаёт новый экземпляр Notifier.
func New(ch rabbitmq.Channel, members MemberRepository, log *slog.Logger) *Notifier {
	return &Notifier{
		ch:      ch,
		members: members,
		log:     log,
	}
}

// JokerUsed сообщает участнику о взятом джокере.
func (n *Notifier) JokerUsed(ctx context.Context, joker models.Joker) error {
	return n.publishJoker(ctx, rabbitmq.RoutingJokerUsed, joker)
}

// JokerCancelled сообщает участнику об отменённом джокере.
func (n *Notifier) JokerCancelled(ctx context.Context, joker models.Joker) error {
	return n.publishJoker(ctx, rabbitmq.RoutingJokerCancelled, joker)
}

func (n *Notifier) publishJoker(ctx context.Context, routingKey string, joker models.Joker) error {
	const op = "notification.publishJoker"
	member, err := n.members.GetMember(ctx, joker.MemberID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := models.JokerNotification{
		Email:     member.Email,
		FirstName: member.FirstName,
		MemberID:  member.ID,
		Date:      joker.Date,
	}
	if err := rabbitmq.PublishMessage(n.ch, rabbitmq.NotificationsExchange, routingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.NotificationsPublished.WithLabelValues(routingKey).Inc()
	return nil
}

// PaymentsCreated сообщает участникам о новых платежах.
// Ошибка по одному платежу не мешает остальным, возвращается количество опубликованных.
func (n *Notifier) PaymentsCreated(ctx context.Context, payments []models.Payment) int {
	published := 0
	for _, p := range payments {
		member, err := n.members.GetMemberByMandate(ctx, p.MandateRef)
		if err != nil {
			n.log.Error("failed to find member for payment", slog.String("mandate_ref", p.MandateRef), sl.Err(err))
			continue
		}
		msg := models.PaymentNotification{
			Email:      member.Email,
			FirstName:  member.FirstName,
			MandateRef: p.MandateRef,
			Type:       p.Type,
			Amount:     p.Amount,
			DueDate:    p.DueDate,
			RangeStart: p.RangeStart,
			RangeEnd:   p.RangeEnd,
		}
		if err := rabbitmq.PublishMessage(n.ch, rabbitmq.NotificationsExchange, rabbitmq.RoutingPaymentsCreated, msg); err != nil {
			n.log.Error("failed to publish message", slog.String("mandate_ref", p.MandateRef), sl.Err(err))
			continue
		}
		published++
	}
	metrics.NotificationsPublished.WithLabelValues(rabbitmq.RoutingPaymentsCreated).Add(float64(published))
	return published
}
