package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// MemberRepository возвращает участника по ID.
type MemberRepository interface {
	GetMember(ctx context.Context, id int) (*models.Member, error)
}

// MemberRhythms определяет ритм оплаты по настройке участника.
// Участник без настройки платит ежемесячно.
type MemberRhythms struct {
	members MemberRepository
}

// NewMemberRhythms создаёт MemberRhythms.
func NewMemberRhythms(members MemberRepository) *MemberRhythms {
	return &MemberRhythms{members: members}
}

// RhythmFor возвращает ритм оплаты участника на дату date.
func (r *MemberRhythms) RhythmFor(ctx context.Context, memberID int, _ time.Time) (models.PaymentRhythm, error) {
	const op = "payment.RhythmFor"
	member, err := r.members.GetMember(ctx, memberID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if member.PaymentRhythm == "" {
		return models.RhythmMonthly, nil
	}
	return member.PaymentRhythm, nil
}
