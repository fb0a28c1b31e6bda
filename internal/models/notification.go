package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JokerNotification сообщение о взятом или отменённом джокере.
type JokerNotification struct {
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	MemberID  int       `json:"member_id"`
	Date      time.Time `json:"date"`
}

// PaymentNotification сообщение о выставленном платеже.
type PaymentNotification struct {
	Email      string          `json:"email"`
	FirstName  string          `json:"first_name"`
	MandateRef string          `json:"mandate_ref"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	RangeStart time.Time       `json:"payment_range_start"`
	RangeEnd   time.Time       `json:"payment_range_end"`
}
