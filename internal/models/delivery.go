package models

import "time"

// Delivery прогноз одной выдачи участнику.
type Delivery struct {
	DeliveryDate                      time.Time                   `json:"delivery_date"`
	PickupLocation                    *PickupLocation             `json:"pickup_location"`
	PickupLocationOpeningTimes        []PickupLocationOpeningTime `json:"pickup_location_opening_times"`
	Subscriptions                     []Subscription              `json:"subscriptions"`
	JokerUsed                         bool                        `json:"joker_used"`
	CanJokerBeUsed                    bool                        `json:"can_joker_be_used"`
	CanJokerBeUsedRelativeToDateLimit bool                        `json:"can_joker_be_used_relative_to_date_limit"`
	IsDeliveryCancelledThisWeek       bool                        `json:"is_delivery_cancelled_this_week"`
}

// DummyDateRange параметры запроса с диапазоном дат до валидации. Даты в формате YYYY-MM-DD.
type DummyDateRange struct {
	DateFrom string `validate:"required,datetime=2006-01-02"`
	DateTo   string `validate:"required,datetime=2006-01-02"`
}

// DummyJoker тело запроса на использование джокера.
type DummyJoker struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"` // Дата выдачи в формате YYYY-MM-DD
}

// DummyParameter тело запроса на изменение параметра.
type DummyParameter struct {
	Value string `json:"value"`
}

// DummyBuildPayments тело запроса на генерацию платежей за месяц.
type DummyBuildPayments struct {
	Month string `json:"month" validate:"required,datetime=01-2006"` // Месяц в формате 01-2006
	Save  bool   `json:"save"`
}
