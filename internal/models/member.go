package models

import "time"

// Member участник кооператива.
type Member struct {
	ID            int           `json:"id"`
	Email         string        `json:"email"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	PaymentRhythm PaymentRhythm `json:"payment_rhythm"`
}

// PickupLocation пункт выдачи.
type PickupLocation struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PickupLocationOpeningTime часы работы пункта выдачи.
// DayOfWeek считается от 0 (понедельник) до 6 (воскресенье).
type PickupLocationOpeningTime struct {
	PickupLocationID int    `json:"pickup_location_id"`
	DayOfWeek        int    `json:"day_of_week"`
	OpenTime         string `json:"open_time"`
	CloseTime        string `json:"close_time"`
}

// PickupLocationAssignment выбор пункта выдачи участником, действующий с ValidFrom.
type PickupLocationAssignment struct {
	MemberID         int       `json:"member_id"`
	PickupLocationID int       `json:"pickup_location_id"`
	ValidFrom        time.Time `json:"valid_from"`
}
