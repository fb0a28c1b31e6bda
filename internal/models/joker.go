package models

import "time"

// Joker отказ участника от одной недельной выдачи.
type Joker struct {
	ID       int       `json:"id"`
	MemberID int       `json:"member_id"`
	Date     time.Time `json:"date"`
}
