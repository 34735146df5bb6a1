package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// BirthDate carries a calendar date; the time-of-day part is always midnight UTC.
type User struct {
	ID          int64
	FirstName   string
	LastName    string
	BirthDate   time.Time
	Email       string
	Address     string
	PhoneNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
