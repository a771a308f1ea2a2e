package domain

import "time"

// Account maps an upstream identity (Firebase uid) to the internal user id.
type Account struct {
	APIUserID   string
	FirebaseUID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
