// Package domain contains core concepts of the group-chat system.
// No transport, storage, or UI logic should be added here.
package domain

import "time"

type UserStatus string

const (
	StatusAdmin  UserStatus = "admin"
	StatusSimple UserStatus = "simple"
)

// User is the persisted profile record. The live session layer only relies
// on ID and Username; the remaining fields belong to the account surface.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Status       UserStatus
	RegisteredAt time.Time
}
