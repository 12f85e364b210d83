package domain

import "time"

type GroupID int64

// Group invariant: the owner is an existing user and always holds a
// Membership in its own group.
type Group struct {
	ID        GroupID
	OwnerID   int64
	Name      string
	CreatedAt time.Time
}

// Membership is the join record authorizing a user to read and write a
// group's messages. Unique per (group, user) pair.
type Membership struct {
	GroupID  GroupID
	UserID   int64
	JoinedAt time.Time
}
