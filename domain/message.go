package domain

import "time"

// Message represents an immutable chat entry. The ID is assigned by the
// storage layer at commit and is strictly increasing: it is the only
// authoritative order between messages of a group.
type Message struct {
	ID        int64
	GroupID   GroupID
	UserID    int64
	Text      string
	CreatedAt time.Time
}
