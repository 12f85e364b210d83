package repositories

import (
	"time"

	"group-chat/domain"
)

// Disk records are decoupled from the domain structs so the stored shape can
// evolve independently. Values are CBOR-encoded.

type userRecord struct {
	ID           int64  `cbor:"id"`
	Username     string `cbor:"username"`
	Email        string `cbor:"email"`
	PasswordHash string `cbor:"password_hash"`
	Status       string `cbor:"status"`
	RegisteredAt int64  `cbor:"registered_at"`
}

type groupRecord struct {
	ID        int64  `cbor:"id"`
	OwnerID   int64  `cbor:"owner_id"`
	Name      string `cbor:"name"`
	CreatedAt int64  `cbor:"created_at"`
}

type membershipRecord struct {
	GroupID  int64 `cbor:"group_id"`
	UserID   int64 `cbor:"user_id"`
	JoinedAt int64 `cbor:"joined_at"`
}

type messageRecord struct {
	ID        int64  `cbor:"id"`
	GroupID   int64  `cbor:"group_id"`
	UserID    int64  `cbor:"user_id"`
	Text      string `cbor:"text"`
	CreatedAt int64  `cbor:"created_at"`
}

func fromUser(u domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Status:       string(u.Status),
		RegisteredAt: u.RegisteredAt.UnixNano(),
	}
}

func toUser(r userRecord) domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Status:       domain.UserStatus(r.Status),
		RegisteredAt: time.Unix(0, r.RegisteredAt).UTC(),
	}
}

func fromGroup(g domain.Group) groupRecord {
	return groupRecord{
		ID:        int64(g.ID),
		OwnerID:   g.OwnerID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt.UnixNano(),
	}
}

func toGroup(r groupRecord) domain.Group {
	return domain.Group{
		ID:        domain.GroupID(r.ID),
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
}

func fromMessage(m domain.Message) messageRecord {
	return messageRecord{
		ID:        m.ID,
		GroupID:   int64(m.GroupID),
		UserID:    m.UserID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UnixNano(),
	}
}

func toMessage(r messageRecord) domain.Message {
	return domain.Message{
		ID:        r.ID,
		GroupID:   domain.GroupID(r.GroupID),
		UserID:    r.UserID,
		Text:      r.Text,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
}
