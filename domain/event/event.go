// Package event defines the typed notifications pushed to live connections.
// Every event carries an "event" discriminator and marshals to the exact
// wire shape clients rely on.
package event

import (
	"fmt"
	"time"

	"group-chat/domain"

	"github.com/samber/lo"
)

type Group struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	OwnerID    int64     `json:"owner_id"`
	CreateDate time.Time `json:"create_date"`
}

type Message struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	UserID      int64     `json:"user_id"`
	Text        string    `json:"text"`
	CreatedDate time.Time `json:"created_date"`
}

func FromGroup(g domain.Group) Group {
	return Group{
		ID:         int64(g.ID),
		Name:       g.Name,
		OwnerID:    g.OwnerID,
		CreateDate: g.CreatedAt,
	}
}

func FromMessage(m domain.Message) Message {
	return Message{
		ID:          m.ID,
		GroupID:     int64(m.GroupID),
		UserID:      m.UserID,
		Text:        m.Text,
		CreatedDate: m.CreatedAt,
	}
}

type Connected struct {
	Event    string `json:"event"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func NewConnected(user domain.User) Connected {
	return Connected{Event: "connected", UserID: user.ID, Username: user.Username}
}

type Error struct {
	Event  string `json:"event"`
	Action string `json:"action,omitempty"`
	Detail string `json:"detail"`
}

func NewError(action, detail string) Error {
	return Error{Event: "error", Action: action, Detail: detail}
}

func NewUnknownAction(action string) Error {
	return Error{Event: "error", Detail: fmt.Sprintf("Unknown action: %s", action)}
}

type GroupCreated struct {
	Event string `json:"event"`
	Group Group  `json:"group"`
}

func NewGroupCreated(g domain.Group) GroupCreated {
	return GroupCreated{Event: "group_created", Group: FromGroup(g)}
}

type Groups struct {
	Event string  `json:"event"`
	Items []Group `json:"items"`
}

func NewGroups(groups []domain.Group) Groups {
	items := lo.Map(groups, func(g domain.Group, _ int) Group {
		return FromGroup(g)
	})
	if items == nil {
		items = []Group{}
	}
	return Groups{Event: "groups", Items: items}
}

type GroupRenamed struct {
	Event string `json:"event"`
	Group Group  `json:"group"`
}

func NewGroupRenamed(g domain.Group) GroupRenamed {
	return GroupRenamed{Event: "group_renamed", Group: FromGroup(g)}
}

type MembersAdded struct {
	Event        string  `json:"event"`
	GroupID      int64   `json:"group_id"`
	AddedUserIDs []int64 `json:"added_user_ids"`
}

func NewMembersAdded(groupID domain.GroupID, added []int64) MembersAdded {
	if added == nil {
		added = []int64{}
	}
	return MembersAdded{Event: "members_added", GroupID: int64(groupID), AddedUserIDs: added}
}

type MessagePosted struct {
	Event   string  `json:"event"`
	Message Message `json:"message"`
}

func NewMessagePosted(m domain.Message) MessagePosted {
	return MessagePosted{Event: "message", Message: FromMessage(m)}
}

type Messages struct {
	Event   string    `json:"event"`
	GroupID int64     `json:"group_id"`
	Items   []Message `json:"items"`
}

func NewMessages(groupID domain.GroupID, messages []domain.Message) Messages {
	items := lo.Map(messages, func(m domain.Message, _ int) Message {
		return FromMessage(m)
	})
	if items == nil {
		items = []Message{}
	}
	return Messages{Event: "messages", GroupID: int64(groupID), Items: items}
}
