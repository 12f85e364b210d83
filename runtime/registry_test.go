package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	sent   []any
	broken bool
	closed bool
}

func (c *fakeConn) Send(payload any) error {
	if c.broken {
		return errors.New("connection gone")
	}
	c.sent = append(c.sent, payload)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestRegistry_Register_One_User_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := &fakeConn{}

	// Given no user is connected
	req.Zero(registry.Online())

	// When a user registers a connection
	registry.Register(1, conn)

	// Then
	req.Equal(1, registry.Online())
	req.Equal(1, registry.ConnectionCount(1))
}

func TestRegistry_Register_One_User_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	laptop := &fakeConn{}
	phone := &fakeConn{}

	// When the same user registers from two devices
	registry.Register(1, laptop)
	registry.Register(1, phone)

	// Then both connections are tracked under one user
	req.Equal(1, registry.Online())
	req.Equal(2, registry.ConnectionCount(1))
}

func TestRegistry_Register_Same_Connection_Twice(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := &fakeConn{}

	// When a connection registers twice
	registry.Register(1, conn)
	registry.Register(1, conn)

	// Then it is only tracked once
	req.Equal(1, registry.ConnectionCount(1))
}

func TestRegistry_Unregister_Last_Connection_Removes_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := &fakeConn{}
	registry.Register(1, conn)

	// When the user's only connection unregisters
	registry.Unregister(1, conn)

	// Then the user is no longer online
	req.Zero(registry.Online())
	req.Zero(registry.ConnectionCount(1))
}

func TestRegistry_Unregister_Keeps_Remaining_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	laptop := &fakeConn{}
	phone := &fakeConn{}
	registry.Register(1, laptop)
	registry.Register(1, phone)

	// When one device disconnects
	registry.Unregister(1, laptop)

	// Then the other still receives payloads
	req.Equal(1, registry.ConnectionCount(1))
	registry.SendToUser(1, "hello")
	req.Empty(laptop.sent)
	req.Len(phone.sent, 1)
}

func TestRegistry_Unregister_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When an unknown connection unregisters
	registry.Unregister(42, &fakeConn{})

	// Then nothing happens
	req.Zero(registry.Online())
}

func TestRegistry_SendToUser_Delivers_To_All_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	laptop := &fakeConn{}
	phone := &fakeConn{}
	registry.Register(1, laptop)
	registry.Register(1, phone)

	// When a payload is sent to the user
	registry.SendToUser(1, "hello")

	// Then every connection gets its own copy
	req.Equal([]any{"hello"}, laptop.sent)
	req.Equal([]any{"hello"}, phone.sent)
}

func TestRegistry_SendToUser_No_Connections(t *testing.T) {
	registry := NewRegistry()

	// When sending to a user with no live connection, nothing blocks or panics
	registry.SendToUser(7, "hello")
}

func TestRegistry_SendToUser_Drops_Dead_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	dead := &fakeConn{broken: true}
	alive := &fakeConn{}
	registry.Register(1, dead)
	registry.Register(1, alive)

	// When delivery fails on one connection
	registry.SendToUser(1, "hello")

	// Then the dead connection is closed and unregistered, the other is untouched
	req.True(dead.closed)
	req.Equal(1, registry.ConnectionCount(1))
	req.Equal([]any{"hello"}, alive.sent)

	// And later sends only reach the survivor
	registry.SendToUser(1, "again")
	req.Len(alive.sent, 2)
}

func TestRegistry_Broadcast_Deduplicates_Recipients(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := &fakeConn{}
	registry.Register(1, conn)

	// When the same user id appears twice in the recipient list
	registry.Broadcast([]int64{1, 1}, "hello")

	// Then the payload is delivered once
	req.Len(conn.sent, 1)
}

func TestRegistry_Broadcast_Skips_Offline_Users(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	online := &fakeConn{}
	registry.Register(1, online)

	// When broadcasting to a mix of online and offline users
	registry.Broadcast([]int64{1, 2, 3}, "hello")

	// Then only the online one receives it
	req.Equal([]any{"hello"}, online.sent)
}
