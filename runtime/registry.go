package runtime

import (
	"sync"

	"group-chat/contract"

	"github.com/samber/lo"
)

type connSet map[contract.Conn]struct{}

// Registry maps a user id to the set of that user's live connections.
// Lifecycle is process-lifetime: registrations only exist in memory and are
// rebuilt by clients reconnecting after a restart.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]connSet
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]connSet)}
}

// Register adds the connection to the user's set. Registering the same
// connection twice is a no-op.
func (r *Registry) Register(userID int64, conn contract.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[userID]; !ok {
		r.conns[userID] = make(connSet)
	}
	r.conns[userID][conn] = struct{}{}
}

// Unregister removes the connection. The user's entry is dropped once its
// last connection is gone so the table doesn't grow with churn.
func (r *Registry) Unregister(userID int64, conn contract.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, conn)

	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// SendToUser delivers the payload to every live connection of the user,
// independently. A connection that fails to accept the payload is dead: it
// is unregistered here and never reported to the caller, so one stale peer
// cannot affect delivery to the others.
func (r *Registry) SendToUser(userID int64, payload any) {
	r.mu.RLock()
	conns := make([]contract.Conn, 0, len(r.conns[userID]))
	for conn := range r.conns[userID] {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	var dead []contract.Conn
	for _, conn := range conns {
		if err := conn.Send(payload); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		r.Unregister(userID, conn)
		_ = conn.Close()
	}
}

// Broadcast fans the payload out to the deduplicated union of the given
// users. Order across users is unspecified and there is no atomicity: this
// is fan-out, not a transaction.
func (r *Registry) Broadcast(userIDs []int64, payload any) {
	for _, userID := range lo.Uniq(userIDs) {
		r.SendToUser(userID, payload)
	}
}

// Online reports how many users currently have at least one live
// connection.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// ConnectionCount reports the number of live connections of a user.
func (r *Registry) ConnectionCount(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}
