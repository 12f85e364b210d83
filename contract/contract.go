//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

// Conn is one live, identity-bound connection. A user may own several at
// once (multi-device); each one is registered and delivered to
// independently.
type Conn interface {
	// Send queues a payload for delivery. A non-nil error marks the
	// connection dead; the registry drops it as a side effect.
	Send(payload any) error
	Close() error
}

// IRegistry is the process-wide table of live connections. It is the only
// mutable state shared between connection goroutines.
type IRegistry interface {
	Register(userID int64, conn Conn)
	Unregister(userID int64, conn Conn)
	SendToUser(userID int64, payload any)
	Broadcast(userIDs []int64, payload any)
}
