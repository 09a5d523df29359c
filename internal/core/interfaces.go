package core

// SessionID identifies one transport-level connection for its lifetime.
type SessionID string

// Sender is the one primitive the core needs from the transport: push a
// text frame to a single connection without blocking.
type Sender interface {
	TrySend(data []byte) error
}
