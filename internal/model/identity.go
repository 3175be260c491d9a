package model

import "time"

// IdentityID uniquely identifies a player across the system.
// It is derived deterministically from the player's account identifier,
// so the same account always maps to the same id.
type IdentityID string

// ConnectionID is an opaque handle for one live connection (socket, stream).
// The registry never inspects its contents.
type ConnectionID string

// PlayerIdentity is the canonical record for one account
type PlayerIdentity struct {
	ID          IdentityID
	AccountID   string // normalized email the id was derived from
	DisplayName string
	GivenName   string
	FamilyName  string

	RegisteredAt time.Time
	LastSeenAt   time.Time

	// Connections holds the set of live connection handles.
	// Empty map and nil map both mean offline.
	Connections map[ConnectionID]struct{}
}

// IsOnline reports whether the identity has at least one live connection
func (p *PlayerIdentity) IsOnline() bool {
	return len(p.Connections) > 0
}

// ConnectionCount returns the number of live connections
func (p *PlayerIdentity) ConnectionCount() int {
	return len(p.Connections)
}

// AddConnection records a live connection handle
func (p *PlayerIdentity) AddConnection(id ConnectionID) {
	if p.Connections == nil {
		p.Connections = make(map[ConnectionID]struct{})
	}
	p.Connections[id] = struct{}{}
}

// RemoveConnection forgets a connection handle. Removing an unknown
// handle is a no-op.
func (p *PlayerIdentity) RemoveConnection(id ConnectionID) {
	delete(p.Connections, id)
}
