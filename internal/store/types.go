// Package store provides persistent access to the agent profile and login
// event collections. Records are loaded in bulk at startup and treated as
// immutable for the lifetime of the process.
package store

import (
	"context"
	"time"
)

// Agent is a travel-agent profile record.
//
// AgentID is the primary identifier; Email doubles as an alternate
// identifier (login events may reference either form). Both are compared
// case-insensitively.
type Agent struct {
	AgentID     string     `json:"agent_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Company     string     `json:"company"`
	Nationality string     `json:"nationality"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// LoginEvent is a timestamped record of an agent's access. AgentRef may hold
// either the agent's primary identifier or its email; it may also reference
// no existing profile at all (an orphan login).
type LoginEvent struct {
	ID       int64     `json:"id"`
	AgentRef string    `json:"agent_ref"`
	LoginAt  time.Time `json:"login_at"`
}

// Stats holds aggregate counts computed directly from the record store,
// bypassing the in-memory index.
type Stats struct {
	TotalAgents   int `json:"totalAgents"`
	Companies     int `json:"companies"`
	Nationalities int `json:"nationalities"`
}

// RecordStore supplies the full working set of agents and login events.
type RecordStore interface {
	// AllAgents returns every agent profile record.
	AllAgents(ctx context.Context) ([]Agent, error)

	// AllLogins returns every login event.
	AllLogins(ctx context.Context) ([]LoginEvent, error)

	// InsertAgent upserts a single agent record.
	InsertAgent(ctx context.Context, a Agent) error

	// InsertLogin upserts a single login event.
	InsertLogin(ctx context.Context, l LoginEvent) error

	// Stats returns aggregate counts over the stored agents.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the underlying database connection.
	Close() error
}
