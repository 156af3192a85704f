package sdk

import (
	"errors"

	"github.com/rosterdev/roster-store/internal/dashboard"
	"github.com/rosterdev/roster-store/pkg/schema"
)

// ErrNoSession is returned when no login session is active.
var ErrNoSession = errors.New("no active session")

// --- Functional Interfaces (Interface Segregation) ---

// RosterReader defines the read operations over the student roster.
type RosterReader interface {
	ListStudents() ([]schema.StudentRecord, error)
	Summary() (dashboard.Summary, error)
}

// RosterAdmin defines the maintenance operations an operator performs.
type RosterAdmin interface {
	DeleteStudent(index int) error
	Credential(email string) (*schema.CredentialEntry, error)
	Session() (string, error)
	ClearSession() error
}

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	Ping() error
}

// --- Composite Interface ---

// RosterStore is the primary interface for interacting with the roster,
// whether it lives behind a daemon or in-process.
type RosterStore interface {
	RosterReader
	RosterAdmin
	HealthChecker

	Close() error
}
