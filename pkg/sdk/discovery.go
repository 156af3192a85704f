package sdk

import (
	"os"

	"github.com/rosterdev/roster-store/internal/dashboard"
	"github.com/rosterdev/roster-store/internal/engine"
	"github.com/rosterdev/roster-store/internal/store"
	"github.com/rosterdev/roster-store/pkg/schema"
)

// New initializes the store based on the environment.
// When ROSTER_STORE_ADDR is set, it connects to the remote daemon;
// otherwise it opens the on-disk store in-process.
func New(dataDir string) (RosterStore, error) {
	remoteAddr := os.Getenv("ROSTER_STORE_ADDR")

	if remoteAddr != "" {
		client, err := Connect(remoteAddr)
		if err == nil {
			return client, nil
		}
		// On connection failure fall through to embedded mode
	}

	p, err := engine.NewPersistence(dataDir)
	if err != nil {
		return nil, err
	}

	allData, err := p.LoadAll()
	if err != nil {
		return nil, err
	}

	kv := engine.NewMemStore(allData, p)
	return &embedded{roster: store.New(kv), kv: kv}, nil
}

// embedded serves the RosterStore interface directly from an in-process
// engine, the same one the daemon uses.
type embedded struct {
	roster *store.Roster
	kv     *engine.MemStore
}

func (e *embedded) ListStudents() ([]schema.StudentRecord, error) {
	return e.roster.ListStudents(), nil
}

func (e *embedded) Summary() (dashboard.Summary, error) {
	return dashboard.Summarize(e.roster.ListStudents()), nil
}

func (e *embedded) DeleteStudent(index int) error {
	return e.roster.DeleteStudent(index)
}

func (e *embedded) Credential(email string) (*schema.CredentialEntry, error) {
	return e.roster.GetCredential(email)
}

func (e *embedded) Session() (string, error) {
	email, ok := e.roster.GetSession()
	if !ok {
		return "", ErrNoSession
	}
	return email, nil
}

func (e *embedded) ClearSession() error {
	return e.roster.ClearSession()
}

func (e *embedded) Ping() error {
	return nil
}

// Close waits for pending writes to reach disk.
func (e *embedded) Close() error {
	e.kv.Wait()
	return nil
}
