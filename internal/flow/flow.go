// Package flow orchestrates registration, login and logout over the
// record store. Flows validate, persist and establish the session; where
// the user lands afterwards is the transport layer's concern.
package flow

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rosterdev/roster-store/internal/store"
	"github.com/rosterdev/roster-store/internal/validate"
	"github.com/rosterdev/roster-store/pkg/schema"
)

var (
	// ErrNoAccount means no credential entry exists for the email.
	ErrNoAccount = errors.New("no account registered for this email")
	// ErrWrongPassword means the entry exists but the password differs.
	// Comparison is exact and case-sensitive.
	ErrWrongPassword = errors.New("wrong password")
)

// Service holds the flows' dependencies.
type Service struct {
	roster *store.Roster
	log    *slog.Logger
	now    func() time.Time
}

// New builds a flow service. A nil logger falls back to slog's default.
func New(roster *store.Roster, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{roster: roster, log: log, now: time.Now}
}

// Register validates a submission against the schema that built the form
// and, on success, appends the record, writes the credential entry and
// establishes the session. Any validation failure aborts with the combined
// error list and persists nothing.
func (s *Service) Register(sc schema.FormSchema, values map[string]schema.FieldValue) (*schema.StudentRecord, error) {
	if err := validate.All(sc, values); err != nil {
		return nil, err
	}

	email := firstValueOfKind(sc, values, schema.KindEmail)
	email = strings.ToLower(strings.TrimSpace(email))
	password := firstValueOfKind(sc, values, schema.KindPassword)

	record := schema.StudentRecord{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
		Fields:    make(map[string]schema.FieldValue, len(values)),
	}
	for _, f := range sc.Fields {
		// The credential index is the only place a password lives;
		// the roster record never carries it.
		if f.Kind == schema.KindPassword {
			continue
		}
		if v, ok := values[f.ID]; ok {
			record.Fields[f.ID] = v
		}
	}

	records := append(s.roster.ListStudents(), record)
	if err := s.roster.SaveStudents(records); err != nil {
		return nil, err
	}

	if email != "" {
		if err := s.roster.SetCredential(email, password); err != nil {
			return nil, err
		}
		if err := s.roster.SetSession(email); err != nil {
			return nil, err
		}
	}

	s.log.Info("student registered", "id", record.ID, "email", email)
	return &record, nil
}

// Login looks up the credential entry for the email and establishes the
// session on an exact password match.
func (s *Service) Login(email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	entry, err := s.roster.GetCredential(email)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrNoAccount
	}
	if entry.Password != password {
		return ErrWrongPassword
	}

	if err := s.roster.SetSession(email); err != nil {
		return err
	}
	s.log.Info("login", "email", email)
	return nil
}

// Logout clears the current session. Logging out with no session is a no-op.
func (s *Service) Logout() error {
	return s.roster.ClearSession()
}

func firstValueOfKind(sc schema.FormSchema, values map[string]schema.FieldValue, k schema.FieldKind) string {
	if f, ok := sc.FieldByKind(k); ok {
		return values[f.ID].String()
	}
	return ""
}
