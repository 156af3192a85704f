// Package store implements the record store: a thin facade over the
// key-value engine managing the student roster, the per-email credential
// index and the single login session. It is the sole owner of its buckets;
// nothing else in the daemon touches the engine directly.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rosterdev/roster-store/internal/engine"
	"github.com/rosterdev/roster-store/internal/vault"
	"github.com/rosterdev/roster-store/pkg/schema"
)

// Bucket and key layout. The roster is one ordered array under a single
// key so a full save is one atomic write, mirroring how the collection is
// always replaced wholesale rather than merged.
const (
	bucketRoster      = "roster"
	keyStudents       = "students"
	bucketCredentials = "credentials"
	bucketSession     = "session"
	keyCurrent        = "current"
)

// ErrIndexOutOfRange is returned when deleting a student index that does
// not exist in the current listing.
var ErrIndexOutOfRange = errors.New("student index out of range")

// Roster is the record store facade.
type Roster struct {
	kv engine.Store
	// masterKey, when set, encrypts credential passwords at rest.
	masterKey []byte
}

// Option configures a Roster.
type Option func(*Roster)

// WithMasterKey enables at-rest encryption of credential passwords.
// A nil key leaves credentials stored as entered.
func WithMasterKey(key []byte) Option {
	return func(r *Roster) { r.masterKey = key }
}

// New builds a Roster over a key-value engine.
func New(kv engine.Store, opts ...Option) *Roster {
	r := &Roster{kv: kv}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ListStudents returns all stored records in insertion order.
// Absent or undecodable storage degrades to an empty list.
func (r *Roster) ListStudents() []schema.StudentRecord {
	val, err := r.kv.Get(bucketRoster, keyStudents)
	if err != nil {
		return []schema.StudentRecord{}
	}
	records, err := decodeAs[[]schema.StudentRecord](val)
	if err != nil || records == nil {
		return []schema.StudentRecord{}
	}
	// The engine hands back its stored slice; copy so callers never
	// alias the array a later save or the persister is reading.
	out := make([]schema.StudentRecord, len(records))
	copy(out, records)
	return out
}

// SaveStudents overwrites the entire collection. There is no partial
// update; callers append or remove on a fresh listing and save the result.
func (r *Roster) SaveStudents(records []schema.StudentRecord) error {
	if records == nil {
		records = []schema.StudentRecord{}
	}
	return r.kv.Set(bucketRoster, keyStudents, records)
}

// DeleteStudent removes the record at index in the current listing and
// persists the remainder in original relative order. Indices shift after
// any mutation; callers must re-fetch before deleting again.
func (r *Roster) DeleteStudent(index int) error {
	records := r.ListStudents()
	if index < 0 || index >= len(records) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(records))
	}
	trimmed := make([]schema.StudentRecord, 0, len(records)-1)
	trimmed = append(trimmed, records[:index]...)
	trimmed = append(trimmed, records[index+1:]...)
	return r.SaveStudents(trimmed)
}

// SetCredential stores the login credential for an email, one entry per
// email, independent of the roster collection.
func (r *Roster) SetCredential(email, password string) error {
	stored := password
	if r.masterKey != nil {
		enc, err := vault.Encrypt(password, r.masterKey)
		if err != nil {
			return fmt.Errorf("encrypt credential: %w", err)
		}
		stored = enc
	}
	entry := schema.CredentialEntry{Email: email, Password: stored}
	return r.kv.Set(bucketCredentials, email, entry)
}

// GetCredential looks up the credential entry for an email.
// Returns (nil, nil) when no entry exists.
func (r *Roster) GetCredential(email string) (*schema.CredentialEntry, error) {
	val, err := r.kv.Get(bucketCredentials, email)
	if err != nil {
		if errors.Is(err, engine.ErrKeyNotFound) || errors.Is(err, engine.ErrBucketNotFound) {
			return nil, nil
		}
		return nil, err
	}
	entry, err := decodeAs[schema.CredentialEntry](val)
	if err != nil {
		// Undecodable entries read as absent, matching the roster's
		// degrade-to-empty behavior.
		return nil, nil
	}
	if r.masterKey != nil {
		plain, err := vault.Decrypt(entry.Password, r.masterKey)
		if err != nil {
			return nil, fmt.Errorf("decrypt credential: %w", err)
		}
		entry.Password = plain
	}
	return &entry, nil
}

// SetSession records the current user. At most one session exists.
func (r *Roster) SetSession(email string) error {
	return r.kv.Set(bucketSession, keyCurrent, email)
}

// GetSession returns the current user's email, or ok=false when no
// session is active.
func (r *Roster) GetSession() (string, bool) {
	val, err := r.kv.Get(bucketSession, keyCurrent)
	if err != nil {
		return "", false
	}
	email, err := decodeAs[string](val)
	if err != nil || email == "" {
		return "", false
	}
	return email, true
}

// ClearSession logs the current user out.
func (r *Roster) ClearSession() error {
	return r.kv.Delete(bucketSession, keyCurrent)
}

// decodeAs converts an engine value into a concrete type. Values read back
// from disk arrive as generic JSON shapes (map[string]any, []any), so a
// marshal round trip normalizes both cases.
func decodeAs[T any](val any) (T, error) {
	if v, ok := val.(T); ok {
		return v, nil
	}
	var target T
	raw, err := json.Marshal(val)
	if err != nil {
		return target, err
	}
	err = json.Unmarshal(raw, &target)
	return target, err
}
