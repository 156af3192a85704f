package schema

import (
	"encoding/json"
	"time"
)

// FieldValue holds a submitted value for one field: either a single string
// or an ordered list of strings (multiselect, tags). On the wire it is a
// plain JSON string or a JSON array of strings.
type FieldValue struct {
	One  string
	Many []string
}

// Value builds a single-valued FieldValue.
func Value(s string) FieldValue { return FieldValue{One: s} }

// Values builds a multi-valued FieldValue.
func Values(list ...string) FieldValue { return FieldValue{Many: list} }

// IsMulti reports whether the value is the list form.
func (v FieldValue) IsMulti() bool { return v.Many != nil }

// Empty reports whether no value was submitted.
func (v FieldValue) Empty() bool {
	if v.IsMulti() {
		return len(v.Many) == 0
	}
	return v.One == ""
}

// Strings returns the value as a list regardless of form.
func (v FieldValue) Strings() []string {
	if v.IsMulti() {
		return v.Many
	}
	if v.One == "" {
		return nil
	}
	return []string{v.One}
}

// String returns the single value, or the first list element.
func (v FieldValue) String() string {
	if v.IsMulti() {
		if len(v.Many) == 0 {
			return ""
		}
		return v.Many[0]
	}
	return v.One
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.IsMulti() {
		return json.Marshal(v.Many)
	}
	return json.Marshal(v.One)
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*v = FieldValue{One: one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*v = FieldValue{Many: many}
	return nil
}

// StudentRecord is one persisted registration submission. Records are
// append-only: created by the registration flow, removed by deletion,
// never updated in place.
type StudentRecord struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Fields    map[string]FieldValue `json:"fields"`
}

// Field returns the submitted value for a field id, or "" when absent.
func (r StudentRecord) Field(id string) string {
	return r.Fields[id].String()
}

// CredentialEntry is the login credential written alongside a record at
// registration, keyed by email. Looked up, never removed, at login.
type CredentialEntry struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
