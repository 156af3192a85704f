// Package schema defines the shared data structures of the roster store:
// the registration form schema and the records derived from it.
package schema

import "encoding/json"

// FieldKind is the closed set of input kinds a form field can have.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindEmail       FieldKind = "email"
	KindPassword    FieldKind = "password"
	KindNumber      FieldKind = "number"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
	KindTags        FieldKind = "tags"
	KindTextarea    FieldKind = "textarea"
	KindDate        FieldKind = "date"
)

// Known reports whether k is one of the enumerated kinds.
func (k FieldKind) Known() bool {
	switch k {
	case KindText, KindEmail, KindPassword, KindNumber,
		KindSelect, KindMultiSelect, KindTags, KindTextarea, KindDate:
		return true
	}
	return false
}

// Choice reports whether the kind carries an options list.
func (k FieldKind) Choice() bool {
	return k == KindSelect || k == KindMultiSelect
}

// Multi reports whether the kind produces a list of values rather than one.
func (k FieldKind) Multi() bool {
	return k == KindMultiSelect || k == KindTags
}

// FieldSpec describes a single form input.
// Pattern, when present, is matched against the whole submitted value.
// Options are meaningful only for choice kinds.
type FieldSpec struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"type"`
	Required bool      `json:"required,omitempty"`
	Pattern  string    `json:"pattern,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// FormSchema is an ordered list of field specs. It is parsed once per form
// and never mutated afterwards.
type FormSchema struct {
	Fields []FieldSpec `json:"fields"`
}

// Parse decodes a JSON configuration blob into a schema.
// Malformed input yields an empty schema, never an error; structurally odd
// field entries are passed through and rejected later at form build.
func Parse(raw []byte) FormSchema {
	var s FormSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return FormSchema{}
	}
	if s.Fields == nil {
		s.Fields = []FieldSpec{}
	}
	return s
}

// FieldByKind returns the first field of the given kind, if any.
func (s FormSchema) FieldByKind(k FieldKind) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Kind == k {
			return f, true
		}
	}
	return FieldSpec{}, false
}
