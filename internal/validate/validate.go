// Package validate checks submitted field values against their specs.
// Rules are evaluated independently per field; there are no cross-field
// rules. A submission passes only when every field passes.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rosterdev/roster-store/pkg/schema"
)

// ErrValidation is the sentinel all validation failures unwrap to.
var ErrValidation = errors.New("validation error")

// FieldError describes why one field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every failing field of a submission.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Message
	}
	return fmt.Sprintf("%d fields failed validation", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Messages returns the per-field messages in schema order, for the one
// combined report shown to the user.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return msgs
}

// Minimal local@domain.tld shape. Anything stricter belongs in a schema
// pattern on the field itself.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

// Field checks one value against one spec. Returns nil when acceptable.
//
// Rule order: required, then pattern, then email shape. Pattern matching is
// whole-string: the schema pattern is compiled anchored, so a partial match
// does not pass.
func Field(f schema.FieldSpec, v schema.FieldValue) *FieldError {
	if f.Required && v.Empty() {
		return &FieldError{Field: f.ID, Message: fmt.Sprintf("%s required", f.Label)}
	}
	if v.Empty() {
		return nil
	}

	if f.Pattern != "" {
		re, err := regexp.Compile(`\A(?:` + f.Pattern + `)\z`)
		if err != nil || !matchAll(re, v) {
			return &FieldError{Field: f.ID, Message: fmt.Sprintf("%s invalid", f.Label)}
		}
		return nil
	}

	if f.Kind == schema.KindEmail && !emailShape.MatchString(strings.TrimSpace(v.String())) {
		return &FieldError{Field: f.ID, Message: "Invalid email"}
	}
	return nil
}

func matchAll(re *regexp.Regexp, v schema.FieldValue) bool {
	for _, s := range v.Strings() {
		if !re.MatchString(s) {
			return false
		}
	}
	return true
}

// All runs Field over every spec in schema order and returns nil or a
// *ValidationError carrying every failure. Absent values are treated as
// empty, so required fields with no submission still fail.
func All(s schema.FormSchema, values map[string]schema.FieldValue) error {
	var errs []FieldError
	for _, f := range s.Fields {
		if fe := Field(f, values[f.ID]); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
