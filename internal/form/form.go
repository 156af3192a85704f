// Package form turns a parsed schema into typed widget descriptions.
// The core never produces markup: widgets are plain values that the web
// layer materializes into HTML and serves as JSON for the page scripts.
package form

import (
	"fmt"

	"github.com/rosterdev/roster-store/pkg/schema"
)

// Enhancement names the external plugin a widget is delegated to.
// The core only records which one applies; initialization is the page's job.
type Enhancement string

const (
	EnhanceNone        Enhancement = ""
	EnhanceMultiSelect Enhancement = "multiselect"
	EnhanceTags        Enhancement = "tags"
	EnhanceDatePicker  Enhancement = "datepicker"
)

// Widget describes one labeled input. Exactly one widget exists per schema
// field, in schema order. Options are populated only for choice kinds; the
// required flag drives a cosmetic marker and nothing else — validation
// stays with the validator.
type Widget struct {
	FieldID   string           `json:"field_id"`
	Label     string           `json:"label"`
	Kind      schema.FieldKind `json:"kind"`
	InputType string           `json:"input_type,omitempty"`
	Options   []string         `json:"options,omitempty"`
	Multiple  bool             `json:"multiple,omitempty"`
	Multiline bool             `json:"multiline,omitempty"`
	Enhance   Enhancement      `json:"enhance,omitempty"`
	Required  bool             `json:"required,omitempty"`
}

// BlankOption is the placeholder prepended to single-choice dropdowns.
const BlankOption = "Select"

// Form is the built widget list together with the schema it came from.
// Submissions are validated against the same schema that built the form.
type Form struct {
	Schema  schema.FormSchema
	Widgets []Widget
}

// Build produces one widget per field. It rejects what the tolerant schema
// parser let through: empty or duplicate IDs, options on non-choice kinds,
// and kinds outside the enumeration.
func Build(s schema.FormSchema) (*Form, error) {
	seen := make(map[string]bool, len(s.Fields))
	widgets := make([]Widget, 0, len(s.Fields))

	for i, f := range s.Fields {
		if f.ID == "" {
			return nil, fmt.Errorf("field %d: empty id", i)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("field %d: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true

		if len(f.Options) > 0 && !f.Kind.Choice() {
			return nil, fmt.Errorf("field %q: options on non-choice kind %q", f.ID, f.Kind)
		}

		w := Widget{
			FieldID:  f.ID,
			Label:    f.Label,
			Kind:     f.Kind,
			Required: f.Required,
		}

		switch f.Kind {
		case schema.KindSelect:
			w.Options = append([]string{BlankOption}, f.Options...)
		case schema.KindMultiSelect:
			w.Options = f.Options
			w.Multiple = true
			w.Enhance = EnhanceMultiSelect
		case schema.KindTags:
			w.Enhance = EnhanceTags
		case schema.KindTextarea:
			w.Multiline = true
		case schema.KindDate:
			// A plain text box; the date picker plugin takes over on the page.
			w.InputType = "text"
			w.Enhance = EnhanceDatePicker
		case schema.KindText, schema.KindEmail, schema.KindPassword, schema.KindNumber:
			w.InputType = string(f.Kind)
		default:
			return nil, fmt.Errorf("field %q: unknown kind %q", f.ID, f.Kind)
		}

		widgets = append(widgets, w)
	}

	return &Form{Schema: s, Widgets: widgets}, nil
}

// DisplayLabel is the label as shown on the page: required fields carry a
// trailing marker. Cosmetic only.
func (w Widget) DisplayLabel() string {
	if w.Required {
		return w.Label + "*"
	}
	return w.Label
}
