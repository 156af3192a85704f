package form

import (
	"testing"

	"github.com/rosterdev/roster-store/pkg/schema"
)

func fullSchema() schema.FormSchema {
	return schema.Parse([]byte(`{"fields":[
		{"id":"name","label":"Full Name","type":"text","required":true},
		{"id":"email","label":"Email","type":"email","required":true},
		{"id":"password","label":"Password","type":"password","required":true},
		{"id":"age","label":"Age","type":"number"},
		{"id":"gender","label":"Gender","type":"select","options":["Male","Female","Other"]},
		{"id":"electives","label":"Electives","type":"multiselect","options":["AI","DB"]},
		{"id":"skills","label":"Skills","type":"tags"},
		{"id":"bio","label":"Bio","type":"textarea"},
		{"id":"dob","label":"Date of Birth","type":"date"}
	]}`))
}

func TestBuild_OneWidgetPerFieldInOrder(t *testing.T) {
	s := fullSchema()
	f, err := Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(f.Widgets) != len(s.Fields) {
		t.Fatalf("Expected %d widgets, got %d", len(s.Fields), len(f.Widgets))
	}
	for i, w := range f.Widgets {
		if w.FieldID != s.Fields[i].ID {
			t.Errorf("Widget %d: expected field %s, got %s", i, s.Fields[i].ID, w.FieldID)
		}
		if w.Label != s.Fields[i].Label {
			t.Errorf("Widget %d: label mismatch %q", i, w.Label)
		}
	}
}

func TestBuild_WidgetShapes(t *testing.T) {
	f, err := Build(fullSchema())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	byID := make(map[string]Widget)
	for _, w := range f.Widgets {
		byID[w.FieldID] = w
	}

	if w := byID["gender"]; len(w.Options) != 4 || w.Options[0] != BlankOption {
		t.Errorf("select should prepend the blank option: %v", w.Options)
	}
	if w := byID["gender"]; w.Options[1] != "Male" || w.Options[3] != "Other" {
		t.Errorf("select options out of schema order: %v", w.Options)
	}
	if w := byID["electives"]; !w.Multiple || w.Enhance != EnhanceMultiSelect || len(w.Options) != 2 {
		t.Errorf("multiselect shape wrong: %+v", w)
	}
	if w := byID["skills"]; w.Enhance != EnhanceTags {
		t.Errorf("tags should delegate to the tagging plugin: %+v", w)
	}
	if w := byID["bio"]; !w.Multiline {
		t.Errorf("textarea should be multiline: %+v", w)
	}
	if w := byID["dob"]; w.InputType != "text" || w.Enhance != EnhanceDatePicker {
		t.Errorf("date should be a text box with the picker plugin: %+v", w)
	}
	if w := byID["email"]; w.InputType != "email" {
		t.Errorf("default kinds take the literal type string: %+v", w)
	}
	if w := byID["age"]; w.InputType != "number" {
		t.Errorf("default kinds take the literal type string: %+v", w)
	}
}

func TestBuild_RequiredMarkerIsCosmetic(t *testing.T) {
	f, _ := Build(fullSchema())
	if f.Widgets[0].DisplayLabel() != "Full Name*" {
		t.Errorf("Expected trailing marker, got %q", f.Widgets[0].DisplayLabel())
	}
	if f.Widgets[3].DisplayLabel() != "Age" {
		t.Errorf("Optional fields have no marker, got %q", f.Widgets[3].DisplayLabel())
	}
}

func TestBuild_RejectsBadSchemas(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty id", `{"fields":[{"label":"X","type":"text"}]}`},
		{"duplicate id", `{"fields":[{"id":"a","type":"text"},{"id":"a","type":"text"}]}`},
		{"options on text", `{"fields":[{"id":"a","type":"text","options":["x"]}]}`},
		{"options on tags", `{"fields":[{"id":"a","type":"tags","options":["x"]}]}`},
		{"unknown kind", `{"fields":[{"id":"a","type":"checkbox"}]}`},
	}
	for _, tc := range cases {
		if _, err := Build(schema.Parse([]byte(tc.raw))); err == nil {
			t.Errorf("%s: expected Build to fail", tc.name)
		}
	}
}

func TestBuild_EmptySchema(t *testing.T) {
	f, err := Build(schema.FormSchema{Fields: []schema.FieldSpec{}})
	if err != nil {
		t.Fatalf("Empty schema should build: %v", err)
	}
	if len(f.Widgets) != 0 {
		t.Errorf("Expected no widgets, got %d", len(f.Widgets))
	}
}
