// Package forms holds the dynamic form model shared by the trainer-side
// builder and the client-side renderer: the schema types, schema validation,
// the visibility rule engine and submission packaging.
package forms

import (
	"encoding/json"
	"fmt"
	"time"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
	FieldURL      FieldType = "url"
	FieldTel      FieldType = "tel"
	FieldPassword FieldType = "password"
	FieldRange    FieldType = "range"
	FieldColor    FieldType = "color"
	FieldTime     FieldType = "time"
	FieldDateTime FieldType = "datetime-local"
)

var fieldTypes = map[FieldType]struct{}{
	FieldText: {}, FieldEmail: {}, FieldNumber: {}, FieldTextarea: {},
	FieldSelect: {}, FieldRadio: {}, FieldCheckbox: {}, FieldDate: {},
	FieldFile: {}, FieldURL: {}, FieldTel: {}, FieldPassword: {},
	FieldRange: {}, FieldColor: {}, FieldTime: {}, FieldDateTime: {},
}

// KnownType reports whether t is part of the supported enumeration. A
// renderer must present unknown types as an "unsupported field type"
// placeholder rather than failing the whole form.
func KnownType(t FieldType) bool {
	_, ok := fieldTypes[t]
	return ok
}

type ValidationRule struct {
	Type    string `json:"type"` // required|minLength|maxLength|pattern|min|max
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// VisibilityRule references another field in the same form by id (a weak
// reference, not ownership) and compares its current value.
type VisibilityRule struct {
	FieldID   string `json:"fieldId"`
	Condition string `json:"condition"` // equals|notEquals|contains|greaterThan|lessThan
	Value     string `json:"value"`
}

var conditions = map[string]struct{}{
	"equals": {}, "notEquals": {}, "contains": {}, "greaterThan": {}, "lessThan": {},
}

type Field struct {
	ID              string           `json:"id"`
	Type            FieldType        `json:"type"`
	Label           string           `json:"label"`
	Placeholder     string           `json:"placeholder,omitempty"`
	Required        bool             `json:"required"`
	Options         []string         `json:"options,omitempty"`
	Min             *float64         `json:"min,omitempty"`
	Max             *float64         `json:"max,omitempty"`
	Step            *float64         `json:"step,omitempty"`
	Accept          string           `json:"accept,omitempty"`
	Validation      []ValidationRule `json:"validation,omitempty"`
	VisibilityRules []VisibilityRule `json:"visibilityRules,omitempty"`
}

// Multi reports the overloaded checkbox case: a checkbox with options is a
// multi-select whose value is a set of option strings, while a checkbox
// without options is a single boolean toggle.
func (f Field) Multi() bool {
	return f.Type == FieldCheckbox && len(f.Options) > 0
}

func (f Field) hasOptions() bool {
	switch f.Type {
	case FieldSelect, FieldRadio, FieldCheckbox:
		return true
	}
	return false
}

func (f Field) hasBounds() bool {
	switch f.Type {
	case FieldNumber, FieldRange, FieldDate, FieldTime, FieldDateTime:
		return true
	}
	return false
}

// Form is a trainer-authored schema. Field order is significant: it is the
// rendering and tab order.
type Form struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Fields      []Field   `json:"fields"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Decode parses and validates a raw schema as received on the wire.
func Decode(raw []byte) (Form, error) {
	var f Form
	if err := json.Unmarshal(raw, &f); err != nil {
		return Form{}, fmt.Errorf("parse form schema: %w", err)
	}
	if err := Validate(f); err != nil {
		return Form{}, err
	}
	return f, nil
}

// Validate checks the structural invariants of a schema.
func Validate(f Form) error {
	if f.ID == "" {
		return fmt.Errorf("form id is required")
	}
	if f.Name == "" {
		return fmt.Errorf("form name is required")
	}
	ids := make(map[string]struct{}, len(f.Fields))
	for _, fld := range f.Fields {
		if fld.ID == "" {
			return fmt.Errorf("field id is required")
		}
		if _, dup := ids[fld.ID]; dup {
			return fmt.Errorf("duplicate field id %q", fld.ID)
		}
		ids[fld.ID] = struct{}{}
		if !KnownType(fld.Type) {
			return fmt.Errorf("field %q: unknown type %q", fld.ID, fld.Type)
		}
		if len(fld.Options) > 0 && !fld.hasOptions() {
			return fmt.Errorf("field %q: options not allowed for type %q", fld.ID, fld.Type)
		}
		if (fld.Min != nil || fld.Max != nil || fld.Step != nil) && !fld.hasBounds() {
			return fmt.Errorf("field %q: min/max/step not allowed for type %q", fld.ID, fld.Type)
		}
		if fld.Accept != "" && fld.Type != FieldFile {
			return fmt.Errorf("field %q: accept only applies to file fields", fld.ID)
		}
		for _, vr := range fld.VisibilityRules {
			if _, ok := conditions[vr.Condition]; !ok {
				return fmt.Errorf("field %q: unknown visibility condition %q", fld.ID, vr.Condition)
			}
			if vr.FieldID == fld.ID {
				return fmt.Errorf("field %q: visibility rule references itself", fld.ID)
			}
		}
	}
	// Visibility references are weak, but a reference to a field that does
	// not exist at all can never evaluate meaningfully.
	for _, fld := range f.Fields {
		for _, vr := range fld.VisibilityRules {
			if _, ok := ids[vr.FieldID]; !ok {
				return fmt.Errorf("field %q: visibility rule references unknown field %q", fld.ID, vr.FieldID)
			}
		}
	}
	return nil
}
