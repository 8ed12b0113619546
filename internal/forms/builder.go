package forms

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Builder is the in-memory store behind the trainer's form editor: the form
// currently being edited, the field selected for configuration, and a local
// cache of saved forms. Durability is the backend's concern; SaveForm only
// updates the local cache. One Builder serves one editing session.
type Builder struct {
	mu       sync.RWMutex
	forms    []Form
	current  *Form
	selected *Field
}

func NewBuilder() *Builder {
	return &Builder{}
}

// NewField mints a field with a fresh unique id.
func NewField(t FieldType, label string) Field {
	return Field{ID: "field-" + uuid.NewString(), Type: t, Label: label}
}

// CreateNewForm replaces the current form with an empty one and clears the
// field selection.
func (b *Builder) CreateNewForm(name, description string) Form {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	f := Form{
		ID:          "form-" + uuid.NewString(),
		Name:        name,
		Description: description,
		Fields:      []Field{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.current = &f
	b.selected = nil
	return f
}

func (b *Builder) SetCurrentForm(f *Form) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = f
	b.selected = nil
}

func (b *Builder) CurrentForm() (Form, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil {
		return Form{}, false
	}
	return snapshot(*b.current), true
}

// snapshot copies a form so callers never alias the live field list.
func snapshot(f Form) Form {
	f.Fields = append([]Field(nil), f.Fields...)
	return f
}

func (b *Builder) SelectField(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = nil
	if b.current == nil {
		return
	}
	for i := range b.current.Fields {
		if b.current.Fields[i].ID == id {
			f := b.current.Fields[i]
			b.selected = &f
			return
		}
	}
}

func (b *Builder) SelectedField() (Field, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.selected == nil {
		return Field{}, false
	}
	return *b.selected, true
}

// AddField appends to the end of the current field list. Callers are
// responsible for unique ids; NewField is the conventional source.
func (b *Builder) AddField(f Field) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return
	}
	b.current.Fields = append(b.current.Fields, f)
}

// FieldUpdate is a partial field update; nil members leave the field's value
// untouched.
type FieldUpdate struct {
	Type            *FieldType
	Label           *string
	Placeholder     *string
	Required        *bool
	Options         *[]string
	Min             *float64
	Max             *float64
	Step            *float64
	Accept          *string
	Validation      *[]ValidationRule
	VisibilityRules *[]VisibilityRule
}

func (u FieldUpdate) apply(f *Field) {
	if u.Type != nil {
		f.Type = *u.Type
	}
	if u.Label != nil {
		f.Label = *u.Label
	}
	if u.Placeholder != nil {
		f.Placeholder = *u.Placeholder
	}
	if u.Required != nil {
		f.Required = *u.Required
	}
	if u.Options != nil {
		f.Options = *u.Options
	}
	if u.Min != nil {
		f.Min = u.Min
	}
	if u.Max != nil {
		f.Max = u.Max
	}
	if u.Step != nil {
		f.Step = u.Step
	}
	if u.Accept != nil {
		f.Accept = *u.Accept
	}
	if u.Validation != nil {
		f.Validation = *u.Validation
	}
	if u.VisibilityRules != nil {
		f.VisibilityRules = *u.VisibilityRules
	}
}

// UpdateField merges a partial update into the matching field; a missing id
// is a no-op. The selected field is kept in sync when it is the one edited.
func (b *Builder) UpdateField(id string, update FieldUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return
	}
	for i := range b.current.Fields {
		if b.current.Fields[i].ID == id {
			update.apply(&b.current.Fields[i])
			if b.selected != nil && b.selected.ID == id {
				f := b.current.Fields[i]
				b.selected = &f
			}
			return
		}
	}
}

// DeleteField removes the matching field and clears the selection if it was
// the deleted one.
func (b *Builder) DeleteField(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return
	}
	fields := b.current.Fields[:0]
	for _, f := range b.current.Fields {
		if f.ID != id {
			fields = append(fields, f)
		}
	}
	b.current.Fields = fields
	if b.selected != nil && b.selected.ID == id {
		b.selected = nil
	}
}

// ReorderFields moves the field at from to position to, shifting the rest.
// List length and field identities are preserved; out-of-range indexes are a
// no-op.
func (b *Builder) ReorderFields(from, to int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return
	}
	n := len(b.current.Fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return
	}
	fields := b.current.Fields
	moved := fields[from]
	fields = append(fields[:from], fields[from+1:]...)
	fields = append(fields[:to], append([]Field{moved}, fields[to:]...)...)
	b.current.Fields = fields
}

// SaveForm refreshes the current form's UpdatedAt and upserts it into the
// local forms cache, keyed by id.
func (b *Builder) SaveForm() (Form, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Form{}, false
	}
	b.current.UpdatedAt = time.Now()
	saved := snapshot(*b.current)
	for i := range b.forms {
		if b.forms[i].ID == saved.ID {
			b.forms[i] = saved
			return saved, true
		}
	}
	b.forms = append(b.forms, saved)
	return saved, true
}

func (b *Builder) Forms() []Form {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Form, len(b.forms))
	for i, f := range b.forms {
		out[i] = snapshot(f)
	}
	return out
}
