package forms

import (
	"strconv"
	"strings"
)

// Values maps field ids to respondent input.
type Values map[string]any

// Visible evaluates the conjunction of a field's visibility rules against
// the current values. A field with no rules is always visible; every rule
// must hold for the field to show.
func Visible(f Field, values Values) bool {
	for _, rule := range f.VisibilityRules {
		if !holds(rule, values) {
			return false
		}
	}
	return true
}

func holds(rule VisibilityRule, values Values) bool {
	got := valueString(values[rule.FieldID])
	switch rule.Condition {
	case "equals":
		return got == rule.Value
	case "notEquals":
		return got != rule.Value
	case "contains":
		return strings.Contains(got, rule.Value)
	case "greaterThan":
		a, errA := strconv.ParseFloat(got, 64)
		b, errB := strconv.ParseFloat(rule.Value, 64)
		return errA == nil && errB == nil && a > b
	case "lessThan":
		a, errA := strconv.ParseFloat(got, 64)
		b, errB := strconv.ParseFloat(rule.Value, 64)
		return errA == nil && errB == nil && a < b
	default:
		// Unknown conditions never hide a field.
		return true
	}
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, valueString(e))
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// Selections normalizes a multi-select checkbox value to the subset of the
// field's options actually selected, preserving option order.
func (f Field) Selections(v any) []string {
	chosen := map[string]struct{}{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			chosen[s] = struct{}{}
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				chosen[s] = struct{}{}
			}
		}
	case string:
		if t != "" {
			chosen[t] = struct{}{}
		}
	}
	out := []string{}
	for _, opt := range f.Options {
		if _, ok := chosen[opt]; ok {
			out = append(out, opt)
		}
	}
	return out
}

// Checked coerces a boolean-toggle checkbox value.
func Checked(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "on"
	default:
		return false
	}
}

// Submission is the payload a client submit packages for the backend. Email
// is attached from the current session user; a session without a resolved
// email yields a null email, not an error.
type Submission struct {
	TrainerCode string  `json:"trainer_code"`
	FormID      string  `json:"form_id"`
	Values      Values  `json:"values"`
	Email       *string `json:"email"`
}

// PackageSubmission builds the submit payload from a schema and the entered
// values. Values of fields hidden by visibility rules are excluded, and
// checkbox values are normalized per the type overload.
func PackageSubmission(form Form, values Values, trainerCode, email string) Submission {
	visible := Values{}
	for _, f := range form.Fields {
		v, ok := values[f.ID]
		if !ok || !Visible(f, values) {
			continue
		}
		switch {
		case f.Multi():
			visible[f.ID] = f.Selections(v)
		case f.Type == FieldCheckbox:
			visible[f.ID] = Checked(v)
		default:
			visible[f.ID] = v
		}
	}
	var em *string
	if email != "" {
		em = &email
	}
	return Submission{
		TrainerCode: trainerCode,
		FormID:      form.ID,
		Values:      visible,
		Email:       em,
	}
}
