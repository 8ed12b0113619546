package forms

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestVisibleConjunction(t *testing.T) {
	f := Field{
		ID:   "detail",
		Type: FieldText,
		VisibilityRules: []VisibilityRule{
			{FieldID: "goal", Condition: "equals", Value: "Cut"},
			{FieldID: "weight", Condition: "greaterThan", Value: "80"},
		},
	}

	both := Values{"goal": "Cut", "weight": "90"}
	if !Visible(f, both) {
		t.Fatal("both rules hold, field must be visible")
	}

	// Either rule failing hides the field, even with the other true.
	if Visible(f, Values{"goal": "Bulk", "weight": "90"}) {
		t.Fatal("equals rule false, field must be hidden")
	}
	if Visible(f, Values{"goal": "Cut", "weight": "70"}) {
		t.Fatal("greaterThan rule false, field must be hidden")
	}
}

func TestVisibleConditions(t *testing.T) {
	cases := []struct {
		condition string
		value     string
		current   any
		want      bool
	}{
		{"equals", "yes", "yes", true},
		{"equals", "yes", "no", false},
		{"notEquals", "yes", "no", true},
		{"notEquals", "yes", "yes", false},
		{"contains", "gym", "home gym setup", true},
		{"contains", "gym", "outdoor", false},
		{"greaterThan", "10", "11", true},
		{"greaterThan", "10", float64(12), true},
		{"greaterThan", "10", "9", false},
		{"greaterThan", "10", "", false},
		{"lessThan", "10", "9", true},
		{"lessThan", "10", "abc", false},
	}
	for _, tc := range cases {
		f := Field{ID: "x", Type: FieldText, VisibilityRules: []VisibilityRule{
			{FieldID: "ref", Condition: tc.condition, Value: tc.value},
		}}
		got := Visible(f, Values{"ref": tc.current})
		if got != tc.want {
			t.Errorf("%s %q against %v: got %v, want %v", tc.condition, tc.value, tc.current, got, tc.want)
		}
	}
}

func TestVisibleNoRules(t *testing.T) {
	if !Visible(Field{ID: "a", Type: FieldText}, Values{}) {
		t.Fatal("field without rules must always be visible")
	}
}

func TestCheckboxOverloadMultiSelect(t *testing.T) {
	f := Field{ID: "days", Type: FieldCheckbox, Options: []string{"A", "B"}}
	if !f.Multi() {
		t.Fatal("checkbox with options must be multi-select")
	}

	got := f.Selections([]any{"B", "C", "A"})
	if !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("selections must be the subset of options in option order, got %v", got)
	}
	if got := f.Selections("A"); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("single string selection: got %v", got)
	}
	if got := f.Selections(nil); len(got) != 0 {
		t.Fatalf("nil value must select nothing, got %v", got)
	}
}

func TestCheckboxOverloadBoolean(t *testing.T) {
	f := Field{ID: "consent", Type: FieldCheckbox}
	if f.Multi() {
		t.Fatal("checkbox without options must be a boolean toggle")
	}
	if !Checked(true) || Checked(false) {
		t.Fatal("bool coercion broken")
	}
	if !Checked("true") || Checked("nope") {
		t.Fatal("string coercion broken")
	}
}

func TestPackageSubmissionStripsHiddenValues(t *testing.T) {
	form := Form{
		ID:   "form-1",
		Name: "Intake",
		Fields: []Field{
			{ID: "goal", Type: FieldSelect, Options: []string{"Cut", "Bulk"}},
			{ID: "target", Type: FieldNumber, VisibilityRules: []VisibilityRule{
				{FieldID: "goal", Condition: "equals", Value: "Cut"},
			}},
		},
	}
	values := Values{"goal": "Bulk", "target": "75"}

	sub := PackageSubmission(form, values, "ABC123", "a@b.com")
	if _, present := sub.Values["target"]; present {
		t.Fatal("hidden field value must be stripped from the submission")
	}
	if sub.Values["goal"] != "Bulk" {
		t.Fatalf("visible value lost: %v", sub.Values)
	}
	if sub.TrainerCode != "ABC123" || sub.FormID != "form-1" {
		t.Fatalf("submission metadata wrong: %+v", sub)
	}
	if sub.Email == nil || *sub.Email != "a@b.com" {
		t.Fatalf("email not attached: %v", sub.Email)
	}
}

func TestPackageSubmissionNullEmail(t *testing.T) {
	form := Form{ID: "f", Name: "n", Fields: []Field{{ID: "a", Type: FieldText}}}
	sub := PackageSubmission(form, Values{"a": "x"}, "C0DE", "")

	raw, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, present := decoded["email"]; !present || v != nil {
		t.Fatalf("missing email must serialize as null, got %v", decoded)
	}
}

func TestPackageSubmissionNormalizesCheckboxes(t *testing.T) {
	form := Form{ID: "f", Name: "n", Fields: []Field{
		{ID: "days", Type: FieldCheckbox, Options: []string{"Mon", "Tue"}},
		{ID: "consent", Type: FieldCheckbox},
	}}
	sub := PackageSubmission(form, Values{"days": []any{"Tue", "Bogus"}, "consent": "true"}, "C", "e@x.y")

	if !reflect.DeepEqual(sub.Values["days"], []string{"Tue"}) {
		t.Fatalf("multi checkbox not normalized: %v", sub.Values["days"])
	}
	if sub.Values["consent"] != true {
		t.Fatalf("boolean checkbox not coerced: %v", sub.Values["consent"])
	}
}
