package validation

import (
	"strings"
	"testing"

	"github.com/goliatone/go-formpreview/pkg/model"
)

func ptrBool(v bool) *bool        { return &v }
func ptrFloat(v float64) *float64 { return &v }

func TestCompile_RequiredUsesLiteralMessage(t *testing.T) {
	rules := MustCompile(model.FormField{ID: "n", Type: model.FieldTypeText, Label: "Name", Required: true})

	fieldErr, failed := rules.Check("")
	if !failed {
		t.Fatalf("expected required failure")
	}
	if fieldErr.Message != "This field is required" {
		t.Fatalf("unexpected message %q", fieldErr.Message)
	}
	if fieldErr.Kind != KindRequired || fieldErr.Field != "n" {
		t.Fatalf("unexpected error %+v", fieldErr)
	}
	if _, failed := rules.Check("Ada"); failed {
		t.Fatalf("expected value to pass")
	}
}

func TestCompile_EmailPatternScenario(t *testing.T) {
	rules := MustCompile(model.FormField{
		ID:       "e",
		Type:     model.FieldTypeEmail,
		Label:    "Email",
		Required: true,
		Validation: &model.ValidationRule{
			Pattern: `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
			Message: "Please enter a valid email address",
		},
	})

	fieldErr, failed := rules.Check("not-an-email")
	if !failed || fieldErr.Message != "Please enter a valid email address" {
		t.Fatalf("expected pattern failure, got %+v (failed=%v)", fieldErr, failed)
	}
	if _, failed := rules.Check("a@b.com"); failed {
		t.Fatalf("expected valid email to pass")
	}
	fieldErr, _ = rules.Check("")
	if fieldErr.Kind != KindRequired {
		t.Fatalf("required must run before pattern, got %+v", fieldErr)
	}
	if rules.PatternSource() == "" {
		t.Fatalf("expected pattern source exposed")
	}
}

func TestCompile_PatternWithoutMessageFallsBack(t *testing.T) {
	rules := MustCompile(model.FormField{
		ID:         "code",
		Type:       model.FieldTypeText,
		Validation: &model.ValidationRule{Pattern: `^[A-Z]{3}$`},
	})
	fieldErr, failed := rules.Check("abc")
	if !failed || fieldErr.Message != InvalidFormatMessage {
		t.Fatalf("expected generic format message, got %+v", fieldErr)
	}
	if _, failed := rules.Check(""); failed {
		t.Fatalf("pattern must not run on empty optional values")
	}
}

func TestCompile_PatternIgnoredForChoiceFields(t *testing.T) {
	for _, typ := range []model.FieldType{model.FieldTypeSelect, model.FieldTypeRadio} {
		rules := MustCompile(model.FormField{
			ID:         "c",
			Type:       typ,
			Validation: &model.ValidationRule{Pattern: `^x$`, Message: "nope"},
		})
		if len(rules.Constraints) != 0 {
			t.Fatalf("%s: expected no constraints, got %+v", typ, rules.Constraints)
		}
		if _, failed := rules.Check("anything"); failed {
			t.Fatalf("%s: expected pass", typ)
		}
	}
}

func TestCompile_InvalidPatternIsAnError(t *testing.T) {
	_, err := Compile(model.FormField{
		ID:         "bad",
		Type:       model.FieldTypeText,
		Validation: &model.ValidationRule{Pattern: `([`},
	})
	if err == nil {
		t.Fatalf("expected compile error")
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Fatalf("expected field id in error, got %v", err)
	}
}

func TestCompile_PatternsUseBrowserSemantics(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		pass    []string
		fail    []string
	}{
		{
			name:    "lookahead",
			pattern: `^(?=.*\d).{8,}$`,
			pass:    []string{"password1", "12345678"},
			fail:    []string{"password", "pw1"},
		},
		{
			name:    "backreference",
			pattern: `^(\w)\1$`,
			pass:    []string{"aa"},
			fail:    []string{"ab"},
		},
		{
			name:    "unanchored",
			pattern: `\d`,
			pass:    []string{"room 4"},
			fail:    []string{"room"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules, err := Compile(model.FormField{
				ID:         "pw",
				Type:       model.FieldTypeText,
				Validation: &model.ValidationRule{Pattern: tc.pattern, Message: "bad"},
			})
			if err != nil {
				t.Fatalf("compile %q: %v", tc.pattern, err)
			}
			for _, value := range tc.pass {
				if fieldErr, failed := rules.Check(value); failed {
					t.Errorf("%q: expected pass, got %+v", value, fieldErr)
				}
			}
			for _, value := range tc.fail {
				if fieldErr, failed := rules.Check(value); !failed || fieldErr.Kind != KindPattern {
					t.Errorf("%q: expected pattern failure, got %+v (failed=%v)", value, fieldErr, failed)
				}
			}
		})
	}
}

func TestCompile_RuleRequiredOverride(t *testing.T) {
	rules := MustCompile(model.FormField{
		ID:         "terms",
		Type:       model.FieldTypeRadio,
		Validation: &model.ValidationRule{Required: ptrBool(true), Message: "Pick one"},
	})
	if !rules.Required() {
		t.Fatalf("expected validation.required to attach required constraint")
	}
	fieldErr, _ := rules.Check("")
	if fieldErr.Message != "Pick one" {
		t.Fatalf("expected override message, got %q", fieldErr.Message)
	}

	rules = MustCompile(model.FormField{
		ID:         "email",
		Type:       model.FieldTypeEmail,
		Validation: &model.ValidationRule{Required: ptrBool(true), Message: "Bad email", Pattern: `@`},
	})
	fieldErr, _ = rules.Check("")
	if fieldErr.Message != RequiredMessage {
		t.Fatalf("pattern messages must not override required, got %q", fieldErr.Message)
	}
}

func TestCompile_NumberBounds(t *testing.T) {
	rules := MustCompile(model.FormField{
		ID:         "age",
		Type:       model.FieldTypeNumber,
		Validation: &model.ValidationRule{Min: ptrFloat(18), Max: ptrFloat(99.5)},
	})

	cases := []struct {
		value   string
		failed  bool
		message string
	}{
		{value: "", failed: false},
		{value: "17", failed: true, message: "Must be at least 18"},
		{value: "18", failed: false},
		{value: "99.5", failed: false},
		{value: "100", failed: true, message: "Must be at most 99.5"},
		{value: "abc", failed: true, message: NotANumberMessage},
	}
	for _, tc := range cases {
		fieldErr, failed := rules.Check(tc.value)
		if failed != tc.failed {
			t.Fatalf("value %q: failed=%v, want %v", tc.value, failed, tc.failed)
		}
		if failed && fieldErr.Message != tc.message {
			t.Fatalf("value %q: message %q, want %q", tc.value, fieldErr.Message, tc.message)
		}
	}

	if bound, ok := rules.Bound(KindMin); !ok || bound != 18 {
		t.Fatalf("expected min bound 18, got %v (%v)", bound, ok)
	}
}

func TestCompile_BoundsIgnoredForText(t *testing.T) {
	rules := MustCompile(model.FormField{
		ID:         "t",
		Type:       model.FieldTypeText,
		Validation: &model.ValidationRule{Min: ptrFloat(1)},
	})
	if len(rules.Constraints) != 0 {
		t.Fatalf("expected no constraints for text bounds, got %+v", rules.Constraints)
	}
}
