package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Name   string  `validate:"required,min=2"`
	Phone  string  `validate:"omitempty,e164"`
	Status string  `validate:"omitempty,oneof=a b"`
	Price  float64 `validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name      string
		in        sample
		wantField string
		wantMsg   string
	}{
		{"missing name", sample{Price: 1}, "Name", "Name is required"},
		{"short name", sample{Name: "a", Price: 1}, "Name", "Name must be at least 2"},
		{"bad phone", sample{Name: "ab", Phone: "123", Price: 1}, "Phone", "E.164"},
		{"bad status", sample{Name: "ab", Status: "c", Price: 1}, "Status", "must be one of: a b"},
		{"zero price", sample{Name: "ab"}, "Price", "greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, tt.in)
			errs, ok := AsValidationErrors(err)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("field = %s, want %s", errs[0].Field, tt.wantField)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", errs[0].Message, tt.wantMsg)
			}
		})
	}

	if err := Struct(v, sample{Name: "ok", Price: 10}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
}

func TestValidationErrors_Details(t *testing.T) {
	errs := ValidationErrors{{Field: "Guests", Message: "Guests is required"}}

	fields, ok := errs.Details()["fields"].(map[string]any)
	if !ok || fields["Guests"] != "Guests is required" {
		t.Errorf("unexpected details: %v", errs.Details())
	}
	if !strings.Contains(errs.Error(), "1 error(s)") {
		t.Errorf("unexpected message: %s", errs.Error())
	}
}

func TestAsValidationErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", ValidationErrors{{Field: "Room", Message: "bad"}})
	if _, ok := AsValidationErrors(wrapped); !ok {
		t.Error("wrapped validation errors should be detected")
	}
}
