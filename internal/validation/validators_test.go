package validation

import (
	"errors"
	"testing"

	"github.com/benvon/questlog/internal/apperr"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  water plants  ", "water plants"},
		{"removes control characters", "read\x00 book\x07", "read book"},
		{"keeps newline and tab", "line1\n\tline2", "line1\n\tline2"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnumValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func(string) error
		value   string
		wantErr bool
	}{
		{"status not_started", ValidateTaskStatus, "not_started", false},
		{"status completed", ValidateTaskStatus, "completed", false},
		{"status pending", ValidateTaskStatus, "pending", true},
		{"progress incremental", ValidateProgressType, "incremental", false},
		{"progress percent", ValidateProgressType, "percent", true},
		{"recurrence monthly", ValidateRecurrenceType, "monthly", false},
		{"recurrence custom", ValidateRecurrenceType, "custom", false},
		{"recurrence yearly", ValidateRecurrenceType, "yearly", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.fn(tt.value); (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type sample struct {
	Title    string `json:"title" validate:"required"`
	Priority int    `json:"priority" validate:"min=1,max=5"`
	Status   string `json:"status,omitempty" validate:"omitempty,task_status"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     sample
		wantField string
	}{
		{"valid", sample{Title: "x", Priority: 1}, ""},
		{"missing title", sample{Priority: 1}, "title"},
		{"priority out of range", sample{Title: "x", Priority: 6}, "priority"},
		{"bad status", sample{Title: "x", Priority: 2, Status: "done"}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Struct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Expected field %s, got %s", tt.wantField, ve.Field)
			}
		})
	}
}
