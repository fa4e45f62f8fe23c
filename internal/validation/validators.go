package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// report json field names instead of Go field names
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("progress_type", validateProgressType); err != nil {
		panic(fmt.Sprintf("failed to register progress_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("recurrence_type", validateRecurrenceType); err != nil {
		panic(fmt.Sprintf("failed to register recurrence_type validator: %v", err))
	}
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	return ValidateTaskStatus(fl.Field().String()) == nil
}

func validateProgressType(fl validator.FieldLevel) bool {
	return ValidateProgressType(fl.Field().String()) == nil
}

func validateRecurrenceType(fl validator.FieldLevel) bool {
	return ValidateRecurrenceType(fl.Field().String()) == nil
}

// Struct validates v and converts the first failure into an apperr.ValidationError
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Invalid(fe.Field(), "failed %s=%s", fe.Tag(), fe.Param())
	}
	return apperr.Invalid("", "%v", err)
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// keep newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskStatus validates a TaskStatus string value
func ValidateTaskStatus(value string) error {
	switch models.TaskStatus(value) {
	case models.TaskStatusNotStarted, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'not_started', 'in_progress', or 'completed')", value)
	}
}

// ValidateProgressType validates a ProgressType string value
func ValidateProgressType(value string) error {
	switch models.ProgressType(value) {
	case models.ProgressTypeBoolean, models.ProgressTypeIncremental:
		return nil
	default:
		return fmt.Errorf("invalid progress_type: %s (must be 'boolean' or 'incremental')", value)
	}
}

// ValidateRecurrenceType validates a RecurrenceType string value
func ValidateRecurrenceType(value string) error {
	switch models.RecurrenceType(value) {
	case models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly, models.RecurrenceCustom:
		return nil
	default:
		return fmt.Errorf("invalid recurrence type: %s (must be 'daily', 'weekly', 'monthly', or 'custom')", value)
	}
}
