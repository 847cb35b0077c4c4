package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidationErrorMessages(t *testing.T) {
	err := NewValidationError("email", "must be a valid email address", "nope")
	if err.Error() != "invalid email: must be a valid email address" {
		t.Errorf("Unexpected message '%s'", err.Error())
	}

	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("role_id", "is required", nil))
	if errs.Error() != "validation failed: role_id is required" {
		t.Errorf("Unexpected single error message '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("mode", "must be skill or persona", "team"))
	if errs.Error() != "validation failed on role_id, mode" {
		t.Errorf("Unexpected multi error message '%s'", errs.Error())
	}

	if e, ok := errs.Field("mode"); !ok || e.Value != "team" {
		t.Errorf("Expected to find mode failure, got %+v", e)
	}
	if _, ok := errs.Field("name"); ok {
		t.Error("Did not expect a failure for name")
	}
}

func TestToValidationErrors(t *testing.T) {
	type invite struct {
		Email string   `validate:"required,email"`
		Tags  []string `validate:"max=2"`
		Level int      `validate:"oneof=1 2 3"`
	}
	err := validator.New().Struct(invite{Email: "x", Tags: []string{"a", "b", "c"}, Level: 7})

	errs := ToValidationErrors(fmt.Errorf("bind: %w", err))
	if len(errs) != 3 {
		t.Fatalf("Expected 3 failures, got %d", len(errs))
	}

	want := map[string]string{
		"Email": "must be a valid email address",
		"Tags":  "must be at most 2",
		"Level": "must be one of 1, 2, 3",
	}
	for field, msg := range want {
		e, ok := errs.Field(field)
		if !ok {
			t.Errorf("Missing failure for %s", field)
			continue
		}
		if e.Message != msg {
			t.Errorf("%s: expected '%s', got '%s'", field, msg, e.Message)
		}
	}

	if ToValidationErrors(fmt.Errorf("boom")) != nil {
		t.Error("Expected nil for non-validator errors")
	}
}

func TestNotFoundError(t *testing.T) {
	var err error = fmt.Errorf("lookup: %w", NewNotFoundError("question", "q-9"))

	nf, ok := AsNotFound(err)
	if !ok {
		t.Fatal("Expected wrapped error to unwrap into NotFoundError")
	}
	if nf.Kind != "question" || nf.ID != "q-9" {
		t.Errorf("Unexpected not found error: %+v", nf)
	}
	if nf.Error() != `question "q-9" not found` {
		t.Errorf("Unexpected message '%s'", nf.Error())
	}
}

func TestInvalidStateError(t *testing.T) {
	err := NewInvalidStateError("submit answer", "complete", "in_progress")

	expected := "cannot submit answer in state complete (requires [in_progress])"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}

	if _, ok := AsInvalidState(fmt.Errorf("wrapped: %w", err)); !ok {
		t.Error("Expected wrapped error to unwrap into InvalidStateError")
	}
	if _, ok := AsInvalidState(NewNotFoundError("session", "x")); ok {
		t.Error("NotFoundError must not match InvalidStateError")
	}
}
