package validate_test

import (
	"fmt"
	"testing"

	"github.com/forkwallet/netclient/internal/validate"
)

type part struct {
	Field    string `json:"field" validate:"required"`
	FileName string `json:"file" validate:"required,max=8"`
	Method   string `validate:"oneof=GET POST"`
}

func TestCheck_Valid(t *testing.T) {
	p := part{Field: "f", FileName: "a.jpg", Method: "GET"}
	if err := validate.Check(&p); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestCheck_MissingRequired(t *testing.T) {
	p := part{FileName: "a.jpg", Method: "POST"}
	err := validate.Check(&p)
	if err == nil {
		t.Fatal("expected error for missing required field")
	}

	fe := validate.GetFieldErrors(fmt.Errorf("wrapped: %w", err))
	if fe == nil {
		t.Fatal("expected FieldErrors")
	}

	fields := fe.Fields()
	if fields["field"] != "This field is required" {
		t.Fatalf("field error = %q, want %q", fields["field"], "This field is required")
	}
}

func TestCheck_UntaggedNameFallsBack(t *testing.T) {
	p := part{Field: "f", FileName: "a.jpg", Method: "PATCH"}
	fe := validate.GetFieldErrors(validate.Check(&p))
	if _, ok := fe.Fields()["Method"]; !ok {
		t.Fatalf("expected 'Method' field error, got %v", fe.Fields())
	}
}

func TestCheck_TranslatedMessage(t *testing.T) {
	p := part{Field: "f", FileName: "much-too-long.jpg", Method: "GET"}
	fe := validate.GetFieldErrors(validate.Check(&p))
	msg, ok := fe.Fields()["file"]
	if !ok {
		t.Fatalf("expected 'file' field error, got %v", fe.Fields())
	}
	if msg == "" || msg == "This field is required" {
		t.Fatalf("unexpected translated message %q", msg)
	}
}

func TestGetFieldErrors_Nil(t *testing.T) {
	if fe := validate.GetFieldErrors(fmt.Errorf("plain")); fe != nil {
		t.Fatalf("expected nil, got %v", fe)
	}
}
