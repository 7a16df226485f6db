package utils

import (
	"errors"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestSanitizeValidationErrorRequired(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Name   string `validate:"required"`
		UserID string `validate:"required"`
	}

	err := validate.Struct(TestReq{})
	if err == nil {
		t.Fatal("expected validation error for missing required fields")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "name is required") {
		t.Errorf("expected name message, got: %s", msg)
	}
	if !strings.Contains(msg, "userId is required") {
		t.Errorf("expected camelCase userId, got: %s", msg)
	}
	if strings.Contains(msg, "TestReq") {
		t.Errorf("message leaks struct name: %s", msg)
	}
}

func TestSanitizeValidationErrorEmail(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Email string `validate:"required,email"`
	}

	msg := SanitizeValidationError(validate.Struct(TestReq{Email: "not-an-email"}))
	if !strings.Contains(msg, "valid email address") {
		t.Errorf("expected user-friendly email error, got: %s", msg)
	}
}

func TestSanitizeValidationErrorMinItems(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Items []string `validate:"required,min=1"`
	}

	msg := SanitizeValidationError(validate.Struct(TestReq{Items: []string{}}))
	if !strings.Contains(msg, "items") {
		t.Errorf("expected items message, got: %s", msg)
	}
}

func TestSanitizeValidationErrorGreaterThan(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Guests int `validate:"gt=0"`
	}

	msg := SanitizeValidationError(validate.Struct(TestReq{Guests: 0}))
	if msg != "guests must be greater than 0" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestSanitizeValidationErrorOther(t *testing.T) {
	if msg := SanitizeValidationError(nil); msg != "" {
		t.Errorf("expected empty string for nil error, got: %s", msg)
	}
	if msg := SanitizeValidationError(errors.New("invalid character 'x'")); msg != "Invalid request body" {
		t.Errorf("expected generic message, got: %s", msg)
	}
}

func fileHeader(contentType string, size int64) *multipart.FileHeader {
	h := &multipart.FileHeader{Filename: "icon", Size: size, Header: make(textproto.MIMEHeader)}
	h.Header.Set("Content-Type", contentType)
	return h
}

func TestValidateFileUpload(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/svg+xml"} {
		if err := ValidateFileUpload(fileHeader(ct, 1024)); err != nil {
			t.Errorf("expected no error for content type %s, got: %v", ct, err)
		}
	}

	err := ValidateFileUpload(fileHeader("image/png", 2<<20))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("expected size error, got: %v", err)
	}

	err = ValidateFileUpload(fileHeader("application/pdf", 1024))
	if err == nil || !strings.Contains(err.Error(), "invalid file type") {
		t.Errorf("expected content type error, got: %v", err)
	}
}
