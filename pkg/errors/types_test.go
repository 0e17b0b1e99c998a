package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNetwork, "connection refused")

	if err.Code != ErrCodeNetwork {
		t.Errorf("code = %s", err.Code)
	}
	if !strings.Contains(err.Error(), "[NETWORK]") {
		t.Errorf("Error() should carry the code: %s", err.Error())
	}
	if err.Retryable {
		t.Error("errors are not retryable by default")
	}
}

func TestWrap(t *testing.T) {
	underlying := fmt.Errorf("dial tcp: refused")
	err := Wrap(underlying, ErrCodeNetwork, "network error")

	if !stderrors.Is(err, underlying) {
		t.Error("wrapped error should unwrap to the underlying error")
	}
	if !strings.Contains(err.Error(), "dial tcp") {
		t.Errorf("Error() should include the cause: %s", err.Error())
	}

	if Wrap(nil, ErrCodeNetwork, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestDisplay(t *testing.T) {
	plain := New(ErrCodeParse, "failed to parse response")
	if plain.Display() != "failed to parse response" {
		t.Errorf("Display() should fall back to the message, got %q", plain.Display())
	}

	friendly := New(ErrCodeAuthRateLimit, "over_email_send_rate_limit").
		WithUserMessage("Too many attempts. Please wait a few minutes before trying again.")
	if friendly.Display() != "Too many attempts. Please wait a few minutes before trying again." {
		t.Errorf("Display() should prefer the user message, got %q", friendly.Display())
	}
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeAPIStatus, "server error").WithContext("status", 429)

	if err.Context["status"] != 429 {
		t.Error("context not recorded")
	}
	if !strings.Contains(err.Error(), "status: 429") {
		t.Errorf("Error() should include context: %s", err.Error())
	}
}

func TestIsCodeAndGetCode(t *testing.T) {
	err := New(ErrCodeAuthCodeExpired, "otp_expired")

	if !IsCode(err, ErrCodeAuthCodeExpired) {
		t.Error("IsCode should match the error's code")
	}
	if IsCode(err, ErrCodeNetwork) {
		t.Error("IsCode should reject other codes")
	}
	if IsCode(nil, ErrCodeNetwork) {
		t.Error("nil error has no code")
	}

	if GetCode(err) != ErrCodeAuthCodeExpired {
		t.Errorf("GetCode = %s", GetCode(err))
	}
	if GetCode(fmt.Errorf("plain")) != ErrCodeInternal {
		t.Error("plain errors map to INTERNAL")
	}
	if GetCode(nil) != "" {
		t.Error("nil error maps to empty code")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(New(ErrCodeNetwork, "x")) {
		t.Error("retryable must be opted into")
	}
	if !IsRetryable(New(ErrCodeNetwork, "x").WithRetryable(true)) {
		t.Error("WithRetryable(true) should mark retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) || IsRetryable(nil) {
		t.Error("plain and nil errors are not retryable")
	}
}
