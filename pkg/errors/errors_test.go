package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(ErrorTypeAuth, "authentication required", 401)
	want := "auth error (code 401): authentication required"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"typed auth error", New(ErrorTypeAuth, "bad cookie", 401), "auth"},
		{"typed rate limit error", New(ErrorTypeRateLimit, "slow down", 429), "rate_limited"},
		{"wrapped typed error", fmt.Errorf("fetch failed: %w", New(ErrorTypeNotFound, "no such user", 404)), "not_found"},
		{"plain error", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []ErrorType{ErrorTypeNetwork, ErrorTypeServerError}
	for _, et := range retryable {
		if !IsRetryable(et) {
			t.Errorf("Expected %s to be retryable", et)
		}
	}

	final := []ErrorType{ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing, ErrorTypeRateLimit, ErrorTypeUnknown}
	for _, et := range final {
		if IsRetryable(et) {
			t.Errorf("Expected %s not to be retryable", et)
		}
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{0, true},
		{200, false},
		{401, false},
		{404, false},
		{429, false},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}

	for _, tt := range tests {
		if got := IsRetryableStatusCode(tt.code); got != tt.want {
			t.Errorf("IsRetryableStatusCode(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
