package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "Unknown error occurred"},
		{"parsing error with body", &RequestError{Kind: KindParsing, Status: 400, RawBody: "Invalid OTP Code"}, "Invalid OTP Code"},
		{"parsing error without body", &RequestError{Kind: KindParsing, Status: 500}, "Request failed"},
		{"http message wins", &RequestError{Kind: KindHTTP, Status: 409, Data: map[string]any{"message": "Already exists", "error": "Conflict"}}, "Already exists"},
		{"http error field", &RequestError{Kind: KindHTTP, Status: 409, Data: map[string]any{"error": "Conflict"}}, "Conflict"},
		{"http without body", &RequestError{Kind: KindHTTP, Status: 502}, "HTTP error 502"},
		{"http with non-object body", &RequestError{Kind: KindHTTP, Status: 400, Data: []any{"x"}}, "HTTP error 400"},
		{"http empty message", &RequestError{Kind: KindHTTP, Status: 404, Data: map[string]any{"message": ""}}, "HTTP error 404"},
		{"custom message", &RequestError{Kind: KindCustom, Message: "OTP send failed"}, "OTP send failed"},
		{"fetch error", &RequestError{Kind: KindFetch, Cause: errors.New("dial tcp: refused")}, "Request failed. Please try again."},
		{"wrapped request error", fmt.Errorf("login: %w", &RequestError{Kind: KindHTTP, Status: 401, Data: map[string]any{"message": "Session expired"}}), "Session expired"},
		{"plain error", errors.New("boom"), "boom"},
		{"blank error", errors.New("  "), "Request failed. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeError(tt.err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
			assert.Equal(t, got, NormalizeError(tt.err))
		})
	}
}

func TestStatusOf(t *testing.T) {
	status, ok := StatusOf(fmt.Errorf("wrap: %w", &RequestError{Kind: KindParsing, Status: 401, RawBody: "expired"}))
	assert.True(t, ok)
	assert.Equal(t, 401, status)

	_, ok = StatusOf(&RequestError{Kind: KindFetch})
	assert.False(t, ok)

	assert.True(t, IsUnauthorized(&RequestError{Kind: KindHTTP, Status: 401}))
	assert.False(t, IsUnauthorized(&RequestError{Kind: KindHTTP, Status: 403}))
}
