package client

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiErr   *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiErr: &APIError{
				Class:   ErrorClassNetwork,
				Message: "network request failed",
				Err:     io.EOF,
			},
			expected: "storefront network error (status 0): network request failed: EOF",
		},
		{
			name: "error without wrapped error",
			apiErr: &APIError{
				StatusCode: 404,
				Class:      ErrorClassClient,
				Message:    "Order not found",
			},
			expected: "storefront client error (status 404): Order not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.apiErr.Error())
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	apiErr := &APIError{Class: ErrorClassNetwork, Err: io.ErrUnexpectedEOF}
	wrapped := fmt.Errorf("get cart: %w", apiErr)

	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))

	got, ok := AsAPIError(wrapped)
	assert.True(t, ok)
	assert.Same(t, apiErr, got)
	assert.Equal(t, 0, StatusOf(wrapped))
	assert.Equal(t, 0, StatusOf(errors.New("plain")))
}

func TestAPIError_Predicates(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 401}).IsUnauthorized())
	assert.True(t, (&APIError{StatusCode: 403}).IsUnauthorized())
	assert.False(t, (&APIError{StatusCode: 404}).IsUnauthorized())
	assert.True(t, (&APIError{StatusCode: 404}).IsNotFound())
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorClass
	}{
		{400, ErrorClassClient},
		{401, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassClient},
		{500, ErrorClassServer},
		{502, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyStatus(tt.status))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"detail field", 404, `{"detail": "Order not found"}`, "Order not found"},
		{"error field", 400, `{"error": "Cart is empty"}`, "Cart is empty"},
		{"message field", 400, `{"message": "Invalid promo"}`, "Invalid promo"},
		{"field errors", 400, `{"password": ["too short", "too common"], "email": ["taken"]}`, "email: taken"},
		{"empty body", 500, ``, "Internal Server Error"},
		{"html body", 502, `<html>bad gateway</html>`, "Bad Gateway"},
		{"unknown status", 599, ``, "HTTP 599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errorMessage(tt.status, []byte(tt.body)))
		})
	}
}
