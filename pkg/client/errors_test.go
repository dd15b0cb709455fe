package client

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRequestError_Error(t *testing.T) {
	reqErr := &RequestError{
		Domain:     "myvariant",
		StatusCode: 503,
		ErrorClass: ErrorClassServer,
		Message:    "503 Service Unavailable",
	}

	msg := reqErr.Error()
	for _, want := range []string{"myvariant", "server", "503"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestRequestError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	reqErr := &RequestError{
		Domain:     "oncokb",
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        inner,
	}

	if !errors.Is(reqErr, inner) {
		t.Error("errors.Is() should find the wrapped error")
	}
	if !strings.Contains(reqErr.Error(), "connection refused") {
		t.Errorf("Error() = %q, missing wrapped message", reqErr.Error())
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := &RequestError{Domain: "myvariant", StatusCode: 404, ErrorClass: ErrorClassClient}
	wrapped := fmt.Errorf("get variant: %w", notFound)

	if !IsNotFound(notFound) {
		t.Error("IsNotFound(404) = false")
	}
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound(wrapped 404) = false")
	}
	if IsNotFound(&RequestError{StatusCode: 500, ErrorClass: ErrorClassServer}) {
		t.Error("IsNotFound(500) = true")
	}
	if IsNotFound(errors.New("plain error")) {
		t.Error("IsNotFound(plain) = true")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{
			name: "request error",
			err:  &RequestError{ErrorClass: ErrorClassRateLimit},
			want: ErrorClassRateLimit,
		},
		{
			name: "wrapped request error",
			err:  fmt.Errorf("attempt: %w", &RequestError{ErrorClass: ErrorClassServer}),
			want: ErrorClassServer,
		},
		{
			name: "plain error",
			err:  errors.New("dial tcp: timeout"),
			want: ErrorClassNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{ErrorClass("unknown"), false},
	}

	for _, tt := range tests {
		if got := shouldRetry(tt.class); got != tt.want {
			t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}
