package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", config.MaxAttempts)
	}
	if config.InitialBackoff != 1*time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", config.InitialBackoff)
	}
	if config.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", config.BackoffMultiplier)
	}
}

func TestRetryConfigForErrorClass(t *testing.T) {
	tests := []struct {
		class           ErrorClass
		expectedInitial time.Duration
		expectedMax     time.Duration
	}{
		{ErrorClassServer, 1 * time.Second, 10 * time.Second},
		{ErrorClassRateLimit, 5 * time.Second, 60 * time.Second},
		{ErrorClassNetwork, 2 * time.Second, 30 * time.Second},
		{ErrorClassClient, 1 * time.Second, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			config := RetryConfigForErrorClass(tt.class)
			if config.InitialBackoff != tt.expectedInitial {
				t.Errorf("InitialBackoff = %v, want %v", config.InitialBackoff, tt.expectedInitial)
			}
			if config.MaxBackoff != tt.expectedMax {
				t.Errorf("MaxBackoff = %v, want %v", config.MaxBackoff, tt.expectedMax)
			}
		})
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), zerolog.Nop(), 3, func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("retryWithBackoff() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), zerolog.Nop(), 3, func() error {
		calls++
		if calls < 2 {
			return &RequestError{ErrorClass: ErrorClassServer, StatusCode: 500, Message: "boom"}
		}
		return nil
	})

	if err != nil {
		t.Errorf("retryWithBackoff() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryWithBackoff_ClientErrorNoRetry(t *testing.T) {
	calls := 0
	reqErr := &RequestError{ErrorClass: ErrorClassClient, StatusCode: 404, Message: "not found"}
	err := retryWithBackoff(context.Background(), zerolog.Nop(), 3, func() error {
		calls++
		return reqErr
	})

	if !errors.Is(err, reqErr) {
		t.Errorf("error = %v, want the original request error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry for client errors)", calls)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), zerolog.Nop(), 2, func() error {
		calls++
		return &RequestError{ErrorClass: ErrorClassServer, StatusCode: 502, Message: "bad gateway"}
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- retryWithBackoff(ctx, zerolog.Nop(), 3, func() error {
			calls++
			return &RequestError{ErrorClass: ErrorClassServer, StatusCode: 500, Message: "boom"}
		})
	}()

	// Cancel while the first backoff is sleeping.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrContextCancelled) {
			t.Errorf("error = %v, want ErrContextCancelled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("retryWithBackoff did not return after cancellation")
	}

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_ZeroMaxUsesDefault(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), zerolog.Nop(), 0, func() error {
		calls++
		return &RequestError{ErrorClass: ErrorClassClient, StatusCode: 400, Message: "bad request"}
	})

	if err == nil {
		t.Error("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
