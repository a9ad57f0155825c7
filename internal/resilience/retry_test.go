package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	var calls int
	val, err := Do(context.Background(), DefaultRetryConfig(), func(_ context.Context) (string, error) {
		calls++
		return "reply", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "reply" || calls != 1 {
		t.Errorf("got val=%q calls=%d", val, calls)
	}
}

func TestDo_RetriesTransient(t *testing.T) {
	var calls int
	val, err := Do(context.Background(), fastRetry(3), func(_ context.Context) ([]float64, error) {
		calls++
		if calls < 3 {
			return nil, NewTransientError(errors.New("overloaded"), 529)
		}
		return []float64{0.1}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(val) != 1 || calls != 3 {
		t.Errorf("got val=%v calls=%d", val, calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var calls int
	_, err := Do(context.Background(), fastRetry(3), func(_ context.Context) (string, error) {
		calls++
		return "", NewTransientError(errors.New("still down"), 503)
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_NonTransientStopsImmediately(t *testing.T) {
	var calls int
	_, err := Do(context.Background(), fastRetry(3), func(_ context.Context) (string, error) {
		calls++
		return "", errors.New("invalid api key")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call for non-transient error, got %d", calls)
	}
}

func TestDo_ContextCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	_, err := Do(ctx, fastRetry(5), func(_ context.Context) (string, error) {
		calls++
		cancel()
		return "", NewTransientError(errors.New("slow"), 500)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call after cancellation, got %d", calls)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit transient", NewTransientError(errors.New("x"), 429), true},
		{"rate limit text", errors.New("anthropic: rate limit exceeded"), true},
		{"overloaded text", errors.New("api error: Overloaded"), true},
		{"permanent", errors.New("model not found"), false},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Errorf("%s: IsTransient = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be transient", code)
		}
	}
	for _, code := range []int{200, 400, 401, 404} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be permanent", code)
		}
	}
}
