package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		Attempts:  attempts,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
		Factor:    2,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoReturnsLastError(t *testing.T) {
	errLast := errors.New("still broken")
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return errLast
	})
	if !errors.Is(err, errLast) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected attempt budget spent, got %d calls", calls)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastConfig(10), func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no attempts after cancel, got %d", calls)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "value", nil
	})
	if err != nil {
		t.Fatalf("DoWithResult: %v", err)
	}
	if got != "value" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestDelayForIsBoundedAndGrows(t *testing.T) {
	cfg := Config{
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  time.Second,
		Factor:    2,
	}

	if d := cfg.delayFor(1); d != 100*time.Millisecond {
		t.Fatalf("first delay: got %v", d)
	}
	if d := cfg.delayFor(2); d != 200*time.Millisecond {
		t.Fatalf("second delay: got %v", d)
	}
	if d := cfg.delayFor(10); d != time.Second {
		t.Fatalf("delay must cap at MaxDelay, got %v", d)
	}
}

func TestDelayForJitterStaysNonNegative(t *testing.T) {
	cfg := Config{
		BaseDelay: time.Millisecond,
		MaxDelay:  time.Second,
		Factor:    2,
		Jitter:    1.0,
	}
	for i := 0; i < 100; i++ {
		if d := cfg.delayFor(1); d < 0 {
			t.Fatalf("negative delay %v", d)
		}
	}
}
