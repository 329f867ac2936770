package repository

import (
	"context"
	"errors"
	"testing"
)

func TestRetryOnConflict(t *testing.T) {
	t.Run("retries conflicts up to the limit", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), func() error {
			calls++
			return ErrConflict
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if calls != MaxAttempts {
			t.Errorf("expected %d attempts, got %d", MaxAttempts, calls)
		}
	})

	t.Run("stops after success", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), func() error {
			calls++
			if calls == 1 {
				return ErrConflict
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 attempts, got %d", calls)
		}
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), func() error {
			calls++
			return ErrInsufficientBalance
		})
		if !errors.Is(err, ErrInsufficientBalance) || calls != 1 {
			t.Errorf("got err=%v after %d calls", err, calls)
		}
	})
}

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: 20, -5: 20, 7: 7, 100: 100, 500: 100}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
