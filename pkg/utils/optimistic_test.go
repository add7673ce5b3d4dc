package utils

import (
	"context"
	"errors"
	"testing"
)

func TestOptimistic_KeepsChangeOnSuccess(t *testing.T) {
	on := false
	err := Optimistic(context.Background(),
		func() { on = true },
		func(context.Context) error { return nil },
		func() { on = false },
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !on {
		t.Fatalf("expected applied value to stick")
	}
}

func TestOptimistic_RevertsOnFailure(t *testing.T) {
	on := false
	boom := errors.New("boom")
	seenDuringAttempt := false
	err := Optimistic(context.Background(),
		func() { on = true },
		func(context.Context) error { seenDuringAttempt = on; return boom },
		func() { on = false },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !seenDuringAttempt {
		t.Fatalf("expected change applied before attempt")
	}
	if on {
		t.Fatalf("expected revert")
	}
}

func TestOptimistic_RevertsOnPanic(t *testing.T) {
	on := false
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic to propagate")
		}
		if on {
			t.Fatalf("expected revert before panic propagates")
		}
	}()
	_ = Optimistic(context.Background(),
		func() { on = true },
		func(context.Context) error { panic("x") },
		func() { on = false },
	)
}
