package uow_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/radieske/bet-exchange-core/internal/engine/uow"
)

func TestBestEffort_RunsFn(t *testing.T) {
	r := uow.NewBestEffort(nil, zap.NewNop())

	ran := false
	err := r.Do(context.Background(), func(_ context.Context, tx uow.DBTX) error {
		ran = true
		if tx != nil {
			t.Error("best-effort over nil db should pass nil tx")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("fn was not executed")
	}
}

func TestBestEffort_PropagatesError(t *testing.T) {
	r := uow.NewBestEffort(nil, zap.NewNop())

	boom := errors.New("boom")
	err := r.Do(context.Background(), func(context.Context, uow.DBTX) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}

func TestBestEffort_WarnsOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := uow.NewBestEffort(nil, zap.New(core))

	for i := 0; i < 3; i++ {
		_ = r.Do(context.Background(), func(context.Context, uow.DBTX) error { return nil })
	}
	if got := logs.Len(); got != 1 {
		t.Errorf("warning emitted %d times, want exactly once", got)
	}
}
