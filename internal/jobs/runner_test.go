package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestRunner_Every(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	r := New(ctx, zap.NewNop())
	r.Every(10*time.Millisecond, "test_tick", func(context.Context) error {
		if calls.Add(1) == 2 {
			return errors.New("boom")
		}
		return nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if calls.Load() < 3 {
		t.Fatalf("job ran %d times", calls.Load())
	}
	if v := testutil.ToFloat64(jobErrors.WithLabelValues("test_tick")); v != 1 {
		t.Fatalf("job errors = %v, want 1", v)
	}
	if v := testutil.ToFloat64(jobLastSuccess.WithLabelValues("test_tick")); v < float64(time.Now().Add(-time.Minute).Unix()) {
		t.Fatalf("last success = %v", v)
	}
}

func TestRunner_FailingJobLeavesLastSuccessUnset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, zap.NewNop())
	r.run("always_fails", func(context.Context) error { return errors.New("no db") })

	if v := testutil.ToFloat64(jobRuns.WithLabelValues("always_fails")); v != 1 {
		t.Fatalf("runs = %v, want 1", v)
	}
	if v := testutil.ToFloat64(jobLastSuccess.WithLabelValues("always_fails")); v != 0 {
		t.Fatalf("last success = %v, want 0", v)
	}
}
