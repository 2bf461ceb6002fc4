package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRun(t *testing.T) {
	jobs := []string{"a", "b", "c"}
	out := make([]string, len(jobs))

	var called int32
	errs := Run(context.Background(), jobs, 2, func(_ context.Context, i int, job string) error {
		atomic.AddInt32(&called, 1)
		if i == 1 {
			return errors.New("test error")
		}
		out[i] = job + job
		return nil
	})

	if called != int32(len(jobs)) {
		t.Fatalf("expected %d calls, got %d", len(jobs), called)
	}
	if len(errs) != len(jobs) {
		t.Fatalf("expected %d error slots, got %d", len(jobs), len(errs))
	}
	if errs[0] != nil || errs[1] == nil || errs[2] != nil {
		t.Fatalf("unexpected error layout: %v", errs)
	}
	if out[0] != "aa" || out[2] != "cc" {
		t.Fatalf("unexpected results: %v", out)
	}
	if FirstError(errs) != errs[1] {
		t.Fatalf("FirstError should return the failing job's error")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called int32
	errs := Run(ctx, []int{1, 2, 3}, 1, func(context.Context, int, int) error {
		atomic.AddInt32(&called, 1)
		return nil
	})
	if called != 0 {
		t.Fatalf("expected no calls after cancel, got %d", called)
	}
	for i, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("job %d: expected context.Canceled, got %v", i, err)
		}
	}
}

func TestRunEmpty(t *testing.T) {
	if errs := Run[int](context.Background(), nil, 4, func(context.Context, int, int) error { return nil }); errs != nil {
		t.Fatalf("expected nil for no jobs, got %v", errs)
	}
}
