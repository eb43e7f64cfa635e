package shutdown

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"manimrunner/internal/pkg/logger"
)

func newTestManager(timeout time.Duration) *Manager {
	log := logger.New(logger.Config{Level: "error", Format: "json", Output: &bytes.Buffer{}})
	return NewManager(log, timeout)
}

func TestShutdownRunsHandlers(t *testing.T) {
	m := newTestManager(time.Second)

	var ran atomic.Int32
	m.Register("first", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	m.Register("second", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	m.Shutdown()

	if ran.Load() != 2 {
		t.Errorf("expected 2 handlers to run, got %d", ran.Load())
	}

	select {
	case <-m.Done():
	default:
		t.Error("Done channel should be closed after Shutdown")
	}
}

func TestShutdownHandlerErrorDoesNotBlockOthers(t *testing.T) {
	m := newTestManager(time.Second)

	var ran atomic.Int32
	m.Register("failing", func(ctx context.Context) error {
		return errors.New("cleanup failed")
	})
	m.Register("ok", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	m.Shutdown()

	if ran.Load() != 1 {
		t.Error("healthy handler should run despite a failing one")
	}
}

func TestShutdownTimeout(t *testing.T) {
	m := newTestManager(50 * time.Millisecond)

	m.Register("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
		}
		return nil
	})

	start := time.Now()
	m.Shutdown()

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("shutdown should respect the timeout, took %s", elapsed)
	}
}

func TestZeroTimeoutDefaults(t *testing.T) {
	m := newTestManager(0)
	if m.timeout != 30*time.Second {
		t.Errorf("expected default timeout of 30s, got %s", m.timeout)
	}
}
