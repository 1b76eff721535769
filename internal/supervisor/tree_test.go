// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*MockService)(nil)

func testSlogLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// waitStarted waits until every service has run at least once.
func waitStarted(t *testing.T, svcs ...*MockService) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		all := true
		for _, s := range svcs {
			if s.StartCount() < 1 {
				all = false
				break
			}
		}
		if all {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	for _, s := range svcs {
		if s.StartCount() < 1 {
			t.Errorf("service %s was not started", s)
		}
	}
}

// --- Test: construction ---

func TestNewSupervisorTree(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults for zero config", func(t *testing.T) {
		t.Parallel()
		tree, err := NewSupervisorTree(testSlogLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("NewSupervisorTree: %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}
		if got, want := tree.Config(), DefaultTreeConfig(); got != want {
			t.Errorf("config = %+v, want %+v", got, want)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		t.Parallel()
		tree, err := NewSupervisorTree(testSlogLogger(), TreeConfig{
			FailureThreshold: 3,
			FailureBackoff:   time.Second,
		})
		if err != nil {
			t.Fatalf("NewSupervisorTree: %v", err)
		}
		cfg := tree.Config()
		if cfg.FailureThreshold != 3 || cfg.FailureBackoff != time.Second {
			t.Errorf("config = %+v", cfg)
		}
		if cfg.FailureDecay != 30 {
			t.Errorf("FailureDecay = %v, want default 30", cfg.FailureDecay)
		}
	})

	t.Run("rejects nil logger", func(t *testing.T) {
		t.Parallel()
		if _, err := NewSupervisorTree(nil, TreeConfig{}); err == nil {
			t.Error("expected error for nil logger")
		}
	})

	t.Run("rejects negative values", func(t *testing.T) {
		t.Parallel()
		if _, err := NewSupervisorTree(testSlogLogger(), TreeConfig{FailureBackoff: -time.Second}); err == nil {
			t.Error("expected error for negative backoff")
		}
	})
}

func TestTreeConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*TreeConfig)
		wantErr bool
	}{
		{"defaults", func(*TreeConfig) {}, false},
		{"zero is allowed", func(c *TreeConfig) { *c = TreeConfig{} }, false},
		{"negative threshold", func(c *TreeConfig) { c.FailureThreshold = -1 }, true},
		{"negative decay", func(c *TreeConfig) { c.FailureDecay = -1 }, true},
		{"negative shutdown timeout", func(c *TreeConfig) { c.ShutdownTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultTreeConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// --- Test: lifecycle ---

func TestSupervisorTree_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("starts services in every layer and stops on cancel", func(t *testing.T) {
		t.Parallel()
		tree, err := NewSupervisorTree(testSlogLogger(), TreeConfig{
			FailureBackoff:  100 * time.Millisecond,
			ShutdownTimeout: time.Second,
		})
		if err != nil {
			t.Fatalf("NewSupervisorTree: %v", err)
		}

		maintenance := NewMockService("maintenance")
		consumer := NewMockService("event-consumer")
		passes := NewMockService("notification-pass")
		httpSvc := NewMockService("http-server")
		tree.AddDataService(maintenance)
		tree.AddMessagingService(consumer)
		tree.AddMessagingService(passes)
		tree.AddAPIService(httpSvc)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := tree.ServeBackground(ctx)

		waitStarted(t, maintenance, consumer, passes, httpSvc)
		cancel()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("tree did not shut down in time")
		}

		for _, s := range []*MockService{maintenance, consumer, passes, httpSvc} {
			if s.StopCount() != s.StartCount() {
				t.Errorf("%s: %d starts, %d stops", s, s.StartCount(), s.StopCount())
			}
		}
	})

	t.Run("empty tree stops at deadline", func(t *testing.T) {
		t.Parallel()
		tree, _ := NewSupervisorTree(testSlogLogger(), TreeConfig{ShutdownTimeout: 500 * time.Millisecond})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		select {
		case err := <-tree.ServeBackground(ctx):
			if err != nil && !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("tree did not shut down")
		}
	})
}

// --- Test: failure isolation ---

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testSlogLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  500 * time.Millisecond,
	})

	failing := NewMockService("learning-pass")
	failing.SetFailCount(3)
	stableData := NewMockService("maintenance")
	stableAPI := NewMockService("http-server")

	tree.AddDataService(stableData)
	tree.AddMessagingService(failing)
	tree.AddAPIService(stableAPI)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for failing.StartCount() < 4 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if failing.StartCount() < 4 {
		t.Errorf("failing service should restart past its failures, got %d starts", failing.StartCount())
	}
	waitStarted(t, stableData, stableAPI)
	if stableData.StartCount() != 1 || stableAPI.StartCount() != 1 {
		t.Errorf("stable services restarted: data=%d api=%d", stableData.StartCount(), stableAPI.StartCount())
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Error("tree did not shut down")
	}
}

func TestSupervisorTree_RemoveMessagingService(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testSlogLogger(), TreeConfig{ShutdownTimeout: 500 * time.Millisecond})
	svc := NewMockService("transport")
	token := tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitStarted(t, svc)
	if err := tree.RemoveMessagingService(token); err != nil {
		t.Fatalf("RemoveMessagingService: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for svc.StopCount() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if svc.StopCount() < 1 {
		t.Error("removed service was not stopped")
	}

	cancel()
	<-errCh
}

// --- Test: MockService ---

func TestMockService(t *testing.T) {
	t.Parallel()

	t.Run("runs until context canceled", func(t *testing.T) {
		t.Parallel()
		svc := NewMockService("test")
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
		if svc.StartCount() != 1 || svc.StopCount() != 1 {
			t.Errorf("starts=%d stops=%d, want 1/1", svc.StartCount(), svc.StopCount())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		t.Parallel()
		svc := NewMockService("one-shot")
		svc.SetError(suture.ErrDoNotRestart)
		if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("expected ErrDoNotRestart, got %v", err)
		}
	})

	t.Run("fails n times then runs", func(t *testing.T) {
		t.Parallel()
		svc := NewMockService("flaky")
		svc.SetFailCount(2)
		for i := 0; i < 2; i++ {
			if err := svc.Serve(context.Background()); !errors.Is(err, errSimulated) {
				t.Fatalf("call %d: expected simulated failure, got %v", i, err)
			}
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("third call: expected context.Canceled, got %v", err)
		}
	})
}
