// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/waypoint/internal/clock"
	"github.com/tomtom215/waypoint/internal/cron"
	"github.com/tomtom215/waypoint/internal/models"
)

var (
	_ suture.Service = (*LearningService)(nil)
	_ suture.Service = (*NotificationPassService)(nil)
	_ suture.Service = (*MaintenanceService)(nil)
)

var errBoom = errors.New("boom")

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// mockRunner counts calls to every pass the services drive.
type mockRunner struct {
	learnCalls   atomic.Int32
	passCalls    atomic.Int32
	cleanupCalls atomic.Int32
	dueCalls     atomic.Int32
	gcCalls      atomic.Int32
	err          error
}

func (m *mockRunner) RunLearningAndRecommendationPass(context.Context) (models.Insights, error) {
	m.learnCalls.Add(1)
	return models.Insights{TotalVisits: 3}, m.err
}

func (m *mockRunner) GenerateAndScheduleNotifications(context.Context) error {
	m.passCalls.Add(1)
	return m.err
}

func (m *mockRunner) CleanupOldNotifications(context.Context) (int, error) {
	m.cleanupCalls.Add(1)
	return 0, m.err
}

func (m *mockRunner) ProcessDueNotifications(context.Context) (int, error) {
	m.dueCalls.Add(1)
	return 0, m.err
}

func (m *mockRunner) RunGC() error {
	m.gcCalls.Add(1)
	return m.err
}

// eventually polls cond until it holds or a second passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("timed out waiting for %s", what)
}

// --- Test: LearningService ---

func TestLearningService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewLearningService(&mockRunner{}, LearningServiceConfig{}, testLogger())
	if svc.config.Interval != time.Hour {
		t.Errorf("Interval = %v, want 1h", svc.config.Interval)
	}
	if svc.config.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v, want 5m", svc.config.Timeout)
	}
	if svc.String() != "learning-pass" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestLearningService_Serve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		runOnStartup bool
		interval     time.Duration
		err          error
		wantAtLeast  int32
		wantExactly  int32
	}{
		{name: "runs on startup", runOnStartup: true, interval: time.Hour, wantExactly: 1},
		{name: "waits for first tick", interval: time.Hour, wantExactly: 0},
		{name: "runs on every tick", interval: 10 * time.Millisecond, wantAtLeast: 2},
		{name: "keeps running after failures", interval: 10 * time.Millisecond, err: errBoom, wantAtLeast: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runner := &mockRunner{err: tt.err}
			svc := NewLearningService(runner, LearningServiceConfig{
				RunOnStartup: tt.runOnStartup,
				Interval:     tt.interval,
			}, testLogger())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
			}

			got := runner.learnCalls.Load()
			if tt.wantAtLeast > 0 && got < tt.wantAtLeast {
				t.Errorf("passes = %d, want at least %d", got, tt.wantAtLeast)
			}
			if tt.wantAtLeast == 0 && got != tt.wantExactly {
				t.Errorf("passes = %d, want %d", got, tt.wantExactly)
			}
		})
	}
}

// --- Test: NotificationPassService ---

func TestNewNotificationPassService_Validation(t *testing.T) {
	t.Parallel()

	sched := cron.MustParse("0 * * * *")
	clk := clock.NewFixed(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))

	if _, err := NewNotificationPassService(nil, NotificationPassServiceConfig{Schedule: sched}, clk, testLogger()); err == nil {
		t.Error("expected error for nil runner")
	}
	if _, err := NewNotificationPassService(&mockRunner{}, NotificationPassServiceConfig{}, clk, testLogger()); err == nil {
		t.Error("expected error for nil schedule")
	}
	if _, err := NewNotificationPassService(&mockRunner{}, NotificationPassServiceConfig{Schedule: sched}, nil, testLogger()); err == nil {
		t.Error("expected error for nil clock")
	}

	svc, err := NewNotificationPassService(&mockRunner{}, NotificationPassServiceConfig{Schedule: sched}, clk, testLogger())
	if err != nil {
		t.Fatalf("NewNotificationPassService: %v", err)
	}
	if svc.config.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", svc.config.Timeout)
	}
	if svc.String() != "notification-pass" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestNotificationPassService_NextDelay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 12, 20, 30, 0, time.UTC)
	tests := []struct {
		expr     string
		wantWait time.Duration
	}{
		{"0 * * * *", 39*time.Minute + 30*time.Second},
		{"*/15 * * * *", 9*time.Minute + 30*time.Second},
		{"0 9 * * *", 20*time.Hour + 39*time.Minute + 30*time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			svc, err := NewNotificationPassService(&mockRunner{},
				NotificationPassServiceConfig{Schedule: cron.MustParse(tt.expr)},
				clock.NewFixed(now), testLogger())
			if err != nil {
				t.Fatalf("NewNotificationPassService: %v", err)
			}
			wait, next, err := svc.nextDelay()
			if err != nil {
				t.Fatalf("nextDelay: %v", err)
			}
			if wait != tt.wantWait {
				t.Errorf("wait = %v, want %v", wait, tt.wantWait)
			}
			if !next.Equal(now.Add(tt.wantWait)) {
				t.Errorf("next = %v, want %v", next, now.Add(tt.wantWait))
			}
		})
	}
}

func TestNotificationPassService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("runs on startup then waits", func(t *testing.T) {
		t.Parallel()
		runner := &mockRunner{}
		svc, _ := NewNotificationPassService(runner, NotificationPassServiceConfig{
			Schedule:     cron.MustParse("0 0 1 1 *"),
			RunOnStartup: true,
		}, clock.NewReal(time.UTC), testLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
		}
		if got := runner.passCalls.Load(); got != 1 {
			t.Errorf("passes = %d, want 1", got)
		}
	})

	t.Run("failed startup pass does not stop the loop", func(t *testing.T) {
		t.Parallel()
		runner := &mockRunner{err: errBoom}
		svc, _ := NewNotificationPassService(runner, NotificationPassServiceConfig{
			Schedule:     cron.MustParse("0 0 1 1 *"),
			RunOnStartup: true,
		}, clock.NewReal(time.UTC), testLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("schedule that never fires is not restarted", func(t *testing.T) {
		t.Parallel()
		svc, _ := NewNotificationPassService(&mockRunner{}, NotificationPassServiceConfig{
			Schedule: cron.MustParse("0 0 30 2 *"),
		}, clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), testLogger())

		err := svc.Serve(context.Background())
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
		}
		if !errors.Is(err, ErrScheduleNeverFires) {
			t.Errorf("Serve() = %v, want ErrScheduleNeverFires", err)
		}
	})
}

// --- Test: MaintenanceService ---

func TestMaintenanceService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewMaintenanceService(&mockRunner{}, nil, MaintenanceServiceConfig{}, testLogger())
	if svc.config.DueInterval != time.Minute || svc.config.CleanupInterval != time.Hour || svc.config.GCInterval != 10*time.Minute {
		t.Errorf("config = %+v", svc.config)
	}
	if svc.String() != "maintenance" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestMaintenanceService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("processes due records at startup", func(t *testing.T) {
		t.Parallel()
		runner := &mockRunner{}
		svc := NewMaintenanceService(runner, runner, MaintenanceServiceConfig{
			DueInterval:     time.Hour,
			CleanupInterval: time.Hour,
			GCInterval:      time.Hour,
		}, testLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_ = svc.Serve(ctx)

		if got := runner.dueCalls.Load(); got != 1 {
			t.Errorf("due passes = %d, want 1", got)
		}
		if got := runner.cleanupCalls.Load(); got != 0 {
			t.Errorf("cleanup passes = %d, want 0", got)
		}
	})

	t.Run("cleanup and gc run on their own tickers", func(t *testing.T) {
		t.Parallel()
		runner := &mockRunner{}
		svc := NewMaintenanceService(runner, runner, MaintenanceServiceConfig{
			DueInterval:     time.Hour,
			CleanupInterval: 10 * time.Millisecond,
			GCInterval:      15 * time.Millisecond,
		}, testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		eventually(t, "two cleanup and gc passes", func() bool {
			return runner.cleanupCalls.Load() >= 2 && runner.gcCalls.Load() >= 2
		})
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if got := runner.dueCalls.Load(); got != 1 {
			t.Errorf("due passes = %d, want 1", got)
		}
	})

	t.Run("nil collector and failures are tolerated", func(t *testing.T) {
		t.Parallel()
		runner := &mockRunner{err: errBoom}
		svc := NewMaintenanceService(runner, nil, MaintenanceServiceConfig{
			DueInterval:     10 * time.Millisecond,
			CleanupInterval: 10 * time.Millisecond,
			GCInterval:      10 * time.Millisecond,
		}, testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		eventually(t, "repeated passes", func() bool {
			return runner.dueCalls.Load() >= 2 && runner.cleanupCalls.Load() >= 2
		})
		cancel()
		<-done
		if runner.gcCalls.Load() != 0 {
			t.Errorf("gc should not run without a collector")
		}
	})
}
