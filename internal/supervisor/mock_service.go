// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// errSimulated is returned by MockService while it is failing.
var errSimulated = errors.New("simulated failure")

// MockService is a test helper that implements suture.Service.
//
// Tests use it to stand in for the real layer services (maintenance,
// event consumer, pass loops, HTTP server) and to check how the tree
// starts, restarts and stops them. Behavior, in order of precedence:
//
//  1. While SetFailCount has failures left, Serve returns errSimulated
//  2. If SetError was called, Serve returns that error immediately
//  3. Otherwise Serve blocks until its context ends
//
// StartCount and StopCount are safe to poll from the test goroutine.
type MockService struct {
	name       string
	startCount atomic.Int32
	stopCount  atomic.Int32
	failCount  atomic.Int32

	mu       sync.Mutex
	maxFails int32
	err      error
}

// NewMockService creates a mock service that runs until canceled. name is
// what suture prints in its event log.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// Serve implements suture.Service.
// The signature matches suture v4's Service interface:
// Serve(ctx context.Context) error
func (m *MockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	defer m.stopCount.Add(1)

	m.mu.Lock()
	err := m.err
	maxFails := m.maxFails
	m.mu.Unlock()

	// Fail the first maxFails calls, then behave normally.
	if maxFails > 0 && m.failCount.Add(1) <= maxFails {
		return errSimulated
	}
	if err != nil {
		return err
	}

	// Run until the supervisor cancels us.
	<-ctx.Done()
	return ctx.Err()
}

// SetError makes Serve return err immediately.
func (m *MockService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetFailCount makes the first n calls to Serve fail. Combined with a
// short FailureBackoff it drives the tree through several restarts.
func (m *MockService) SetFailCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxFails = int32(n)
}

// StartCount returns how many times Serve was called.
func (m *MockService) StartCount() int32 {
	return m.startCount.Load()
}

// StopCount returns how many times Serve returned.
func (m *MockService) StopCount() int32 {
	return m.stopCount.Load()
}

// String implements fmt.Stringer. Suture uses it in log messages.
func (m *MockService) String() string {
	return m.name
}
