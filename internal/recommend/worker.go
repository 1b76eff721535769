// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrWorkerStopped is returned by Submit after the worker has exited.
var ErrWorkerStopped = errors.New("learning worker stopped")

// Worker serializes Learn calls through a single goroutine reading a job
// channel. Any number of goroutines may Submit; learning never overlaps.
//
// Worker implements suture.Service through Serve.
type Worker struct {
	engine *Engine
	jobs   chan learnJob
	done   chan struct{}
	logger zerolog.Logger

	running   atomic.Bool
	processed atomic.Int64
}

type learnJob struct {
	input  LearnInput
	result chan LearnStats
}

// NewWorker creates a worker for engine. The queue size comes from the
// engine's Worker config.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWorker(engine *Engine, logger zerolog.Logger) *Worker {
	return &Worker{
		engine: engine,
		jobs:   make(chan learnJob, engine.config.Worker.QueueSize),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "learn-worker").Logger(),
	}
}

// Serve consumes learn jobs until ctx is cancelled.
// Serve must not be called more than once.
func (w *Worker) Serve(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("learning worker already running")
	}
	defer close(w.done)

	w.logger.Debug().Msg("learning worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Int64("processed", w.processed.Load()).Msg("learning worker stopping")
			return ctx.Err()

		case job := <-w.jobs:
			stats := w.engine.Learn(job.input)
			w.processed.Add(1)
			// result is buffered so an abandoned Submit never blocks the worker.
			job.result <- stats
		}
	}
}

// Submit queues a learn job and waits for it to finish.
func (w *Worker) Submit(ctx context.Context, in LearnInput) (LearnStats, error) {
	job := learnJob{input: in, result: make(chan LearnStats, 1)}

	select {
	case <-ctx.Done():
		return LearnStats{}, fmt.Errorf("submit learn job: %w", ctx.Err())
	case <-w.done:
		return LearnStats{}, ErrWorkerStopped
	case w.jobs <- job:
	}

	select {
	case <-ctx.Done():
		return LearnStats{}, fmt.Errorf("await learn job: %w", ctx.Err())
	case <-w.done:
		// The worker may have finished this job just before exiting.
		select {
		case stats := <-job.result:
			return stats, nil
		default:
			return LearnStats{}, ErrWorkerStopped
		}
	case stats := <-job.result:
		return stats, nil
	}
}

// Processed returns the number of jobs the worker has completed.
func (w *Worker) Processed() int64 {
	return w.processed.Load()
}

// String returns the service name for logging.
func (w *Worker) String() string {
	return "learn-worker"
}
