// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package store

import (
	"fmt"
	"time"
)

// Config holds BadgerDB storage configuration.
//
// Environment Variables:
//   - STORAGE_PATH: Directory for BadgerDB files (default: /data/waypoint)
//   - STORAGE_IN_MEMORY: Keep everything in memory, nothing on disk (default: false)
//   - STORAGE_SYNC_WRITES: Force fsync on every write (default: false)
//   - STORAGE_GC_INTERVAL: Interval between value log GC runs (default: 10m)
type Config struct {
	// Path is the directory where BadgerDB stores its files.
	// Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory runs BadgerDB without touching the filesystem.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites forces fsync after every write.
	SyncWrites bool `koanf:"sync_writes"`

	// Compression enables Snappy block compression.
	Compression bool `koanf:"compression"`

	// GCInterval is the time between value log garbage collection runs.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64 `koanf:"gc_ratio"`

	// CloseTimeout bounds how long Close waits for BadgerDB.
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// DefaultConfig returns production storage settings.
func DefaultConfig() Config {
	return Config{
		Path:         "/data/waypoint",
		SyncWrites:   false,
		Compression:  true,
		GCInterval:   10 * time.Minute,
		GCRatio:      0.5,
		CloseTimeout: 30 * time.Second,
	}
}

// InMemoryConfig returns settings for tests and ephemeral runs.
func InMemoryConfig() Config {
	cfg := DefaultConfig()
	cfg.Path = ""
	cfg.InMemory = true
	cfg.Compression = false
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("storage path is required unless in_memory is set")
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return fmt.Errorf("gc_ratio must be between 0 and 1 exclusive, got %v", c.GCRatio)
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("gc_interval must not be negative")
	}
	if c.CloseTimeout <= 0 {
		return fmt.Errorf("close_timeout must be positive")
	}
	return nil
}
