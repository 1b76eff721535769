// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/metrics"
)

var (
	// ErrNotFound is returned when a keyed record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrClosed is returned for operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// Key prefixes. Time-ordered prefixes are followed by a zero-padded
// nanosecond timestamp so lexical order is chronological.
const (
	prefixPlace    = "place:"
	prefixFavorite = "fav:"
	prefixSearch   = "search:"
	prefixNotif    = "notif:"
	prefixEngage   = "engage:"
	prefixFeed     = "feed:"
	keyPolicy      = "policy"
)

// Store persists the place catalog, notification policy, notification
// records, the in-app feed and the engagement log in BadgerDB.
type Store struct {
	db     *badger.DB
	config Config
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the BadgerDB database described by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	} else {
		opts.Compression = options.None
	}

	// Badger's own logger is too chatty at INFO.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		config: cfg,
		logger: logger.With().Str("component", "store").Logger(),
	}

	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Store opened")
	return s, nil
}

// Close shuts down the database, giving up after CloseTimeout.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	timeout := s.config.CloseTimeout
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		s.logger.Info().Msg("Store closed")
		return nil
	case <-time.After(timeout):
		s.logger.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}

// RunGC runs value log garbage collection until nothing is left to rewrite.
// It is a no-op for in-memory stores.
func (s *Store) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.config.InMemory {
		return nil
	}

	start := time.Now()
	var err error
	for {
		err = s.db.RunValueLogGC(s.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			err = nil
			break
		}
		if err != nil {
			err = fmt.Errorf("run GC: %w", err)
			break
		}
	}
	metrics.RecordStoreOperation("gc", "all", time.Since(start), err)
	return err
}

// GCInterval returns the configured garbage collection interval.
func (s *Store) GCInterval() time.Duration {
	return s.config.GCInterval
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// timeKey builds a chronologically sortable key under prefix.
func timeKey(prefix string, t time.Time, id string) []byte {
	ns := t.UnixNano()
	if ns < 0 {
		ns = 0
	}
	return []byte(fmt.Sprintf("%s%020d:%s", prefix, ns, id))
}

// put marshals v and stores it under key.
func (s *Store) put(op, bucket string, key []byte, v any) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	start := time.Now()

	data, err := json.Marshal(v)
	if err != nil {
		err = fmt.Errorf("marshal %s: %w", bucket, err)
		metrics.RecordStoreOperation(op, bucket, time.Since(start), err)
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		err = fmt.Errorf("set %s: %w", bucket, err)
	}
	metrics.RecordStoreOperation(op, bucket, time.Since(start), err)
	return err
}

// get loads the value at key into v, returning ErrNotFound when absent.
func (s *Store) get(op, bucket string, key []byte, v any) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	start := time.Now()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", bucket, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})

	recordErr := err
	if errors.Is(err, ErrNotFound) {
		recordErr = nil
	}
	metrics.RecordStoreOperation(op, bucket, time.Since(start), recordErr)
	return err
}

// del removes key. Missing keys are not an error.
func (s *Store) del(op, bucket string, key []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		err = fmt.Errorf("delete %s: %w", bucket, err)
	}
	metrics.RecordStoreOperation(op, bucket, time.Since(start), err)
	return err
}

// scanOptions controls a prefix scan.
type scanOptions struct {
	reverse bool
	limit   int
}

// scan decodes every value under prefix into a T and passes it to fn
// together with its key. Iteration stops when fn returns false or the
// limit is reached. Values that fail to decode are skipped and logged.
func scan[T any](s *Store, op, bucket, prefix string, so scanOptions, fn func(key []byte, v *T) bool) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	start := time.Now()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Reverse = so.reverse
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte(prefix)
		if so.reverse {
			seek = append([]byte(prefix), 0xFF)
		}

		n := 0
		for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			var v T
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				s.logger.Warn().Err(err).Str("key", string(key)).Msg("Skipping undecodable record")
				continue
			}

			n++
			if !fn(key, &v) {
				return nil
			}
			if so.limit > 0 && n >= so.limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("scan %s: %w", bucket, err)
	}
	metrics.RecordStoreOperation(op, bucket, time.Since(start), err)
	return err
}

// deleteKeys removes keys in batches.
func (s *Store) deleteKeys(op, bucket string, keys [][]byte) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			err = fmt.Errorf("batch delete %s: %w", bucket, err)
			metrics.RecordStoreOperation(op, bucket, time.Since(start), err)
			return err
		}
	}
	err := wb.Flush()
	if err != nil {
		err = fmt.Errorf("flush delete %s: %w", bucket, err)
	}
	metrics.RecordStoreOperation(op, bucket, time.Since(start), err)
	return err
}
