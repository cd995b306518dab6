// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

// Package badger is the durable span store: spans and secondary index
// entries live in a badger key-value store with per-entry TTL for
// physical reclamation, while the TTL manager keeps per-trace
// overrides logically authoritative on every read.
package badger

import (
	"io"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/samirscode/zipkin/storage/ttlstore"
)

// Store implements spanstore.Store on top of a badger database.
type Store struct {
	db     *badger.DB
	cache  *CacheStore
	ttl    *ttlstore.Manager
	logger *zap.Logger

	timeNow func() time.Time
	stopGC  chan struct{}
	tmpDir  string
}

// NewStore opens (or creates) the badger database described by the
// options, warms the metadata cache from existing index keys and
// starts the value-log maintenance loop.
func NewStore(opts Options, ttl *ttlstore.Manager, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bOpts := badger.DefaultOptions("")
	bOpts = bOpts.WithLogger(nil)
	var tmpDir string
	if opts.Ephemeral {
		dir, err := os.MkdirTemp("", "zipkin-badger")
		if err != nil {
			return nil, err
		}
		tmpDir = dir
		bOpts = bOpts.WithDir(dir).WithValueDir(dir)
	} else {
		bOpts = bOpts.WithDir(opts.Directory).
			WithValueDir(opts.Directory).
			WithSyncWrites(opts.SyncWrites)
	}

	db, err := badger.Open(bOpts)
	if err != nil {
		return nil, err
	}

	cache := newCacheStore()
	if err := cache.populate(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:      db,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		timeNow: time.Now,
		stopGC:  make(chan struct{}),
		tmpDir:  tmpDir,
	}
	go s.maintenance(opts.MaintenanceInterval)
	return s, nil
}

// maintenance reclaims value-log space on a timer until Close.
func (s *Store) maintenance(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			if err := s.db.RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
				s.logger.Warn("badger value log GC failed", zap.Error(err))
			}
		}
	}
}

// Close stops maintenance and closes the database, removing the data
// directory if the store was ephemeral.
func (s *Store) Close() error {
	close(s.stopGC)
	err := s.db.Close()
	if s.tmpDir != "" {
		os.RemoveAll(s.tmpDir)
	}
	return err
}

var _ io.Closer = (*Store)(nil)
