// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

// Package ttlstore tracks how long each trace is retained. Expiry is a
// read-time visibility filter: the span stores consult IsExpired on
// every read, and physical reclamation may lag arbitrarily behind.
package ttlstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/samirscode/zipkin/model"
	"github.com/samirscode/zipkin/storage/spanstore"
)

// Manager holds per-trace retention overrides on top of a process-wide
// default. A trace expires when its last write or override instant plus
// its ttl falls behind the clock.
type Manager struct {
	mu         sync.RWMutex
	defaultTTL time.Duration
	overrides  map[model.TraceID]time.Duration
	lastTouch  map[model.TraceID]time.Time

	// timeNow is swappable for tests.
	timeNow func() time.Time
}

// NewManager creates a Manager with the given process-wide default ttl.
func NewManager(defaultTTL time.Duration) *Manager {
	return &Manager{
		defaultTTL: defaultTTL,
		overrides:  map[model.TraceID]time.Duration{},
		lastTouch:  map[model.TraceID]time.Time{},
		timeNow:    time.Now,
	}
}

// SetTTL overrides the retention of one trace. Seconds must be positive.
func (m *Manager) SetTTL(traceID model.TraceID, seconds int64) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: ttl %d seconds", spanstore.ErrInvalidTTL, seconds)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[traceID] = time.Duration(seconds) * time.Second
	m.lastTouch[traceID] = m.timeNow()
	return nil
}

// TTL returns the trace's override in seconds, or the default when the
// trace has none.
func (m *Manager) TTL(traceID model.TraceID) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ttl, ok := m.overrides[traceID]; ok {
		return int64(ttl / time.Second)
	}
	return int64(m.defaultTTL / time.Second)
}

// DefaultTTL returns the process-wide default retention in seconds.
func (m *Manager) DefaultTTL() int64 {
	return int64(m.defaultTTL / time.Second)
}

// RecordWrite marks a trace as freshly written, restarting its
// retention clock. Span stores call this on every successful write.
func (m *Manager) RecordWrite(traceID model.TraceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTouch[traceID] = m.timeNow()
}

// IsExpired reports whether the trace's data must be invisible at the
// given instant. Traces this manager never saw a write for are not
// expired: a durable backend may hold data from a previous run and
// relies on its own physical reclamation for those.
func (m *Manager) IsExpired(traceID model.TraceID, now time.Time) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	touched, ok := m.lastTouch[traceID]
	if !ok {
		return false
	}
	ttl, ok := m.overrides[traceID]
	if !ok {
		ttl = m.defaultTTL
	}
	return !touched.Add(ttl).After(now)
}

// Forget drops all book-keeping for a trace after its spans have been
// physically removed.
func (m *Manager) Forget(traceID model.TraceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, traceID)
	delete(m.lastTouch, traceID)
}

// ExpiredBefore lists traces whose retention elapsed at the given
// instant, for use by an optional reclamation sweep.
func (m *Manager) ExpiredBefore(now time.Time) []model.TraceID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []model.TraceID
	for id, touched := range m.lastTouch {
		ttl, ok := m.overrides[id]
		if !ok {
			ttl = m.defaultTTL
		}
		if !touched.Add(ttl).After(now) {
			ids = append(ids, id)
		}
	}
	return ids
}
