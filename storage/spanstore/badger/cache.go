// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package badger

import (
	"sort"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// CacheStore keeps the service and span names seen within the
// retention window, so metadata queries never scan the key space.
// Each name carries the expiry instant of the freshest entry that
// registered it; names past their expiry are filtered on read, which
// bounds the answer to roughly "back to TTL".
type CacheStore struct {
	mu        sync.RWMutex
	services  map[string]int64            // service -> expiry unix seconds
	spanNames map[string]map[string]int64 // service -> span name -> expiry

	timeNow func() time.Time
}

func newCacheStore() *CacheStore {
	return &CacheStore{
		services:  map[string]int64{},
		spanNames: map[string]map[string]int64{},
		timeNow:   time.Now,
	}
}

// Update registers a service/span-name pair with the given expiry.
func (c *CacheStore) Update(service, spanName string, expireAt int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.services[service]; !ok || expireAt > old {
		c.services[service] = expireAt
	}
	if spanName == "" {
		return
	}
	names, ok := c.spanNames[service]
	if !ok {
		names = map[string]int64{}
		c.spanNames[service] = names
	}
	if old, ok := names[spanName]; !ok || expireAt > old {
		names[spanName] = expireAt
	}
}

// GetServices returns the sorted service names that have not expired.
func (c *CacheStore) GetServices() []string {
	now := c.timeNow().Unix()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var services []string
	for svc, expireAt := range c.services {
		if expireAt > now {
			services = append(services, svc)
		}
	}
	sort.Strings(services)
	return services
}

// GetSpanNames returns the sorted span names of a service, or an empty
// slice when the service is unknown.
func (c *CacheStore) GetSpanNames(service string) []string {
	now := c.timeNow().Unix()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for name, expireAt := range c.spanNames[service] {
		if expireAt > now {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// populate rebuilds the cache from the index keys already in the
// store, carrying over each entry's badger expiry.
func (c *CacheStore) populate(db *badger.DB) error {
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte{serviceIndexKey}); it.ValidForPrefix([]byte{serviceIndexKey}); it.Next() {
			key := it.Item().Key()
			if svc, ok := firstField(key); ok {
				c.Update(svc, "", int64(it.Item().ExpiresAt()))
			}
		}
		for it.Seek([]byte{spanNameIndexKey}); it.ValidForPrefix([]byte{spanNameIndexKey}); it.Next() {
			key := it.Item().Key()
			if svc, name, ok := firstTwoFields(key); ok {
				c.Update(svc, name, int64(it.Item().ExpiresAt()))
			}
		}
		return nil
	})
}

// firstField extracts the first zero-terminated field of an index key.
func firstField(key []byte) (string, bool) {
	if len(key) <= 1+indexKeySuffixLength {
		return "", false
	}
	body := key[1 : len(key)-indexKeySuffixLength]
	for i, b := range body {
		if b == fieldSeparator {
			return string(body[:i]), true
		}
	}
	return "", false
}

// firstTwoFields extracts the first two zero-terminated fields.
func firstTwoFields(key []byte) (string, string, bool) {
	if len(key) <= 1+indexKeySuffixLength {
		return "", "", false
	}
	body := key[1 : len(key)-indexKeySuffixLength]
	for i, b := range body {
		if b != fieldSeparator {
			continue
		}
		first := string(body[:i])
		rest := body[i+1:]
		for j, b2 := range rest {
			if b2 == fieldSeparator {
				return first, string(rest[:j]), true
			}
		}
		return "", "", false
	}
	return "", "", false
}
