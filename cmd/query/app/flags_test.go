// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirscode/zipkin/pkg/config"
)

func TestQueryOptionsDefaults(t *testing.T) {
	v, command := config.Viperize(AddFlags)
	require.NoError(t, command.ParseFlags(nil))

	qOpts := new(QueryOptions).InitFromViper(v)
	assert.Equal(t, 9411, qOpts.Port)
	assert.Equal(t, "api", qOpts.Prefix)
	assert.Equal(t, 9412, qOpts.HealthCheckHTTPPort)
	assert.Equal(t, StorageTypeMemory, qOpts.StorageType)
	assert.Equal(t, 7*24*time.Hour, qOpts.DefaultTTL)
	assert.Zero(t, qOpts.PurgeInterval)
}

func TestQueryOptionsFromFlags(t *testing.T) {
	v, command := config.Viperize(AddFlags)
	require.NoError(t, command.ParseFlags([]string{
		"--query.port=8080",
		"--query.storage=badger",
		"--query.default-ttl=1h",
		"--query.purge-interval=5m",
	}))

	qOpts := new(QueryOptions).InitFromViper(v)
	assert.Equal(t, 8080, qOpts.Port)
	assert.Equal(t, StorageTypeBadger, qOpts.StorageType)
	assert.Equal(t, time.Hour, qOpts.DefaultTTL)
	assert.Equal(t, 5*time.Minute, qOpts.PurgeInterval)
}
