// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"flag"
	"time"

	"github.com/spf13/viper"
)

const (
	queryPort                = "query.port"
	queryPrefix              = "query.prefix"
	queryHealthCheckHTTPPort = "query.health-check-http-port"
	queryStorageType         = "query.storage"
	queryDefaultTTL          = "query.default-ttl"
	queryPurgeInterval       = "query.purge-interval"
)

// Supported storage backends.
const (
	StorageTypeMemory = "memory"
	StorageTypeBadger = "badger"
)

// QueryOptions holds configuration for the query service binary.
type QueryOptions struct {
	// Port is the port that the query service listens on.
	Port int
	// Prefix is the prefix of the query service api.
	Prefix string
	// HealthCheckHTTPPort is the port for the health check HTTP server.
	HealthCheckHTTPPort int
	// StorageType selects the span store backend, memory or badger.
	StorageType string
	// DefaultTTL is the retention applied to traces without an override.
	DefaultTTL time.Duration
	// PurgeInterval is how often the memory store sweeps expired traces.
	// Zero disables the sweep; expired traces are still invisible to reads.
	PurgeInterval time.Duration
}

// AddFlags adds flags for QueryOptions.
func AddFlags(flagSet *flag.FlagSet) {
	flagSet.Int(queryPort, 9411, "The port for the query service")
	flagSet.String(queryPrefix, "api", "The prefix for the url of the query service")
	flagSet.Int(queryHealthCheckHTTPPort, 9412, "The http port for the health check service")
	flagSet.String(queryStorageType, StorageTypeMemory, "The storage backend for spans, one of: memory, badger")
	flagSet.Duration(queryDefaultTTL, 7*24*time.Hour, "The default retention for traces")
	flagSet.Duration(queryPurgeInterval, 0, "How often the memory store purges expired traces; 0 disables the sweep")
}

// InitFromViper initializes QueryOptions with properties from viper.
func (qOpts *QueryOptions) InitFromViper(v *viper.Viper) *QueryOptions {
	qOpts.Port = v.GetInt(queryPort)
	qOpts.Prefix = v.GetString(queryPrefix)
	qOpts.HealthCheckHTTPPort = v.GetInt(queryHealthCheckHTTPPort)
	qOpts.StorageType = v.GetString(queryStorageType)
	qOpts.DefaultTTL = v.GetDuration(queryDefaultTTL)
	qOpts.PurgeInterval = v.GetDuration(queryPurgeInterval)
	return qOpts
}
