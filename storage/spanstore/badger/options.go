// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package badger

import (
	"flag"
	"time"

	"github.com/spf13/viper"
)

const (
	flagEphemeral           = "badger.ephemeral"
	flagDirectory           = "badger.directory"
	flagSyncWrites          = "badger.consistency"
	flagMaintenanceInterval = "badger.maintenance-interval"

	defaultMaintenanceInterval = 5 * time.Minute
)

// Options carries the badger backend configuration.
type Options struct {
	// Ephemeral stores data in a temporary directory removed on Close.
	Ephemeral bool
	// Directory holds keys and values when not ephemeral.
	Directory string
	// SyncWrites syncs every write to disk, trading throughput for
	// durability.
	SyncWrites bool
	// MaintenanceInterval is the cadence of the value-log GC job.
	MaintenanceInterval time.Duration
}

// AddFlags registers the backend's flags.
func AddFlags(flagSet *flag.FlagSet) {
	flagSet.Bool(flagEphemeral, true, "Mark this storage ephemeral, data is stored in a temporary directory.")
	flagSet.String(flagDirectory, "", "Directory for badger keys and values. Requires ephemeral=false.")
	flagSet.Bool(flagSyncWrites, false, "If all writes should be synced immediately to physical disk.")
	flagSet.Duration(flagMaintenanceInterval, defaultMaintenanceInterval,
		"How often the badger maintenance job runs. Format is time.Duration.")
}

// InitFromViper initializes the options struct with values from Viper.
func (opts *Options) InitFromViper(v *viper.Viper) *Options {
	opts.Ephemeral = v.GetBool(flagEphemeral)
	opts.Directory = v.GetString(flagDirectory)
	opts.SyncWrites = v.GetBool(flagSyncWrites)
	opts.MaintenanceInterval = v.GetDuration(flagMaintenanceInterval)
	return opts
}
