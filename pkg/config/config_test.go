// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViperizeBindsFlags(t *testing.T) {
	v, command := Viperize(func(flagSet *flag.FlagSet) {
		flagSet.String("test.flag", "default", "")
	})
	require.NoError(t, command.ParseFlags([]string{"--test.flag=changed"}))
	assert.Equal(t, "changed", v.GetString("test.flag"))
}

func TestViperizeBindsEnv(t *testing.T) {
	t.Setenv("TEST_ENV_FLAG", "from-env")
	v, _ := Viperize(func(flagSet *flag.FlagSet) {
		flagSet.String("test.env-flag", "default", "")
	})
	assert.Equal(t, "from-env", v.GetString("test.env-flag"))
}
