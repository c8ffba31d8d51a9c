// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()

	assert.NotNil(t, o.Logger)
	assert.Equal(t, "warn", o.LogLevel)
	assert.Equal(t, defaultDisposeGrace, o.DisposeGrace)
	assert.Same(t, DefaultBitrateCache, o.BitrateCache)
	assert.Equal(t, FileSizeEstimator{}, o.Estimator)
}

func TestOptionsWithDefaultsKeepsExplicitValues(t *testing.T) {
	cache := NewBitrateCache()
	o := Options{
		LogLevel:     "debug",
		DisposeGrace: time.Second,
		BitrateCache: cache,
	}.withDefaults()

	assert.Equal(t, "debug", o.LogLevel)
	assert.Equal(t, time.Second, o.DisposeGrace)
	assert.Same(t, cache, o.BitrateCache)
}

func TestOptionsFromViper(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
[player]
log_level = "info"
volume = 80.0
synchronous = true
dispose_grace = "2s"

[player.engine_options]
video = "no"
audio-display = "no"
`)))

	o := OptionsFromViper(v)
	assert.Equal(t, "info", o.LogLevel)
	assert.Equal(t, 80.0, o.Volume)
	assert.True(t, o.SynchronousRequests)
	assert.Equal(t, 2*time.Second, o.DisposeGrace)
	assert.Equal(t, map[string]string{"video": "no", "audio-display": "no"}, o.EngineOptions)
}

func TestOptionsFromViperDefaults(t *testing.T) {
	o := OptionsFromViper(viper.New())
	assert.Equal(t, "warn", o.LogLevel)
	assert.Equal(t, defaultDisposeGrace, o.DisposeGrace)
	assert.False(t, o.SynchronousRequests)
}
