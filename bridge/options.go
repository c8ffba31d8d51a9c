// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"time"

	"github.com/spf13/viper"

	"github.com/eliasverden/mpvlink/logger"
)

// Options configures a Player. The zero value is usable; missing pieces are
// filled with defaults in New.
type Options struct {
	Logger logger.Interface

	// EngineOptions are raw engine properties applied during creation,
	// e.g. {"video": "no", "audio-display": "no"}.
	EngineOptions map[string]string

	// LogLevel is the minimum engine log level requested ("error", "warn",
	// "info", "v", "debug", "trace").
	LogLevel string

	// Volume is the initial playback volume in percent; 0 leaves the engine
	// default untouched.
	Volume float64

	// SynchronousRequests switches commands and property writes to
	// fire-and-forget: no correlation, the immediate return is the outcome.
	SynchronousRequests bool

	// DisposeGrace is how long Dispose waits for the soft quit before hard
	// terminating the engine handle.
	DisposeGrace time.Duration

	// BitrateCache overrides the process-wide fallback cache, mainly for
	// tests running players in isolation.
	BitrateCache *BitrateCache

	// Estimator overrides the duration-based bitrate estimator.
	Estimator Estimator
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Init()
	}
	if o.LogLevel == "" {
		o.LogLevel = "warn"
	}
	if o.DisposeGrace <= 0 {
		o.DisposeGrace = defaultDisposeGrace
	}
	if o.BitrateCache == nil {
		o.BitrateCache = DefaultBitrateCache
	}
	if o.Estimator == nil {
		o.Estimator = FileSizeEstimator{}
	}
	return o
}

// OptionsFromViper reads the player section of a viper config:
//
//	[player]
//	log_level = "warn"
//	volume = 80.0
//	synchronous = false
//	dispose_grace = "5s"
//	[player.engine_options]
//	video = "no"
func OptionsFromViper(v *viper.Viper) Options {
	v.SetDefault("player.log_level", "warn")
	v.SetDefault("player.dispose_grace", defaultDisposeGrace)

	return Options{
		EngineOptions:       v.GetStringMapString("player.engine_options"),
		LogLevel:            v.GetString("player.log_level"),
		Volume:              v.GetFloat64("player.volume"),
		SynchronousRequests: v.GetBool("player.synchronous"),
		DisposeGrace:        v.GetDuration("player.dispose_grace"),
	}
}
