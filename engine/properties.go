// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package engine

// Property names understood by the bridge. These are the engine's own names;
// the bridge observes most of them at creation time.
const (
	// PauseProperty is used for pausing or unpausing playback.
	PauseProperty = "pause"

	// TimePosProperty is the current playback position in seconds.
	TimePosProperty = "time-pos"

	// DurationProperty is the current item's duration in seconds.
	DurationProperty = "duration"

	// PlaylistPosProperty is the index of the playlist entry being played.
	PlaylistPosProperty = "playlist-playing-pos"

	// VolumeProperty is the playback volume in percent.
	VolumeProperty = "volume"

	// SpeedProperty is the playback rate multiplier.
	SpeedProperty = "speed"

	// CoreIdleProperty is true whenever playback is not actively advancing.
	CoreIdleProperty = "core-idle"

	// PausedForCacheProperty is true while playback stalls on an empty cache.
	PausedForCacheProperty = "paused-for-cache"

	// CacheBufferingProperty is the cache fill state in percent.
	CacheBufferingProperty = "cache-buffering-state"

	// DemuxerCacheTimeProperty is the timestamp up to which data is buffered,
	// in seconds.
	DemuxerCacheTimeProperty = "demuxer-cache-time"

	// AudioParamsProperty describes the decoded audio format.
	AudioParamsProperty = "audio-params"

	// AudioBitrateProperty is the engine's bitrate estimate in bits/s.
	AudioBitrateProperty = "audio-bitrate"

	// AudioDeviceProperty is the active audio output device.
	AudioDeviceProperty = "audio-device"

	// AudioDeviceListProperty enumerates the available output devices.
	AudioDeviceListProperty = "audio-device-list"

	// VideoOutParamsProperty describes the video as delivered to the output.
	VideoOutParamsProperty = "video-out-params"

	// TrackListProperty enumerates the current item's tracks.
	TrackListProperty = "track-list"

	// EOFReachedProperty is true once the current item has fully played out.
	EOFReachedProperty = "eof-reached"

	// IdleActiveProperty is true while the engine sits idle with no item.
	IdleActiveProperty = "idle-active"

	// SubTextProperty is the currently displayed subtitle line.
	SubTextProperty = "sub-text"

	// SecondarySubTextProperty is the secondary subtitle line.
	SecondarySubTextProperty = "secondary-sub-text"

	// PathProperty is the source identifier of the item being (re)solved.
	PathProperty = "path"

	// HTTPHeaderFieldsProperty carries extra request headers as a list of
	// "Key: value" strings, applied to the next network open.
	HTTPHeaderFieldsProperty = "http-header-fields"

	// StartProperty and EndProperty trim playback to a subrange, formatted
	// as seconds or "none".
	StartProperty = "start"
	EndProperty   = "end"
)

// Lifecycle hook names. The engine halts at each until acknowledged.
const (
	HookOnLoad      = "on_load"
	HookOnUnload    = "on_unload"
	HookOnLoadFail  = "on_load_fail"
	HookOnPreloaded = "on_preloaded"
)
