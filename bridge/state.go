// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"time"
)

// PlayerState is the canonical playback snapshot. It is replaced wholesale on
// every applied update; only the event dispatch goroutine writes it, readers
// get value copies.
type PlayerState struct {
	Playing   bool
	Buffering bool
	Completed bool

	Position time.Duration
	Duration time.Duration
	// Buffer is how much playback time the demuxer has ahead of the position,
	// adjusted for the current playback rate.
	Buffer           time.Duration
	BufferingPercent float64

	Volume float64
	Rate   float64

	AudioBitrate int64
	AudioParams  AudioParams
	AudioDevice  string
	AudioDevices []AudioDevice

	VideoParams VideoParams
	// Width and Height are the display dimensions with rotation applied.
	Width  int64
	Height int64

	Tracks TrackList

	PlaylistPos int

	// Subtitle holds the primary and secondary subtitle line currently shown.
	Subtitle [2]string
}

// AudioParams describes the decoded audio format.
type AudioParams struct {
	Format       string
	SampleRate   int64
	Channels     string
	ChannelCount int64
}

// AudioDevice is one entry of the engine's output device list.
type AudioDevice struct {
	Name        string
	Description string
}

// VideoParams describes the video as handed to the output, including the
// container rotation in degrees.
type VideoParams struct {
	PixelFormat string
	W, H        int64
	DW, DH      int64
	Rotate      int64
	Aspect      float64
}

func initialState() PlayerState {
	return PlayerState{
		Rate:        1.0,
		Volume:      100.0,
		Tracks:      defaultTrackList(),
		PlaylistPos: -1,
	}
}

// secondsToDuration converts an engine time value (seconds as double) to a
// Duration truncated to whole microseconds.
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(int64(seconds*1e6)) * time.Microsecond
}

// displayDimensions derives the on-screen width/height from video-out
// parameters, swapping the axes when the source is rotated sideways.
func displayDimensions(v VideoParams) (w, h int64) {
	if v.Rotate%180 != 0 {
		return v.DH, v.DW
	}
	return v.DW, v.DH
}

// rateAdjusted converts a buffered media duration to wall-clock time at the
// given playback rate.
func rateAdjusted(d time.Duration, rate float64) time.Duration {
	if rate > 0 && rate != 1.0 {
		return time.Duration(float64(d) / rate)
	}
	return d
}
