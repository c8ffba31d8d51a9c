// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"time"

	"github.com/eliasverden/mpvlink/engine"
)

// Feeds groups the per-field broadcast channels. State carries the full
// snapshot after every applied update; the field feeds fire only when their
// field changed.
type Feeds struct {
	State *Feed[PlayerState]

	Playing   *Feed[bool]
	Buffering *Feed[bool]
	Completed *Feed[bool]

	Position         *Feed[time.Duration]
	Duration         *Feed[time.Duration]
	Buffer           *Feed[time.Duration]
	BufferingPercent *Feed[float64]

	Volume *Feed[float64]
	Rate   *Feed[float64]

	AudioBitrate *Feed[int64]
	AudioParams  *Feed[AudioParams]
	AudioDevice  *Feed[string]
	AudioDevices *Feed[[]AudioDevice]

	VideoParams *Feed[VideoParams]
	Tracks      *Feed[TrackList]

	PlaylistPos *Feed[int]
	Subtitle    *Feed[[2]string]

	// Log carries every engine log line; Error additionally carries
	// error-level lines from the playback-critical engine subsystems.
	Log   *Feed[engine.LogData]
	Error *Feed[string]
}

func newFeeds() *Feeds {
	return &Feeds{
		State:            newFeed[PlayerState](),
		Playing:          newFeed[bool](),
		Buffering:        newFeed[bool](),
		Completed:        newFeed[bool](),
		Position:         newFeed[time.Duration](),
		Duration:         newFeed[time.Duration](),
		Buffer:           newFeed[time.Duration](),
		BufferingPercent: newFeed[float64](),
		Volume:           newFeed[float64](),
		Rate:             newFeed[float64](),
		AudioBitrate:     newFeed[int64](),
		AudioParams:      newFeed[AudioParams](),
		AudioDevice:      newFeed[string](),
		AudioDevices:     newFeed[[]AudioDevice](),
		VideoParams:      newFeed[VideoParams](),
		Tracks:           newFeed[TrackList](),
		PlaylistPos:      newFeed[int](),
		Subtitle:         newFeed[[2]string](),
		Log:              newFeed[engine.LogData](),
		Error:            newFeed[string](),
	}
}

func (f *Feeds) closeAll() {
	f.State.close()
	f.Playing.close()
	f.Buffering.close()
	f.Completed.close()
	f.Position.close()
	f.Duration.close()
	f.Buffer.close()
	f.BufferingPercent.close()
	f.Volume.close()
	f.Rate.close()
	f.AudioBitrate.close()
	f.AudioParams.close()
	f.AudioDevice.close()
	f.AudioDevices.close()
	f.VideoParams.close()
	f.Tracks.close()
	f.PlaylistPos.close()
	f.Subtitle.close()
	f.Log.close()
	f.Error.close()
}
