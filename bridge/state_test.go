// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eliasverden/mpvlink/engine"
)

func TestSecondsToDurationTruncatesToMicroseconds(t *testing.T) {
	assert.Equal(t, 12345678*time.Microsecond, secondsToDuration(12.345678))
	assert.Equal(t, time.Duration(0), secondsToDuration(0))
	assert.Equal(t, 1500000*time.Microsecond, secondsToDuration(1.5))
	// sub-microsecond precision is dropped, not rounded
	assert.Equal(t, 1*time.Microsecond, secondsToDuration(0.0000019))
}

func TestDisplayDimensionsRotationSwap(t *testing.T) {
	params := VideoParams{DW: 1920, DH: 1080}

	for _, tc := range []struct {
		rotate int64
		w, h   int64
	}{
		{0, 1920, 1080},
		{90, 1080, 1920},
		{180, 1920, 1080},
		{270, 1080, 1920},
	} {
		params.Rotate = tc.rotate
		w, h := displayDimensions(params)
		assert.Equal(t, tc.w, w, "rotate %d", tc.rotate)
		assert.Equal(t, tc.h, h, "rotate %d", tc.rotate)
	}
}

func TestRateAdjusted(t *testing.T) {
	assert.Equal(t, 5*time.Second, rateAdjusted(10*time.Second, 2.0))
	assert.Equal(t, 10*time.Second, rateAdjusted(10*time.Second, 1.0))
	assert.Equal(t, 10*time.Second, rateAdjusted(10*time.Second, 0))
}

func TestDecodeTrackListPartitionsAndSeeds(t *testing.T) {
	value := engine.ArrayNode(
		engine.MapNode(map[string]engine.Node{
			"type":  engine.StringNode("video"),
			"id":    engine.Int64Node(1),
			"codec": engine.StringNode("h264"),
		}),
		engine.MapNode(map[string]engine.Node{
			"type":     engine.StringNode("audio"),
			"id":       engine.Int64Node(2),
			"lang":     engine.StringNode("eng"),
			"selected": engine.FlagNode(true),
		}),
		engine.MapNode(map[string]engine.Node{
			"type":  engine.StringNode("sub"),
			"id":    engine.Int64Node(3),
			"title": engine.StringNode("Signs"),
		}),
		// junk entry, dropped
		engine.StringNode("nope"),
	)

	list, ok := decodeTrackList(value)
	assert.True(t, ok)

	assert.Equal(t, []string{"auto", "no", "1"}, trackIDs(list.Video))
	assert.Equal(t, []string{"auto", "no", "2"}, trackIDs(list.Audio))
	assert.Equal(t, []string{"auto", "no", "3"}, trackIDs(list.Subtitle))

	assert.Equal(t, "h264", list.Video[2].Codec)
	assert.Equal(t, "eng", list.Audio[2].Language)
	assert.True(t, list.Audio[2].Selected)
	assert.Equal(t, "Signs", list.Subtitle[2].Title)
}

func TestDecodeTrackListRejectsNonArray(t *testing.T) {
	_, ok := decodeTrackList(engine.StringNode("not a list"))
	assert.False(t, ok)
}

func trackIDs(tracks []Track) []string {
	ids := make([]string, len(tracks))
	for i, tr := range tracks {
		ids[i] = tr.ID
	}
	return ids
}
