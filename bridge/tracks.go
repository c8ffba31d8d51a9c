// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/eliasverden/mpvlink/engine"
)

// Track is one entry of the engine's track catalog. The synthetic "auto" and
// "no" entries prefixing every list are selectors, not real tracks.
type Track struct {
	ID       string
	Title    string
	Language string
	Codec    string
	Default  bool
	Selected bool
}

// TrackList is the track catalog partitioned by kind.
type TrackList struct {
	Video    []Track
	Audio    []Track
	Subtitle []Track
}

// syntheticTracks returns the selector entries every track list starts with:
// "auto" (engine picks) and "no" (kind disabled).
func syntheticTracks() []Track {
	return []Track{{ID: "auto"}, {ID: "no"}}
}

func defaultTrackList() TrackList {
	return TrackList{
		Video:    syntheticTracks(),
		Audio:    syntheticTracks(),
		Subtitle: syntheticTracks(),
	}
}

// decodeTrackList decodes the engine's track-list node into a partitioned
// catalog. Entries with an unrecognized type tag are dropped.
func decodeTrackList(value engine.Node) (TrackList, bool) {
	entries, ok := value.AsArray()
	if !ok {
		return TrackList{}, false
	}

	list := defaultTrackList()
	tracks := lo.FilterMap(entries, func(n engine.Node, _ int) (decodedTrack, bool) {
		if _, ok := n.AsMap(); !ok {
			return decodedTrack{}, false
		}
		return decodedTrack{
			kind: n.MapString("type"),
			track: Track{
				ID:       strconv.FormatInt(n.MapInt64("id"), 10),
				Title:    n.MapString("title"),
				Language: n.MapString("lang"),
				Codec:    n.MapString("codec"),
				Default:  n.MapFlag("default"),
				Selected: n.MapFlag("selected"),
			},
		}, true
	})

	for _, t := range tracks {
		switch t.kind {
		case "video":
			list.Video = append(list.Video, t.track)
		case "audio":
			list.Audio = append(list.Audio, t.track)
		case "sub":
			list.Subtitle = append(list.Subtitle, t.track)
		}
	}
	return list, true
}

type decodedTrack struct {
	kind  string
	track Track
}
