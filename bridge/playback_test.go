// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasverden/mpvlink/engine"
	"github.com/eliasverden/mpvlink/engine/enginetest"
)

func lastCall(eng *enginetest.Engine, method string) (enginetest.Call, bool) {
	calls := eng.Recorded()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method {
			return calls[i], true
		}
	}
	return enginetest.Call{}, false
}

func TestPlayRejectsInvalidIndex(t *testing.T) {
	p, _ := newTestPlayer(t, Options{SynchronousRequests: true})

	p.SetPlaylist([]Media{{URI: "/music/a.flac"}})
	ctx := testCtx(t)
	assert.Error(t, p.Play(ctx, -1))
	assert.Error(t, p.Play(ctx, 1))
}

func TestPlayLoadsItemAndPublishesExplicitState(t *testing.T) {
	p, eng := newTestPlayer(t, Options{SynchronousRequests: true})

	p.SetPlaylist([]Media{
		{URI: "/music/a.flac"},
		{URI: "/music/b.flac"},
	})
	require.NoError(t, p.Play(testCtx(t), 1))

	c, ok := lastCall(eng, "Command")
	require.True(t, ok)
	assert.Equal(t, []string{"loadfile", "/music/b.flac"}, c.Args)

	assert.Eventually(t, func() bool {
		st := p.State()
		return st.Playing && !st.Completed && st.PlaylistPos == 1
	}, eventually, tick)
}

func TestPlayPauseFollowsSnapshot(t *testing.T) {
	p, eng := newTestPlayer(t, Options{SynchronousRequests: true})

	p.SetPlaylist([]Media{{URI: "/music/a.flac"}})
	require.NoError(t, p.Play(testCtx(t), 0))
	eng.Push(enginetest.StartFile())
	require.Eventually(t, func() bool { return p.State().Playing }, eventually, tick)

	require.NoError(t, p.PlayPause(testCtx(t)))
	require.Eventually(t, func() bool { return !p.State().Playing }, eventually, tick)
	c, ok := lastCall(eng, "SetProperty")
	require.True(t, ok)
	require.Equal(t, engine.PauseProperty, c.Name)
	paused, _ := c.Value.AsFlag()
	assert.True(t, paused)

	require.NoError(t, p.PlayPause(testCtx(t)))
	assert.Eventually(t, func() bool { return p.State().Playing }, eventually, tick)
}

func TestSeekUsesAbsolutePosition(t *testing.T) {
	p, eng := newTestPlayer(t, Options{SynchronousRequests: true})

	require.NoError(t, p.Seek(testCtx(t), 12*time.Second+500*time.Millisecond))

	c, ok := lastCall(eng, "Command")
	require.True(t, ok)
	assert.Equal(t, []string{"seek", "12.500", "absolute"}, c.Args)
}

func TestSetVolumeClamps(t *testing.T) {
	p, eng := newTestPlayer(t, Options{SynchronousRequests: true})
	ctx := testCtx(t)

	require.NoError(t, p.SetVolume(ctx, 150))
	c, ok := lastCall(eng, "SetProperty")
	require.True(t, ok)
	v, _ := c.Value.AsDouble()
	assert.Equal(t, float64(100), v)

	require.NoError(t, p.SetVolume(ctx, -3))
	c, _ = lastCall(eng, "SetProperty")
	v, _ = c.Value.AsDouble()
	assert.Equal(t, float64(0), v)
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	p, _ := newTestPlayer(t, Options{SynchronousRequests: true})
	assert.Error(t, p.SetRate(testCtx(t), 0))
	assert.Error(t, p.SetRate(testCtx(t), -1))
}

func TestShufflePublishesEngineIndex(t *testing.T) {
	p, eng := newTestPlayer(t, Options{SynchronousRequests: true})

	eng.SetProp(engine.PlaylistPosProperty, engine.Int64Node(3))
	require.NoError(t, p.Shuffle(testCtx(t)))

	c, ok := lastCall(eng, "Command")
	require.True(t, ok)
	assert.Equal(t, []string{"playlist-shuffle"}, c.Args)

	assert.Eventually(t, func() bool {
		return p.State().PlaylistPos == 3
	}, eventually, tick)

	// once the explicit update landed the gate is open again for engine echoes
	eng.Push(enginetest.PropertyChange(engine.PlaylistPosProperty, engine.Int64Node(5)))
	assert.Eventually(t, func() bool {
		return p.State().PlaylistPos == 5
	}, eventually, tick)
}
