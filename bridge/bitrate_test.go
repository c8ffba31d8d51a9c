// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasverden/mpvlink/engine"
	"github.com/eliasverden/mpvlink/engine/enginetest"
)

func TestNormalizeSourceID(t *testing.T) {
	assert.Equal(t,
		"https://cdn.example.com/a.flac",
		NormalizeSourceID("https://cdn.example.com/a.flac?token=1&session=2#t=30"))
	assert.Equal(t,
		"https://cdn.example.com/a.flac",
		NormalizeSourceID("https://cdn.example.com/a.flac"))
	assert.Equal(t, "/local/b.ogg", NormalizeSourceID("/local/b.ogg"))
}

func TestBitrateCacheFirstWriteWins(t *testing.T) {
	cache := NewBitrateCache()

	var calls atomic.Int32
	compute := func(v int64) func() (int64, error) {
		return func() (int64, error) {
			calls.Add(1)
			return v, nil
		}
	}

	v, err := cache.GetOrCompute("https://x/a.flac?token=1", compute(320000))
	require.NoError(t, err)
	assert.Equal(t, int64(320000), v)

	// same normalized identifier: cached value, no recomputation, even with
	// a computation that would yield something else
	v, err = cache.GetOrCompute("https://x/a.flac?token=2", compute(999))
	require.NoError(t, err)
	assert.Equal(t, int64(320000), v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBitrateCacheFailedComputeIsNotStored(t *testing.T) {
	cache := NewBitrateCache()

	_, err := cache.GetOrCompute("a", func() (int64, error) {
		return 0, os.ErrNotExist
	})
	require.Error(t, err)

	v, err := cache.GetOrCompute("a", func() (int64, error) { return 123, nil })
	require.NoError(t, err)
	assert.Equal(t, int64(123), v)
}

func TestFileSizeEstimator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.flac")
	require.NoError(t, os.WriteFile(path, make([]byte, 10000), 0o644))

	var est FileSizeEstimator
	v, err := est.Estimate(path, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), v)

	_, err = est.Estimate(path, 0)
	assert.Error(t, err)
}

func TestBitrateReportedNatively(t *testing.T) {
	assert.False(t, bitrateReportedNatively("/music/a.flac"))
	assert.False(t, bitrateReportedNatively("https://x/a.ogg?token=1"))
	assert.True(t, bitrateReportedNatively("/music/a.mp3"))
	assert.True(t, bitrateReportedNatively("https://x/stream.m3u8"))
}

type stubEstimator struct {
	calls atomic.Int32
	value int64
}

func (s *stubEstimator) Estimate(string, time.Duration) (int64, error) {
	s.calls.Add(1)
	return s.value, nil
}

func TestFallbackBitrateFlowsThroughCache(t *testing.T) {
	est := &stubEstimator{value: 912000}
	p, eng := newTestPlayer(t, Options{Estimator: est})

	// the on_load hook resolves the current source identifier
	eng.SetProp(engine.PathProperty, engine.StringNode("/music/a.flac"))
	eng.Push(enginetest.Hook(engine.HookOnLoad, 1))
	require.Eventually(t, func() bool {
		return len(eng.Continued()) == 1
	}, eventually, tick)

	// estimation runs once duration becomes known
	eng.Push(enginetest.PropertyChange(engine.DurationProperty, engine.DoubleNode(180)))
	assert.Eventually(t, func() bool {
		return p.State().AudioBitrate == 912000
	}, eventually, tick)

	// a native bitrate report for a fallback source kind keeps the cached
	// value instead of the engine's number
	eng.Push(enginetest.PropertyChange(engine.AudioBitrateProperty, engine.DoubleNode(1)))
	eng.Push(enginetest.PropertyChange(engine.DurationProperty, engine.DoubleNode(181)))
	assert.Eventually(t, func() bool {
		return p.State().Duration == 181*time.Second
	}, eventually, tick)

	assert.Equal(t, int64(912000), p.State().AudioBitrate)
	assert.Equal(t, int32(1), est.calls.Load())
}

func TestNativeBitratePassesThrough(t *testing.T) {
	est := &stubEstimator{value: 555}
	p, eng := newTestPlayer(t, Options{Estimator: est})

	eng.SetProp(engine.PathProperty, engine.StringNode("/music/a.mp3"))
	eng.Push(enginetest.Hook(engine.HookOnLoad, 1))
	require.Eventually(t, func() bool {
		return len(eng.Continued()) == 1
	}, eventually, tick)

	eng.Push(enginetest.PropertyChange(engine.AudioBitrateProperty, engine.DoubleNode(192000)))
	assert.Eventually(t, func() bool {
		return p.State().AudioBitrate == 192000
	}, eventually, tick)
	assert.Equal(t, int32(0), est.calls.Load())
}
