// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedDeliversToAllSubscribers(t *testing.T) {
	f := newFeed[int]()

	a, cancelA := f.Subscribe()
	b, cancelB := f.Subscribe()
	defer cancelA()
	defer cancelB()

	f.publish(7)
	assert.Equal(t, 7, <-a)
	assert.Equal(t, 7, <-b)
}

func TestFeedDropsOldestWhenSubscriberLags(t *testing.T) {
	f := newFeed[int]()
	ch, cancel := f.Subscribe()
	defer cancel()

	for i := 0; i < feedBuffer+3; i++ {
		f.publish(i)
	}

	// the first three values were dropped to make room, the rest are intact
	// and in order
	got := make([]int, 0, feedBuffer)
	for len(ch) > 0 {
		got = append(got, <-ch)
	}
	require.Len(t, got, feedBuffer)
	assert.Equal(t, 3, got[0])
	assert.Equal(t, feedBuffer+2, got[len(got)-1])
}

func TestFeedCancelStopsDelivery(t *testing.T) {
	f := newFeed[int]()
	ch, cancel := f.Subscribe()

	f.publish(1)
	cancel()
	f.publish(2)

	assert.Equal(t, 1, <-ch)
	_, open := <-ch
	assert.False(t, open)

	// cancelling twice is harmless
	cancel()
}

func TestFeedCloseClosesSubscribers(t *testing.T) {
	f := newFeed[int]()
	ch, _ := f.Subscribe()

	f.close()
	_, open := <-ch
	assert.False(t, open)

	// publishing after close is a no-op, subscribing yields a closed channel
	f.publish(9)
	late, cancel := f.Subscribe()
	defer cancel()
	_, open = <-late
	assert.False(t, open)
}

func TestGateTransitions(t *testing.T) {
	g := newGate(gateTracking)
	assert.True(t, g.tracking())

	g.suppress()
	assert.False(t, g.tracking())
	g.suppress()
	assert.False(t, g.tracking())

	g.restore()
	assert.True(t, g.tracking())

	assert.False(t, newGate(gateSuppressed).tracking())
}
