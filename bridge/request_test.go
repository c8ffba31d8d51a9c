// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasverden/mpvlink/engine"
	"github.com/eliasverden/mpvlink/engine/enginetest"
)

// lastAsyncReply digs the correlation ID of the most recent async call out of
// the fake's call log.
func lastAsyncReply(eng *enginetest.Engine, method string) (uint64, bool) {
	calls := eng.Recorded()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method {
			return calls[i].Reply, true
		}
	}
	return 0, false
}

func TestAsyncCommandResolvesOnMatchingReply(t *testing.T) {
	p, eng := newTestPlayer(t, Options{})
	ctx := testCtx(t)

	done := make(chan error, 1)
	go func() { done <- p.Command(ctx, "stop") }()

	var reply uint64
	require.Eventually(t, func() bool {
		r, ok := lastAsyncReply(eng, "CommandAsync")
		reply = r
		return ok
	}, eventually, tick)

	// a reply for someone else first: must not resolve our request
	eng.Push(enginetest.CommandReply(reply+100, 0))
	select {
	case err := <-done:
		t.Fatalf("resolved by foreign reply: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	eng.Push(enginetest.CommandReply(reply, 0))
	assert.NoError(t, <-done)
}

func TestAsyncReplyOrderIsPerRequest(t *testing.T) {
	p, eng := newTestPlayer(t, Options{})
	ctx := testCtx(t)

	first := make(chan error, 1)
	go func() { first <- p.Command(ctx, "stop") }()
	var firstReply uint64
	require.Eventually(t, func() bool {
		r, ok := lastAsyncReply(eng, "CommandAsync")
		firstReply = r
		return ok
	}, eventually, tick)

	second := make(chan error, 1)
	go func() { second <- p.SetProperty(ctx, engine.VolumeProperty, engine.DoubleNode(50)) }()
	var secondReply uint64
	require.Eventually(t, func() bool {
		r, ok := lastAsyncReply(eng, "SetPropertyAsync")
		secondReply = r
		return ok
	}, eventually, tick)
	require.NotEqual(t, firstReply, secondReply)

	// resolve in reverse submission order; each caller gets its own outcome
	eng.Push(enginetest.SetPropertyReply(secondReply, -5))
	eng.Push(enginetest.CommandReply(firstReply, 0))

	assert.NoError(t, <-first)

	err := <-second
	var engErr *engine.Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, -5, engErr.Code)
	assert.Contains(t, engErr.Text, "-5")
}

func TestSynchronousModeSkipsCorrelation(t *testing.T) {
	p, eng := newTestPlayer(t, Options{SynchronousRequests: true})
	ctx := testCtx(t)

	require.NoError(t, p.Command(ctx, "stop"))
	require.NoError(t, p.SetProperty(ctx, engine.VolumeProperty, engine.DoubleNode(80)))

	for _, c := range eng.Recorded() {
		assert.NotEqual(t, "CommandAsync", c.Method)
		assert.NotEqual(t, "SetPropertyAsync", c.Method)
	}
}

func TestSubmissionFailureResolvesImmediately(t *testing.T) {
	p, eng := newTestPlayer(t, Options{})
	ctx := testCtx(t)

	boom := errors.New("submission failed")
	eng.ErrCommand = boom

	err := p.Command(ctx, "stop")
	assert.ErrorIs(t, err, boom)

	// nothing left pending
	p.reqMu.Lock()
	assert.Empty(t, p.pending)
	p.reqMu.Unlock()
}

func TestReplyKindMismatchDoesNotResolve(t *testing.T) {
	p, eng := newTestPlayer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Command(ctx, "stop") }()

	var reply uint64
	require.Eventually(t, func() bool {
		r, ok := lastAsyncReply(eng, "CommandAsync")
		reply = r
		return ok
	}, eventually, tick)

	// wrong event kind for this correlation ID: anomaly, logged, dropped
	eng.Push(enginetest.SetPropertyReply(reply, 0))

	select {
	case err := <-done:
		t.Fatalf("resolved by mismatched reply kind: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
