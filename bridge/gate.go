// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import "sync/atomic"

// gateState names the two phases of a transition gate.
type gateState uint32

const (
	// gateSuppressed drops updates for the gated group: a user operation is
	// in flight whose engine-side echo would be misleading.
	gateSuppressed gateState = iota
	// gateTracking passes engine updates through unmodified.
	gateTracking
)

// gate guards one group of state transitions against transient engine signals
// during a known operation window. Suppressed immediately before the
// triggering operation, restored once the operation's own explicit update has
// been applied.
type gate struct {
	v atomic.Uint32
}

func newGate(initial gateState) *gate {
	g := &gate{}
	g.v.Store(uint32(initial))
	return g
}

func (g *gate) suppress() { g.v.Store(uint32(gateSuppressed)) }
func (g *gate) restore()  { g.v.Store(uint32(gateTracking)) }

func (g *gate) tracking() bool { return gateState(g.v.Load()) == gateTracking }
