// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import "sync"

// Process-wide registry of live players. Entries are added during creation
// and removed during disposal, so external surfaces (remotes, debug handlers)
// can enumerate what is still alive.
var (
	registryMu sync.Mutex
	registry   = make(map[*Player]struct{})
)

func register(p *Player) {
	registryMu.Lock()
	registry[p] = struct{}{}
	registryMu.Unlock()
}

func unregister(p *Player) {
	registryMu.Lock()
	delete(registry, p)
	registryMu.Unlock()
}

// Players returns the players currently registered, in no particular order.
func Players() []*Player {
	registryMu.Lock()
	defer registryMu.Unlock()

	out := make([]*Player, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	return out
}
