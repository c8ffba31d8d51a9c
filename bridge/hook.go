// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/eliasverden/mpvlink/engine"
)

// HookFunc runs at an engine lifecycle point. The engine is halted until all
// callbacks of the point have completed, so keep them short. Errors and
// panics are logged and never block hook continuation.
type HookFunc func(ctx context.Context) error

// OnLoad registers fn to run before a new item starts decoding.
func (p *Player) OnLoad(fn HookFunc) { p.addHook(engine.HookOnLoad, fn) }

// OnUnload registers fn to run after the current item is torn down.
func (p *Player) OnUnload(fn HookFunc) { p.addHook(engine.HookOnUnload, fn) }

// OnLoadFail registers fn to run when an item fails to load.
func (p *Player) OnLoadFail(fn HookFunc) { p.addHook(engine.HookOnLoadFail, fn) }

// OnPreloaded registers fn to run once an item is demuxed but not yet decoded.
func (p *Player) OnPreloaded(fn HookFunc) { p.addHook(engine.HookOnPreloaded, fn) }

func (p *Player) addHook(point string, fn HookFunc) {
	p.hookMu.Lock()
	p.hooks[point] = append(p.hooks[point], fn)
	p.hookMu.Unlock()
}

// handleHook runs the point's callback chain and built-in side effects, then
// acknowledges the hook. The acknowledgement is unconditional and happens
// exactly once: a broken callback degrades functionality, a missing
// continuation wedges playback.
func (p *Player) handleHook(ctx context.Context, hd *engine.HookData) {
	defer func() {
		if err := p.eng.HookContinue(hd.ID); err != nil {
			p.logger.PrintError("HookContinue "+hd.Name, err)
		}
	}()

	p.hookMu.Lock()
	chain := make([]HookFunc, len(p.hooks[hd.Name]))
	copy(chain, p.hooks[hd.Name])
	p.hookMu.Unlock()

	for i, fn := range chain {
		p.runHookFunc(ctx, hd.Name, i, fn)
	}

	switch hd.Name {
	case engine.HookOnLoad:
		p.injectLoadProperties()
	case engine.HookOnUnload:
		p.clearLoadProperties()
	}
}

func (p *Player) runHookFunc(ctx context.Context, point string, idx int, fn HookFunc) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("bridge: %s hook %d panicked: %v", point, idx, r)
		}
	}()
	if err := fn(ctx); err != nil {
		p.logger.Printf("bridge: %s hook %d failed: %v", point, idx, err)
	}
}

// injectLoadProperties applies the per-item side channel before the engine
// opens the source: custom HTTP headers registered for the resolving URI, and
// start/end trim bounds declared on the queued item.
func (p *Player) injectLoadProperties() {
	node, err := p.eng.GetProperty(engine.PathProperty)
	if err != nil {
		p.logger.PrintError("GetProperty path", err)
		return
	}
	uri, ok := node.AsString()
	if !ok {
		return
	}
	p.currentPath = uri

	if headers := p.headersFor(uri); len(headers) > 0 {
		fields := lo.MapToSlice(headers, func(k, v string) string {
			return k + ": " + v
		})
		sort.Strings(fields)
		nodes := lo.Map(fields, func(f string, _ int) engine.Node {
			return engine.StringNode(f)
		})
		if err := p.eng.SetProperty(engine.HTTPHeaderFieldsProperty, engine.ArrayNode(nodes...)); err != nil {
			p.logger.PrintError("SetProperty http-header-fields", err)
		}
	}

	item, ok := p.resolvingItem()
	if !ok {
		return
	}
	if item.Start > 0 {
		if err := p.eng.SetProperty(engine.StartProperty, engine.StringNode(formatSeconds(item.Start))); err != nil {
			p.logger.PrintError("SetProperty start", err)
		}
	}
	if item.End > 0 {
		if err := p.eng.SetProperty(engine.EndProperty, engine.StringNode(formatSeconds(item.End))); err != nil {
			p.logger.PrintError("SetProperty end", err)
		}
	}
}

// clearLoadProperties resets the side channel after unload so the next item
// starts from a clean slate.
func (p *Player) clearLoadProperties() {
	if err := p.eng.SetProperty(engine.HTTPHeaderFieldsProperty, engine.ArrayNode()); err != nil {
		p.logger.PrintError("SetProperty http-header-fields", err)
	}
	if err := p.eng.SetProperty(engine.StartProperty, engine.StringNode("none")); err != nil {
		p.logger.PrintError("SetProperty start", err)
	}
	if err := p.eng.SetProperty(engine.EndProperty, engine.StringNode("none")); err != nil {
		p.logger.PrintError("SetProperty end", err)
	}
}

// resolvingItem looks up the queued item the engine is currently resolving.
func (p *Player) resolvingItem() (Media, bool) {
	node, err := p.eng.GetProperty(engine.PlaylistPosProperty)
	if err != nil {
		return Media{}, false
	}
	idx, ok := node.AsInt64()
	if !ok {
		return Media{}, false
	}

	p.plMu.Lock()
	defer p.plMu.Unlock()
	if idx < 0 || idx >= int64(len(p.playlist)) {
		return Media{}, false
	}
	return p.playlist[idx], true
}

// headersFor returns the header map registered for uri, if any.
func (p *Player) headersFor(uri string) map[string]string {
	p.plMu.Lock()
	defer p.plMu.Unlock()
	return p.headers[uri]
}

// formatSeconds renders a duration the way the engine's position properties
// expect it: seconds with millisecond precision.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
