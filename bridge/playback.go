// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/eliasverden/mpvlink/engine"
)

// SetPlaylist replaces the queued items the bridge knows about and registers
// their per-item headers. It does not load anything by itself.
func (p *Player) SetPlaylist(items []Media) {
	p.plMu.Lock()
	defer p.plMu.Unlock()

	p.playlist = make([]Media, len(items))
	copy(p.playlist, items)

	p.headers = make(map[string]map[string]string, len(items))
	for _, item := range items {
		if len(item.Headers) > 0 {
			p.headers[item.URI] = item.Headers
		}
	}
}

// RegisterHeaders attaches a custom header map to a source identifier outside
// of any playlist entry.
func (p *Player) RegisterHeaders(uri string, headers map[string]string) {
	p.plMu.Lock()
	defer p.plMu.Unlock()
	p.headers[uri] = headers
}

// Play loads and starts the playlist entry at index. The playback gate stays
// suppressed until the engine actually starts the item, so the load itself
// cannot fire a spurious "now playing" transition; the operation publishes
// its own explicit update instead.
func (p *Player) Play(ctx context.Context, index int) error {
	p.plMu.Lock()
	if index < 0 || index >= len(p.playlist) {
		p.plMu.Unlock()
		return errors.New("invalid playlist entry")
	}
	item := p.playlist[index]
	p.plMu.Unlock()

	if err := p.WaitUntilReady(ctx); err != nil {
		return err
	}

	p.playbackGate.suppress()
	if err := p.submitCommand(ctx, []string{"loadfile", item.URI}); err != nil {
		p.playbackGate.restore()
		return err
	}
	if err := p.submitSetProperty(ctx, engine.PauseProperty, engine.FlagNode(false)); err != nil {
		p.logger.PrintError("setprop pause", err)
	}

	p.enqueueState(func() {
		st := p.snapshot()
		st.Playing = true
		st.Completed = false
		st.PlaylistPos = index
		p.commit(st)
		p.Feeds.Playing.publish(true)
		p.Feeds.PlaylistPos.publish(index)
	})
	return nil
}

// Pause suspends playback. The buffering gate is suppressed for the duration
// of the operation: the idle core this causes is not buffering.
func (p *Player) Pause(ctx context.Context) error {
	if err := p.WaitUntilReady(ctx); err != nil {
		return err
	}

	p.bufferingGate.suppress()
	if err := p.submitSetProperty(ctx, engine.PauseProperty, engine.FlagNode(true)); err != nil {
		p.bufferingGate.restore()
		return err
	}

	p.enqueueState(func() {
		st := p.snapshot()
		st.Playing = false
		p.commit(st)
		p.Feeds.Playing.publish(false)
	})
	return nil
}

// Resume continues paused playback.
func (p *Player) Resume(ctx context.Context) error {
	if err := p.WaitUntilReady(ctx); err != nil {
		return err
	}
	if err := p.submitSetProperty(ctx, engine.PauseProperty, engine.FlagNode(false)); err != nil {
		return err
	}

	p.enqueueState(func() {
		st := p.snapshot()
		st.Playing = true
		st.Completed = false
		p.commit(st)
		p.Feeds.Playing.publish(true)
	})
	return nil
}

// PlayPause toggles between Pause and Resume based on the current snapshot.
func (p *Player) PlayPause(ctx context.Context) error {
	if p.State().Playing {
		return p.Pause(ctx)
	}
	return p.Resume(ctx)
}

// Stop halts playback and unloads the current item.
func (p *Player) Stop(ctx context.Context) error {
	if err := p.WaitUntilReady(ctx); err != nil {
		return err
	}
	return p.submitCommand(ctx, []string{"stop"})
}

// Seek jumps to an absolute position within the current item.
func (p *Player) Seek(ctx context.Context, position time.Duration) error {
	if err := p.WaitUntilReady(ctx); err != nil {
		return err
	}
	return p.submitCommand(ctx, []string{"seek", formatSeconds(position), "absolute"})
}

// SetVolume sets playback volume in percent, clamped to 0..100.
func (p *Player) SetVolume(ctx context.Context, volume float64) error {
	if volume > 100 {
		volume = 100
	} else if volume < 0 {
		volume = 0
	}
	return p.SetProperty(ctx, engine.VolumeProperty, engine.DoubleNode(volume))
}

// SetRate sets the playback speed multiplier.
func (p *Player) SetRate(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return errors.New("rate must be positive")
	}
	return p.SetProperty(ctx, engine.SpeedProperty, engine.DoubleNode(rate))
}

// Shuffle randomizes playlist order. The playlist gate is suppressed so the
// engine's own index update does not double-apply on top of the explicit one
// published here.
func (p *Player) Shuffle(ctx context.Context) error {
	return p.reorderPlaylist(ctx, "playlist-shuffle")
}

// Unshuffle restores the original playlist order.
func (p *Player) Unshuffle(ctx context.Context) error {
	return p.reorderPlaylist(ctx, "playlist-unshuffle")
}

func (p *Player) reorderPlaylist(ctx context.Context, command string) error {
	if err := p.WaitUntilReady(ctx); err != nil {
		return err
	}

	p.playlistGate.suppress()
	if err := p.submitCommand(ctx, []string{command}); err != nil {
		p.playlistGate.restore()
		return err
	}

	node, err := p.eng.GetProperty(engine.PlaylistPosProperty)
	if err != nil {
		p.playlistGate.restore()
		return err
	}
	index, ok := node.AsInt64()
	if !ok {
		p.playlistGate.restore()
		return errors.New("unexpected " + engine.PlaylistPosProperty + " format " + strconv.Itoa(int(node.Kind)))
	}

	p.enqueueState(func() {
		st := p.snapshot()
		st.PlaylistPos = int(index)
		p.commit(st)
		p.Feeds.PlaylistPos.publish(st.PlaylistPos)
		p.playlistGate.restore()
	})
	return nil
}
