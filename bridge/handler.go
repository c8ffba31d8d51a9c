// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"context"
	"time"

	"github.com/eliasverden/mpvlink/engine"
)

// pump is the single consumer of the engine's event stream. It runs on its
// own goroutine and forwards every event into the bridge's channel, in the
// order the engine produced them.
func (p *Player) pump() {
	for {
		select {
		case <-p.quit:
			return
		default:
		}

		ev := p.eng.WaitEvent(time.Second)
		if ev == nil {
			continue
		}
		select {
		case p.events <- ev:
		case <-p.quit:
			return
		}
	}
}

// run is the event dispatcher: one event is processed fully, including
// awaited hook callbacks, before the next is drained. All state writes happen
// here, which is what makes snapshot transitions linearizable.
func (p *Player) run() {
	ctx := context.Background()
	for {
		select {
		case <-p.quit:
			return
		case ev := <-p.events:
			if ev == nil {
				return
			}
			p.dispatch(ctx, ev)
		case fn := <-p.applyQueue:
			fn()
		}
	}
}

func (p *Player) dispatch(ctx context.Context, ev *engine.Event) {
	p.routeEvent(ev)

	switch ev.ID {
	case engine.EventPropertyChange:
		if ev.Prop == nil {
			return
		}
		p.routeProperty(ev.Prop)
		p.applyProperty(ev.Prop)

	case engine.EventSetPropertyReply:
		p.resolvePending(requestSetProperty, ev.ReplyID, ev.Err)

	case engine.EventCommandReply:
		p.resolvePending(requestCommand, ev.ReplyID, ev.Err)

	case engine.EventLogMessage:
		if ev.Log != nil {
			p.handleLog(ev.Log)
		}

	case engine.EventHook:
		if ev.Hook != nil {
			p.handleHook(ctx, ev.Hook)
		}

	case engine.EventStartFile:
		p.handleStartFile()

	case engine.EventNone:
		// periodic wakeup, nothing to do

	default:
		p.logger.Printf("bridge: unhandled event id %v", ev.ID)
	}
}

// errorLogPrefixes are the engine subsystems whose error-level log lines are
// surfaced on the error feed in addition to the log feed.
var errorLogPrefixes = map[string]struct{}{
	"cplayer":   {},
	"stream":    {},
	"netstream": {},
	"file":      {},
	"vd":        {},
	"ad":        {},
}

func (p *Player) handleLog(ld *engine.LogData) {
	p.logger.Printf("[%s] %s: %s", ld.Prefix, ld.Level, ld.Text)
	p.Feeds.Log.publish(*ld)

	if ld.Level == "error" {
		if _, watched := errorLogPrefixes[ld.Prefix]; watched {
			p.Feeds.Error.publish(ld.Prefix + ": " + ld.Text)
		}
	}
}

// handleStartFile marks the load window closed: the engine has actually begun
// the new item, so play/pause signals are real again from here on.
func (p *Player) handleStartFile() {
	p.playbackGate.restore()

	st := p.snapshot()
	if st.Completed {
		st.Completed = false
		p.commit(st)
		p.Feeds.Completed.publish(false)
	}
}

// applyProperty is the state synchronizer: it derives a new snapshot from a
// recognized property change and broadcasts the affected field. Payloads
// whose tag does not match the property's expected format are dropped,
// transient mismatches are normal around item transitions.
func (p *Player) applyProperty(pd *engine.PropertyData) {
	st := p.snapshot()

	switch pd.Name {
	case engine.PauseProperty:
		paused, ok := pd.Value.AsFlag()
		if !ok {
			return
		}
		if paused {
			// the explicit pause operation's own update has landed
			p.bufferingGate.restore()
		}
		if !p.playbackGate.tracking() {
			return
		}
		st.Playing = !paused
		if st.Playing {
			st.Completed = false
		}
		p.commit(st)
		p.Feeds.Playing.publish(st.Playing)

	case engine.TimePosProperty:
		v, ok := pd.Value.AsDouble()
		if !ok {
			return
		}
		st.Position = secondsToDuration(v)
		p.commit(st)
		p.Feeds.Position.publish(st.Position)

	case engine.DurationProperty:
		v, ok := pd.Value.AsDouble()
		if !ok {
			return
		}
		st.Duration = secondsToDuration(v)
		st = p.maybeEstimateBitrate(st)
		p.commit(st)
		p.Feeds.Duration.publish(st.Duration)

	case engine.PlaylistPosProperty:
		v, ok := pd.Value.AsInt64()
		if !ok || !p.playlistGate.tracking() {
			return
		}
		st.PlaylistPos = int(v)
		p.commit(st)
		p.Feeds.PlaylistPos.publish(st.PlaylistPos)

	case engine.VolumeProperty:
		v, ok := pd.Value.AsDouble()
		if !ok {
			return
		}
		st.Volume = v
		p.commit(st)
		p.Feeds.Volume.publish(v)

	case engine.SpeedProperty:
		v, ok := pd.Value.AsDouble()
		if !ok {
			return
		}
		st.Rate = v
		p.commit(st)
		p.Feeds.Rate.publish(v)

	case engine.CoreIdleProperty:
		idle, ok := pd.Value.AsFlag()
		if !ok {
			return
		}
		if idle {
			// an idle core caused by an explicit pause is not buffering
			if !p.bufferingGate.tracking() {
				return
			}
			if !st.Playing {
				return
			}
			st.Buffering = true
		} else {
			p.bufferingGate.restore()
			st.Buffering = false
		}
		p.commit(st)
		p.Feeds.Buffering.publish(st.Buffering)

	case engine.PausedForCacheProperty:
		v, ok := pd.Value.AsFlag()
		if !ok {
			return
		}
		if v && !p.bufferingGate.tracking() {
			return
		}
		st.Buffering = v
		p.commit(st)
		p.Feeds.Buffering.publish(v)

	case engine.CacheBufferingProperty:
		v, ok := pd.Value.AsDouble()
		if !ok {
			return
		}
		st.BufferingPercent = v
		p.commit(st)
		p.Feeds.BufferingPercent.publish(v)

	case engine.DemuxerCacheTimeProperty:
		v, ok := pd.Value.AsDouble()
		if !ok {
			return
		}
		st.Buffer = rateAdjusted(secondsToDuration(v), st.Rate)
		p.commit(st)
		p.Feeds.Buffer.publish(st.Buffer)

	case engine.AudioParamsProperty:
		if _, ok := pd.Value.AsMap(); !ok {
			return
		}
		st.AudioParams = AudioParams{
			Format:       pd.Value.MapString("format"),
			SampleRate:   pd.Value.MapInt64("samplerate"),
			Channels:     pd.Value.MapString("channels"),
			ChannelCount: pd.Value.MapInt64("channel-count"),
		}
		p.commit(st)
		p.Feeds.AudioParams.publish(st.AudioParams)

	case engine.AudioBitrateProperty:
		v, ok := pd.Value.AsDouble()
		if !ok {
			return
		}
		if p.currentPath != "" && !bitrateReportedNatively(p.currentPath) {
			st = p.maybeEstimateBitrate(st)
		} else {
			st.AudioBitrate = int64(v)
		}
		p.commit(st)
		p.Feeds.AudioBitrate.publish(st.AudioBitrate)

	case engine.AudioDeviceProperty:
		v, ok := pd.Value.AsString()
		if !ok {
			return
		}
		st.AudioDevice = v
		p.commit(st)
		p.Feeds.AudioDevice.publish(v)

	case engine.AudioDeviceListProperty:
		devices, ok := decodeAudioDevices(pd.Value)
		if !ok {
			return
		}
		st.AudioDevices = devices
		p.commit(st)
		p.Feeds.AudioDevices.publish(devices)

	case engine.VideoOutParamsProperty:
		if _, ok := pd.Value.AsMap(); !ok {
			return
		}
		st.VideoParams = VideoParams{
			PixelFormat: pd.Value.MapString("pixelformat"),
			W:           pd.Value.MapInt64("w"),
			H:           pd.Value.MapInt64("h"),
			DW:          pd.Value.MapInt64("dw"),
			DH:          pd.Value.MapInt64("dh"),
			Rotate:      pd.Value.MapInt64("rotate"),
			Aspect:      pd.Value.MapDouble("aspect"),
		}
		st.Width, st.Height = displayDimensions(st.VideoParams)
		p.commit(st)
		p.Feeds.VideoParams.publish(st.VideoParams)

	case engine.TrackListProperty:
		list, ok := decodeTrackList(pd.Value)
		if !ok {
			return
		}
		st.Tracks = list
		p.commit(st)
		p.Feeds.Tracks.publish(list)

	case engine.EOFReachedProperty:
		v, ok := pd.Value.AsFlag()
		if !ok || !v {
			return
		}
		if !p.playbackGate.tracking() {
			return
		}
		// end of stream is terminal for the item's track metadata
		st.Completed = true
		st.Playing = false
		st.Buffering = false
		st.Tracks = defaultTrackList()
		p.commit(st)
		p.Feeds.Completed.publish(true)
		p.Feeds.Playing.publish(false)
		p.Feeds.Buffering.publish(false)
		p.Feeds.Tracks.publish(st.Tracks)

	case engine.IdleActiveProperty:
		v, ok := pd.Value.AsFlag()
		if !ok {
			return
		}
		if v {
			p.idleSeen.Store(true)
			p.maybeReady()
		}

	case engine.SubTextProperty:
		v, ok := pd.Value.AsString()
		if !ok {
			return
		}
		st.Subtitle[0] = v
		p.commit(st)
		p.Feeds.Subtitle.publish(st.Subtitle)

	case engine.SecondarySubTextProperty:
		v, ok := pd.Value.AsString()
		if !ok {
			return
		}
		st.Subtitle[1] = v
		p.commit(st)
		p.Feeds.Subtitle.publish(st.Subtitle)
	}
}

// maybeEstimateBitrate fills AudioBitrate through the fallback cache for
// source kinds the engine does not measure. Needs a known duration, otherwise
// the snapshot is returned untouched.
func (p *Player) maybeEstimateBitrate(st PlayerState) PlayerState {
	uri := p.currentPath
	if uri == "" || bitrateReportedNatively(uri) || st.Duration <= 0 {
		return st
	}
	v, err := p.bitrates.GetOrCompute(uri, func() (int64, error) {
		return p.estimator.Estimate(uri, st.Duration)
	})
	if err != nil {
		p.logger.PrintError("bitrate estimate "+uri, err)
		return st
	}
	st.AudioBitrate = v
	return st
}

func decodeAudioDevices(value engine.Node) ([]AudioDevice, bool) {
	entries, ok := value.AsArray()
	if !ok {
		return nil, false
	}
	devices := make([]AudioDevice, 0, len(entries))
	for _, n := range entries {
		if _, ok := n.AsMap(); !ok {
			continue
		}
		devices = append(devices, AudioDevice{
			Name:        n.MapString("name"),
			Description: n.MapString("description"),
		})
	}
	return devices, true
}

func (p *Player) snapshot() PlayerState {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

func (p *Player) commit(st PlayerState) {
	p.stateMu.Lock()
	p.state = st
	p.stateMu.Unlock()
	p.Feeds.State.publish(st)
}
