// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/eliasverden/mpvlink/bridge"
	"github.com/eliasverden/mpvlink/logger"
)

const (
	mprisPath      = "/org/mpris/MediaPlayer2"
	mprisPlayerIfc = "org.mpris.MediaPlayer2.Player"
	mprisBaseIfc   = "org.mpris.MediaPlayer2"
	mprisBusName   = "org.mpris.MediaPlayer2.mpvlink"
)

// MprisPlayer exports the player on the session bus following the MPRIS2
// spec. It also satisfies bridge.Attachment: the player's disposal waits for
// the export to have completed.
type MprisPlayer struct {
	dbus   *dbus.Conn
	player ControlledPlayer
	props  *prop.Properties
	logger logger.Interface

	ready  chan struct{}
	cancel func()
}

// RegisterMprisPlayer exports player on the session bus and starts mirroring
// the feeds' state into MPRIS properties.
func RegisterMprisPlayer(player ControlledPlayer, feeds *bridge.Feeds, logger_ logger.Interface) (mpp *MprisPlayer, err error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return
	}

	mpp = &MprisPlayer{
		dbus:   conn,
		player: player,
		logger: logger_,
		ready:  make(chan struct{}),
	}

	err = conn.ExportAll(mpp, mprisPath, mprisPlayerIfc)
	if err != nil {
		return
	}

	var mprisPlayer = map[string]*prop.Prop{
		"CanControl":     {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoNext":      {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoPrevious":  {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPause":       {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanSeek":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Metadata":       {Value: map[string]interface{}{}, Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"Position":       {Value: int64(0), Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Rate":           {Value: float64(1.0), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"Volume":         {Value: float64(0.0), Writable: true, Emit: prop.EmitTrue, Callback: mpp.volumeChange},
		"PlaybackStatus": {Value: "Stopped", Writable: false, Emit: prop.EmitTrue, Callback: nil},
	}

	var mediaPlayer = map[string]*prop.Prop{
		"CanQuit":             {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Identity":            {Value: "mpvlink", Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedUriSchemes": {Value: []string{}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedMimeTypes":  {Value: []string{}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	mpp.props, err = prop.Export(
		conn,
		mprisPath,
		map[string]map[string]*prop.Prop{
			mprisBaseIfc:   mediaPlayer,
			mprisPlayerIfc: mprisPlayer,
		},
	)
	if err != nil {
		return
	}

	n := &introspect.Node{
		Name: mprisPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       mprisPlayerIfc,
				Methods:    introspect.Methods(mpp),
				Properties: mpp.props.Introspection(mprisPlayerIfc),
			},
		},
	}
	err = conn.Export(introspect.NewIntrospectable(n), mprisPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		return
	}

	reply, err := conn.RequestName(mprisBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		err = errors.New("name already owned")
		return
	}

	states, cancel := feeds.State.Subscribe()
	mpp.cancel = cancel
	go mpp.mirror(states)

	close(mpp.ready)
	return
}

// Ready implements bridge.Attachment.
func (m *MprisPlayer) Ready() <-chan struct{} {
	return m.ready
}

func (m *MprisPlayer) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if err := m.dbus.Close(); err != nil {
		m.logger.PrintError("mpris Close", err)
	}
}

// mirror pushes every state snapshot into the exported MPRIS properties.
func (m *MprisPlayer) mirror(states <-chan bridge.PlayerState) {
	for st := range states {
		m.props.SetMust(mprisPlayerIfc, "PlaybackStatus", playbackStatus(st))
		m.props.SetMust(mprisPlayerIfc, "Position", st.Position.Microseconds())
		m.props.SetMust(mprisPlayerIfc, "Rate", st.Rate)
		m.props.SetMust(mprisPlayerIfc, "Metadata", map[string]interface{}{
			"mpris:length": st.Duration.Microseconds(),
		})
	}
}

func playbackStatus(st bridge.PlayerState) string {
	switch {
	case st.Completed:
		return "Stopped"
	case st.Playing:
		return "Playing"
	default:
		return "Paused"
	}
}

// Mandatory MPRIS methods.

func (m *MprisPlayer) Play() {
	if err := m.player.Resume(context.Background()); err != nil {
		m.logger.PrintError("mpris Play", err)
	}
}

func (m *MprisPlayer) Pause() {
	if err := m.player.Pause(context.Background()); err != nil {
		m.logger.PrintError("mpris Pause", err)
	}
}

func (m *MprisPlayer) PlayPause() {
	if err := m.player.PlayPause(context.Background()); err != nil {
		m.logger.PrintError("mpris PlayPause", err)
	}
}

func (m *MprisPlayer) Stop() {
	if err := m.player.Stop(context.Background()); err != nil {
		m.logger.PrintError("mpris Stop", err)
	}
}

func (m *MprisPlayer) Next() {
	st := m.player.State()
	if err := m.player.Play(context.Background(), st.PlaylistPos+1); err != nil {
		m.logger.PrintError("mpris Next", err)
	}
}

func (m *MprisPlayer) Previous() {
	st := m.player.State()
	if st.PlaylistPos <= 0 {
		return
	}
	if err := m.player.Play(context.Background(), st.PlaylistPos-1); err != nil {
		m.logger.PrintError("mpris Previous", err)
	}
}

func (m *MprisPlayer) Seek(offset int64) {
	st := m.player.State()
	target := st.Position + time.Duration(offset)*time.Microsecond
	if err := m.player.Seek(context.Background(), target); err != nil {
		m.logger.PrintError("mpris Seek", err)
	}
}

func (m *MprisPlayer) OpenUri(string) {
	// playlist management belongs to the application
}

func (m *MprisPlayer) SetPosition(_ string, position int64) {
	if err := m.player.Seek(context.Background(), time.Duration(position)*time.Microsecond); err != nil {
		m.logger.PrintError("mpris SetPosition", err)
	}
}

func (m *MprisPlayer) volumeChange(c *prop.Change) *dbus.Error {
	fVol := c.Value.(float64)

	// MPRIS volume is 0.0..1.0, the engine speaks percent
	percentVol := math.Round(fVol * 100)
	if err := m.player.SetVolume(context.Background(), percentVol); err != nil {
		m.logger.PrintError("volumeChange", err)
	} else {
		m.logger.Printf("mpris: adjust volume %f -> %.0f%%", fVol, percentVol)
	}
	return nil
}
