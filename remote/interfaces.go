// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"context"
	"time"

	"github.com/eliasverden/mpvlink/bridge"
)

// ControlledPlayer is the control surface a remote drives. *bridge.Player
// satisfies it.
type ControlledPlayer interface {
	State() bridge.PlayerState

	Play(ctx context.Context, index int) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	PlayPause(ctx context.Context) error
	Stop(ctx context.Context) error
	Seek(ctx context.Context, position time.Duration) error
	SetVolume(ctx context.Context, volume float64) error
}
