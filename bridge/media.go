// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import "time"

// Media is one playable source as queued by the application. The bridge
// consumes this model, it does not manage it: Headers are injected before the
// engine opens the source, Start/End trim playback to a subrange.
type Media struct {
	URI   string
	Title string

	// Headers are extra HTTP request headers for network sources.
	Headers map[string]string

	// Start and End bound playback within the source. Zero means unset.
	Start time.Duration
	End   time.Duration
}
