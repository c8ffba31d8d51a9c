// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package engine defines the types and the call surface mpvlink expects from
// a libmpv-style playback engine. The bridge owns everything in here; nothing
// crossing this boundary carries native pointers. Handle construction, native
// library discovery and rendering belong to the Engine implementation, not to
// this package.
package engine

import (
	"fmt"
	"time"
)

// Format identifies the payload representation requested for a property
// observation or carried by a property event.
type Format int

const (
	FormatNone Format = iota
	FormatFlag
	FormatDouble
	FormatInt64
	FormatString
	FormatNode
)

// Engine is the call surface the bridge drives. Implementations wrap a single
// native handle; every method maps to one engine call. All methods may be
// called from any goroutine except WaitEvent, which has exactly one caller:
// the bridge's pump goroutine.
type Engine interface {
	// Command issues a synchronous command, e.g. {"loadfile", uri}.
	Command(args []string) error
	// CommandAsync issues a command whose completion arrives later as a
	// command-reply event echoing reply.
	CommandAsync(reply uint64, args []string) error

	SetProperty(name string, value Node) error
	// SetPropertyAsync behaves like SetProperty but completes via a
	// set-property-reply event echoing reply.
	SetPropertyAsync(reply uint64, name string, value Node) error
	GetProperty(name string) (Node, error)

	// ObserveProperty subscribes to change events for name, delivered in the
	// requested format. reply is echoed in every matching event.
	ObserveProperty(reply uint64, name string, format Format) error

	// HookAdd registers for a named lifecycle hook. The engine halts at the
	// hook point until HookContinue is called with the delivered hook ID.
	HookAdd(reply uint64, name string, priority int) error
	HookContinue(id uint64) error

	// ErrorText renders a result code the way the engine describes it.
	ErrorText(code int) string

	// RequestLogMessages enables log-message events at or above level
	// ("fatal", "error", "warn", "info", "v", "debug", "trace").
	RequestLogMessages(level string) error

	// WaitEvent blocks up to timeout for the next engine event. A nil return
	// means the engine produced nothing within the timeout.
	WaitEvent(timeout time.Duration) *Event

	// TerminateDestroy synchronously tears down the native handle. After it
	// returns no other method may be called.
	TerminateDestroy()
}

// Error is a failed engine call: the raw negative result code plus the
// engine's human-readable rendering of it.
type Error struct {
	Code int
	Text string
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Text)
}

// IsErrorCode reports whether code signals failure. Engine calls return zero
// or positive codes on success.
func IsErrorCode(code int) bool { return code < 0 }
