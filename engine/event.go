// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package engine

// EventID identifies the kind of an engine event.
type EventID int

const (
	EventNone EventID = iota
	// EventStartFile fires when the engine begins loading a new item.
	EventStartFile
	// EventPropertyChange delivers an observed property's new value.
	EventPropertyChange
	// EventSetPropertyReply completes an asynchronous property write.
	EventSetPropertyReply
	// EventCommandReply completes an asynchronous command.
	EventCommandReply
	// EventLogMessage delivers one engine log line.
	EventLogMessage
	// EventHook pauses the engine at a lifecycle point until the hook ID is
	// acknowledged via HookContinue.
	EventHook
)

func (id EventID) String() string {
	switch id {
	case EventNone:
		return "none"
	case EventStartFile:
		return "start-file"
	case EventPropertyChange:
		return "property-change"
	case EventSetPropertyReply:
		return "set-property-reply"
	case EventCommandReply:
		return "command-reply"
	case EventLogMessage:
		return "log-message"
	case EventHook:
		return "hook"
	}
	return "unknown"
}

// Event is one record from the engine's event stream. Err carries the raw
// engine result code (negative on failure). ReplyID echoes the correlation ID
// of the async call a reply event answers. At most one of Prop, Log and Hook
// is set, matching ID.
type Event struct {
	ID      EventID
	Err     int
	ReplyID uint64

	Prop *PropertyData
	Log  *LogData
	Hook *HookData
}

// PropertyData is the payload of a property-change event.
type PropertyData struct {
	Name  string
	Value Node
}

// LogData is the payload of a log-message event. Prefix names the engine
// subsystem the line came from.
type LogData struct {
	Prefix string
	Level  string
	Text   string
}

// HookData is the payload of a hook event. ID must be echoed back exactly
// once on HookContinue or playback wedges at the hook point.
type HookData struct {
	Name string
	ID   uint64
}
