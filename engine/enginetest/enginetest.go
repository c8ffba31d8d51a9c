// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package enginetest provides a scripted in-memory engine for bridge tests:
// calls are recorded, events are played back from a queue.
package enginetest

import (
	"fmt"
	"sync"
	"time"

	"github.com/eliasverden/mpvlink/engine"
)

// Call is one recorded engine invocation.
type Call struct {
	Method string
	Args   []string
	Name   string
	Value  engine.Node
	Reply  uint64
	Format engine.Format
	Level  string
	ID     uint64
}

// Engine implements engine.Engine against an in-memory event queue.
type Engine struct {
	mu        sync.Mutex
	calls     []Call
	props     map[string]engine.Node
	observed  map[string]engine.Format
	hooks     map[string]int
	continued []uint64
	logLevel  string
	destroyed bool

	queue chan *engine.Event

	// ErrCommand and ErrSetProperty force submission failures when set.
	ErrCommand     error
	ErrSetProperty error
}

var _ engine.Engine = (*Engine)(nil)

func New() *Engine {
	return &Engine{
		props:    make(map[string]engine.Node),
		observed: make(map[string]engine.Format),
		hooks:    make(map[string]int),
		queue:    make(chan *engine.Event, 256),
	}
}

// Push queues an event for delivery through WaitEvent.
func (e *Engine) Push(ev *engine.Event) {
	e.queue <- ev
}

// SetProp primes a property value for GetProperty reads.
func (e *Engine) SetProp(name string, value engine.Node) {
	e.mu.Lock()
	e.props[name] = value
	e.mu.Unlock()
}

func (e *Engine) record(c Call) {
	e.mu.Lock()
	e.calls = append(e.calls, c)
	e.mu.Unlock()
}

func (e *Engine) Command(args []string) error {
	e.record(Call{Method: "Command", Args: args})
	return e.ErrCommand
}

func (e *Engine) CommandAsync(reply uint64, args []string) error {
	e.record(Call{Method: "CommandAsync", Args: args, Reply: reply})
	return e.ErrCommand
}

func (e *Engine) SetProperty(name string, value engine.Node) error {
	e.record(Call{Method: "SetProperty", Name: name, Value: value})
	if e.ErrSetProperty != nil {
		return e.ErrSetProperty
	}
	e.SetProp(name, value)
	return nil
}

func (e *Engine) SetPropertyAsync(reply uint64, name string, value engine.Node) error {
	e.record(Call{Method: "SetPropertyAsync", Name: name, Value: value, Reply: reply})
	return e.ErrSetProperty
}

func (e *Engine) GetProperty(name string) (engine.Node, error) {
	e.record(Call{Method: "GetProperty", Name: name})
	e.mu.Lock()
	v, ok := e.props[name]
	e.mu.Unlock()
	if !ok {
		return engine.Node{}, &engine.Error{Code: -8, Text: "property not found"}
	}
	return v, nil
}

func (e *Engine) ObserveProperty(reply uint64, name string, format engine.Format) error {
	e.record(Call{Method: "ObserveProperty", Name: name, Reply: reply, Format: format})
	e.mu.Lock()
	e.observed[name] = format
	e.mu.Unlock()
	return nil
}

func (e *Engine) HookAdd(reply uint64, name string, priority int) error {
	e.record(Call{Method: "HookAdd", Name: name, Reply: reply})
	e.mu.Lock()
	e.hooks[name] = priority
	e.mu.Unlock()
	return nil
}

func (e *Engine) HookContinue(id uint64) error {
	e.record(Call{Method: "HookContinue", ID: id})
	e.mu.Lock()
	e.continued = append(e.continued, id)
	e.mu.Unlock()
	return nil
}

func (e *Engine) ErrorText(code int) string {
	return fmt.Sprintf("fake engine error %d", code)
}

func (e *Engine) RequestLogMessages(level string) error {
	e.record(Call{Method: "RequestLogMessages", Level: level})
	e.mu.Lock()
	e.logLevel = level
	e.mu.Unlock()
	return nil
}

func (e *Engine) WaitEvent(timeout time.Duration) *engine.Event {
	select {
	case ev := <-e.queue:
		return ev
	case <-time.After(timeout):
		return nil
	}
}

func (e *Engine) TerminateDestroy() {
	e.mu.Lock()
	e.destroyed = true
	e.mu.Unlock()
}

// Recorded returns a snapshot of all calls so far.
func (e *Engine) Recorded() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

// Continued returns the hook IDs acknowledged so far.
func (e *Engine) Continued() []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]uint64, len(e.continued))
	copy(out, e.continued)
	return out
}

// Observing reports whether name was registered for observation.
func (e *Engine) Observing(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.observed[name]
	return ok
}

// HookRegistered reports whether the named hook was added.
func (e *Engine) HookRegistered(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.hooks[name]
	return ok
}

// Destroyed reports whether TerminateDestroy ran.
func (e *Engine) Destroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroyed
}

// LogLevel returns the last requested log level.
func (e *Engine) LogLevel() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.logLevel
}

// Event constructors for playback scripts.

func PropertyChange(name string, value engine.Node) *engine.Event {
	return &engine.Event{
		ID:   engine.EventPropertyChange,
		Prop: &engine.PropertyData{Name: name, Value: value},
	}
}

func IdleActive() *engine.Event {
	return PropertyChange(engine.IdleActiveProperty, engine.FlagNode(true))
}

func StartFile() *engine.Event {
	return &engine.Event{ID: engine.EventStartFile}
}

func CommandReply(reply uint64, code int) *engine.Event {
	return &engine.Event{ID: engine.EventCommandReply, ReplyID: reply, Err: code}
}

func SetPropertyReply(reply uint64, code int) *engine.Event {
	return &engine.Event{ID: engine.EventSetPropertyReply, ReplyID: reply, Err: code}
}

func Hook(name string, id uint64) *engine.Event {
	return &engine.Event{ID: engine.EventHook, Hook: &engine.HookData{Name: name, ID: id}}
}

func LogMessage(prefix, level, text string) *engine.Event {
	return &engine.Event{ID: engine.EventLogMessage, Log: &engine.LogData{Prefix: prefix, Level: level, Text: text}}
}
