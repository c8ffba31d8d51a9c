// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package bridge turns a playback engine's serialized event stream into a
// typed, observable player model: request/reply correlation, property
// observation routing, snapshot state synchronization with transition gates,
// and lifecycle hook interception.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eliasverden/mpvlink/engine"
	"github.com/eliasverden/mpvlink/logger"
)

var (
	// ErrDisposed is returned by every public operation once the player has
	// been disposed.
	ErrDisposed = errors.New("player is disposed")
	// ErrObserved means the key already has a listener.
	ErrObserved = errors.New("key already observed")
	// ErrNotObserved means no listener is registered for the key.
	ErrNotObserved = errors.New("key not observed")
)

// lifecycle states, strictly increasing.
type lifecycle int32

const (
	stateUninitialized lifecycle = iota
	stateCreating
	stateAwaitingIdle
	stateReady
	stateDisposing
	stateDisposed
)

// observeReplyID is the correlation ID used for all property observations;
// real request correlation starts at 1.
const observeReplyID = 0

const defaultDisposeGrace = 5 * time.Second

// baselineObservations is the property set registered during creation, with
// the payload format expected for each.
var baselineObservations = map[string]engine.Format{
	engine.PauseProperty:            engine.FormatFlag,
	engine.TimePosProperty:          engine.FormatDouble,
	engine.DurationProperty:         engine.FormatDouble,
	engine.PlaylistPosProperty:      engine.FormatInt64,
	engine.VolumeProperty:           engine.FormatDouble,
	engine.SpeedProperty:            engine.FormatDouble,
	engine.CoreIdleProperty:         engine.FormatFlag,
	engine.PausedForCacheProperty:   engine.FormatFlag,
	engine.CacheBufferingProperty:   engine.FormatDouble,
	engine.DemuxerCacheTimeProperty: engine.FormatDouble,
	engine.AudioParamsProperty:      engine.FormatNode,
	engine.AudioBitrateProperty:     engine.FormatDouble,
	engine.AudioDeviceProperty:      engine.FormatString,
	engine.AudioDeviceListProperty:  engine.FormatNode,
	engine.VideoOutParamsProperty:   engine.FormatNode,
	engine.TrackListProperty:        engine.FormatNode,
	engine.EOFReachedProperty:       engine.FormatFlag,
	engine.IdleActiveProperty:       engine.FormatFlag,
	engine.SubTextProperty:          engine.FormatString,
	engine.SecondarySubTextProperty: engine.FormatString,
}

// Attachment is a downstream consumer (a renderer, a remote surface) whose
// own readiness the player awaits before tearing down.
type Attachment interface {
	Ready() <-chan struct{}
}

// Player owns one engine handle and bridges its event stream to the
// observable state model. Create with New, release with Dispose.
type Player struct {
	eng    engine.Engine
	opts   Options
	logger logger.Interface

	// Feeds are the broadcast channels for state fields, logs and errors.
	Feeds *Feeds

	events     chan *engine.Event
	applyQueue chan func()
	quit       chan struct{}

	life      atomic.Int32
	lifeMu    sync.Mutex // serializes creation against disposal
	ready     chan struct{}
	readyOnce sync.Once
	setupDone atomic.Bool
	idleSeen  atomic.Bool

	stateMu sync.RWMutex
	state   PlayerState

	reqMu     sync.Mutex
	pending   map[uint64]*pendingRequest
	nextReply atomic.Uint64

	obsMu          sync.Mutex
	propObservers  map[string]PropertyListener
	eventObservers map[engine.EventID]EventListener
	engineObserved map[string]struct{}

	hookMu sync.Mutex
	hooks  map[string][]HookFunc

	plMu     sync.Mutex
	playlist []Media
	headers  map[string]map[string]string

	attMu      sync.Mutex
	attachment Attachment

	// currentPath is only touched from the dispatch goroutine.
	currentPath string

	playbackGate  *gate
	bufferingGate *gate
	playlistGate  *gate

	bitrates  *BitrateCache
	estimator Estimator
}

// New wraps an already constructed engine handle. The creation sequence
// registers the baseline observation set, the log-level request and the four
// lifecycle hooks, then starts the event pump and dispatcher. The player is
// not ready until the engine reports idle and the sequence has completed;
// public operations wait for that on their own.
func New(eng engine.Engine, opts Options) (*Player, error) {
	if eng == nil {
		return nil, errors.New("bridge: nil engine")
	}
	opts = opts.withDefaults()

	p := &Player{
		eng:            eng,
		opts:           opts,
		logger:         opts.Logger,
		Feeds:          newFeeds(),
		events:         make(chan *engine.Event),
		applyQueue:     make(chan func(), 16),
		quit:           make(chan struct{}),
		ready:          make(chan struct{}),
		state:          initialState(),
		pending:        make(map[uint64]*pendingRequest),
		propObservers:  make(map[string]PropertyListener),
		eventObservers: make(map[engine.EventID]EventListener),
		engineObserved: make(map[string]struct{}),
		hooks:          make(map[string][]HookFunc),
		headers:        make(map[string]map[string]string),
		playbackGate:   newGate(gateSuppressed),
		bufferingGate:  newGate(gateTracking),
		playlistGate:   newGate(gateTracking),
		bitrates:       opts.BitrateCache,
		estimator:      opts.Estimator,
	}

	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()
	p.life.Store(int32(stateCreating))

	for name, value := range opts.EngineOptions {
		if err := eng.SetProperty(name, engine.StringNode(value)); err != nil {
			p.logger.PrintError("SetProperty "+name, err)
		}
	}
	if opts.Volume > 0 {
		if err := eng.SetProperty(engine.VolumeProperty, engine.DoubleNode(opts.Volume)); err != nil {
			p.logger.PrintError("SetProperty volume", err)
		}
	}

	for name, format := range baselineObservations {
		p.engineObserved[name] = struct{}{}
		if err := eng.ObserveProperty(observeReplyID, name, format); err != nil {
			p.logger.PrintError("ObserveProperty "+name, err)
		}
	}

	if err := eng.RequestLogMessages(opts.LogLevel); err != nil {
		p.logger.PrintError("RequestLogMessages", err)
	}

	for _, hook := range []string{
		engine.HookOnLoad,
		engine.HookOnUnload,
		engine.HookOnLoadFail,
		engine.HookOnPreloaded,
	} {
		if err := eng.HookAdd(observeReplyID, hook, 0); err != nil {
			p.logger.PrintError("HookAdd "+hook, err)
		}
	}

	go p.pump()
	go p.run()

	register(p)

	p.life.Store(int32(stateAwaitingIdle))
	p.setupDone.Store(true)
	p.maybeReady()

	return p, nil
}

// maybeReady completes the one-shot readiness signal once both conditions
// hold: the engine reported idle-active and the creation sequence finished.
// Requiring both keeps an idle event that raced ahead of setup from signaling
// readiness early.
func (p *Player) maybeReady() {
	if !p.setupDone.Load() || !p.idleSeen.Load() {
		return
	}
	p.readyOnce.Do(func() {
		p.life.CompareAndSwap(int32(stateAwaitingIdle), int32(stateReady))
		close(p.ready)
	})
}

// WaitUntilReady blocks until the player is ready, disposed, or ctx gives up.
func (p *Player) WaitUntilReady(ctx context.Context) error {
	if p.isDisposed() {
		return ErrDisposed
	}
	select {
	case <-p.ready:
		if p.isDisposed() {
			return ErrDisposed
		}
		return nil
	case <-p.quit:
		return ErrDisposed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) isDisposed() bool {
	return lifecycle(p.life.Load()) >= stateDisposing
}

// State returns the current immutable snapshot.
func (p *Player) State() PlayerState {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

// enqueueState hands an explicit state mutation to the dispatch goroutine so
// snapshot writes stay single-writer.
func (p *Player) enqueueState(fn func()) {
	select {
	case p.applyQueue <- fn:
	case <-p.quit:
	}
}

// Command issues an engine command once the player is ready. In asynchronous
// mode (the default) it returns after the correlated reply event arrives.
func (p *Player) Command(ctx context.Context, args ...string) error {
	if err := p.WaitUntilReady(ctx); err != nil {
		return err
	}
	return p.submitCommand(ctx, args)
}

// CommandNoWait issues a command without waiting for readiness. Meant for
// configuration that must reach the engine during startup.
func (p *Player) CommandNoWait(ctx context.Context, args ...string) error {
	if p.isDisposed() {
		return ErrDisposed
	}
	return p.submitCommand(ctx, args)
}

// SetProperty writes an engine property once the player is ready.
func (p *Player) SetProperty(ctx context.Context, name string, value engine.Node) error {
	if err := p.WaitUntilReady(ctx); err != nil {
		return err
	}
	return p.submitSetProperty(ctx, name, value)
}

// SetPropertyNoWait writes a property without waiting for readiness.
func (p *Player) SetPropertyNoWait(ctx context.Context, name string, value engine.Node) error {
	if p.isDisposed() {
		return ErrDisposed
	}
	return p.submitSetProperty(ctx, name, value)
}

// GetProperty reads an engine property once the player is ready.
func (p *Player) GetProperty(ctx context.Context, name string) (engine.Node, error) {
	if err := p.WaitUntilReady(ctx); err != nil {
		return engine.Node{}, err
	}
	return p.eng.GetProperty(name)
}

// Attach registers the downstream consumer whose readiness Dispose awaits.
func (p *Player) Attach(a Attachment) {
	p.attMu.Lock()
	p.attachment = a
	p.attMu.Unlock()
}

func (p *Player) attached() Attachment {
	p.attMu.Lock()
	defer p.attMu.Unlock()
	return p.attachment
}

// Dispose tears the player down: awaits readiness and any attachment, leaves
// the process-wide registry, releases the broadcast feeds, asks the engine to
// quit softly and schedules a hard terminate as a safety net. Pending
// asynchronous requests are abandoned, not resolved.
func (p *Player) Dispose(ctx context.Context) error {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()

	if p.isDisposed() {
		return ErrDisposed
	}
	prev := p.life.Load()
	p.life.Store(int32(stateDisposing))

	select {
	case <-p.ready:
	case <-ctx.Done():
		p.life.Store(prev)
		return fmt.Errorf("dispose: %w", ctx.Err())
	}
	if att := p.attached(); att != nil {
		select {
		case <-att.Ready():
		case <-ctx.Done():
			p.life.Store(prev)
			return fmt.Errorf("dispose: %w", ctx.Err())
		}
	}

	unregister(p)
	p.life.Store(int32(stateDisposed))
	close(p.quit)
	p.Feeds.closeAll()

	if err := p.eng.Command([]string{"quit"}); err != nil {
		p.logger.PrintError("quit", err)
	}
	// the soft quit may not release every native resource
	time.AfterFunc(p.opts.DisposeGrace, p.eng.TerminateDestroy)

	return nil
}
