// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"github.com/eliasverden/mpvlink/engine"
)

// PropertyListener receives the new value of an observed property.
type PropertyListener func(value engine.Node)

// EventListener receives a matching raw engine event.
type EventListener func(ev *engine.Event)

// ObserveProperty routes change events for name to fn. At most one listener
// per property: a second Observe for the same name fails with ErrObserved.
// Properties outside the baseline observation set are additionally registered
// with the engine in node format.
func (p *Player) ObserveProperty(name string, fn PropertyListener) error {
	if p.isDisposed() {
		return ErrDisposed
	}

	p.obsMu.Lock()
	defer p.obsMu.Unlock()

	if _, dup := p.propObservers[name]; dup {
		return ErrObserved
	}
	p.propObservers[name] = fn

	if _, known := p.engineObserved[name]; !known {
		p.engineObserved[name] = struct{}{}
		if err := p.eng.ObserveProperty(observeReplyID, name, engine.FormatNode); err != nil {
			p.logger.PrintError("ObserveProperty "+name, err)
		}
	}
	return nil
}

// UnobserveProperty removes the listener for name. Fails with ErrNotObserved
// when no listener is registered. The engine-side observation stays active:
// the state synchronizer may still depend on it.
func (p *Player) UnobserveProperty(name string) error {
	if p.isDisposed() {
		return ErrDisposed
	}

	p.obsMu.Lock()
	defer p.obsMu.Unlock()

	if _, ok := p.propObservers[name]; !ok {
		return ErrNotObserved
	}
	delete(p.propObservers, name)
	return nil
}

// ObserveEvent routes raw events with the given ID to fn, one listener per ID.
func (p *Player) ObserveEvent(id engine.EventID, fn EventListener) error {
	if p.isDisposed() {
		return ErrDisposed
	}

	p.obsMu.Lock()
	defer p.obsMu.Unlock()

	if _, dup := p.eventObservers[id]; dup {
		return ErrObserved
	}
	p.eventObservers[id] = fn
	return nil
}

// UnobserveEvent removes the listener for id.
func (p *Player) UnobserveEvent(id engine.EventID) error {
	if p.isDisposed() {
		return ErrDisposed
	}

	p.obsMu.Lock()
	defer p.obsMu.Unlock()

	if _, ok := p.eventObservers[id]; !ok {
		return ErrNotObserved
	}
	delete(p.eventObservers, id)
	return nil
}

// routeProperty hands a property change to its listener, if any. Listener
// panics are contained: the state synchronizer still runs for the same event.
func (p *Player) routeProperty(pd *engine.PropertyData) {
	p.obsMu.Lock()
	fn := p.propObservers[pd.Name]
	p.obsMu.Unlock()

	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("bridge: property listener %q panicked: %v", pd.Name, r)
		}
	}()
	fn(pd.Value)
}

// routeEvent hands a raw event to its listener, if any.
func (p *Player) routeEvent(ev *engine.Event) {
	p.obsMu.Lock()
	fn := p.eventObservers[ev.ID]
	p.obsMu.Unlock()

	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("bridge: event listener %s panicked: %v", ev.ID, r)
		}
	}()
	fn(ev)
}
