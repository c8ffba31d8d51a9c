// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"context"

	"github.com/eliasverden/mpvlink/engine"
)

type requestKind int

const (
	requestSetProperty requestKind = iota
	requestCommand
)

func (k requestKind) String() string {
	if k == requestSetProperty {
		return "set-property"
	}
	return "command"
}

// pendingRequest is one in-flight asynchronous engine call awaiting its reply
// event. Resolved exactly once; abandoned without resolution if the engine is
// destroyed first.
type pendingRequest struct {
	kind requestKind
	done chan error
}

// registerPending allocates the next correlation ID and parks a completion
// slot under it. Correlation ID 0 is reserved for property observations.
func (p *Player) registerPending(kind requestKind) (uint64, chan error) {
	reply := p.nextReply.Add(1)
	done := make(chan error, 1)

	p.reqMu.Lock()
	p.pending[reply] = &pendingRequest{kind: kind, done: done}
	p.reqMu.Unlock()

	return reply, done
}

func (p *Player) dropPending(reply uint64) {
	p.reqMu.Lock()
	delete(p.pending, reply)
	p.reqMu.Unlock()
}

// resolvePending completes the request parked under reply. An unmatched or
// kind-mismatched reply is a non-fatal anomaly: logged, then dropped.
func (p *Player) resolvePending(kind requestKind, reply uint64, code int) {
	p.reqMu.Lock()
	req, ok := p.pending[reply]
	if ok {
		delete(p.pending, reply)
	}
	p.reqMu.Unlock()

	if !ok {
		p.logger.Printf("bridge: unmatched %s reply %d (code %d)", kind, reply, code)
		return
	}
	if req.kind != kind {
		p.logger.Printf("bridge: reply %d kind mismatch: pending %s, got %s", reply, req.kind, kind)
		return
	}

	var err error
	if engine.IsErrorCode(code) {
		err = &engine.Error{Code: code, Text: p.eng.ErrorText(code)}
	}
	req.done <- err
}

// submitCommand issues a command in the configured mode. Synchronous mode is
// fire-and-forget: no correlation, the immediate return is the outcome.
func (p *Player) submitCommand(ctx context.Context, args []string) error {
	if p.opts.SynchronousRequests {
		return p.eng.Command(args)
	}

	reply, done := p.registerPending(requestCommand)
	if err := p.eng.CommandAsync(reply, args); err != nil {
		p.dropPending(reply)
		return err
	}
	return p.awaitReply(ctx, reply, done)
}

// submitSetProperty issues a property write in the configured mode.
func (p *Player) submitSetProperty(ctx context.Context, name string, value engine.Node) error {
	if p.opts.SynchronousRequests {
		return p.eng.SetProperty(name, value)
	}

	reply, done := p.registerPending(requestSetProperty)
	if err := p.eng.SetPropertyAsync(reply, name, value); err != nil {
		p.dropPending(reply)
		return err
	}
	return p.awaitReply(ctx, reply, done)
}

// awaitReply blocks until the dispatcher resolves the completion. There is no
// internal timeout: a non-responding engine blocks the caller until the
// caller's own context gives up, at which point the request is abandoned and
// its eventual reply treated as unmatched.
func (p *Player) awaitReply(ctx context.Context, reply uint64, done chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		p.dropPending(reply)
		return ctx.Err()
	}
}
