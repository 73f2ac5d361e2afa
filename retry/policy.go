// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"errors"

	"github.com/gogama/restx/request"
)

// A Policy decides, after every attempt of an execution, whether the
// invoker should send the request again. Decide may block, for example
// while credentials are refreshed, and must honor ctx while it does.
//
// Implementations of Policy must be safe for concurrent use by
// multiple goroutines. Any per-request state must be stored on the
// Execution, never on the Policy.
type Policy interface {
	Decide(ctx context.Context, e *request.Execution) bool
}

// Never is a policy that never retries.
var Never Policy = never{}

type never struct{}

func (never) Decide(_ context.Context, _ *request.Execution) bool {
	return false
}

// A RefreshFunc synchronously renews the caller's credentials after an
// unauthorized response. A nil return value means the refresh
// succeeded and the request should be sent again.
type RefreshFunc func(ctx context.Context) error

// An AsyncRefreshFunc starts renewing the caller's credentials and
// returns a channel on which the outcome is delivered. A nil error
// received from the channel means the refresh succeeded.
type AsyncRefreshFunc func(ctx context.Context) <-chan error

// ErrNoRefresh is recorded by Reauth when an unauthorized response is
// received but no refresh callback is configured.
var ErrNoRefresh = errors.New("restx/retry: no refresh callback configured")

var errClosed = errors.New("restx/retry: refresh channel closed without a result")

// A State is the reauthentication state of one execution.
type State int

const (
	// Initial is the state of an execution before its first attempt is
	// evaluated.
	Initial State = iota
	// Retried is the state of an execution whose credentials were
	// refreshed and which is sending its single retry.
	Retried
	// Done is the final state. No further retry is ever made.
	Done
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Retried:
		return "retried"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

type stateKey struct{}

type refreshErrKey struct{}

// StateOf returns the reauthentication state of e.
func StateOf(e *request.Execution) State {
	s, _ := e.Value(stateKey{}).(State)
	return s
}

// RefreshErr returns the error reported by the refresh attempt made
// during e, or nil if no refresh was attempted or it succeeded.
func RefreshErr(e *request.Execution) error {
	err, _ := e.Value(refreshErrKey{}).(error)
	return err
}

// Reauth is the single-retry reauthentication policy.
//
// When the first attempt of an execution receives a 401 (Unauthorized)
// response, Reauth invokes the refresh callbacks. If a refresh
// succeeds, Decide returns true exactly once, and the invoker sends the
// request again with freshly evaluated authorization. Whatever the
// outcome of the retry, the execution then moves to Done and is never
// retried again. If no callback is configured, or refresh fails, the
// execution moves straight to Done and the original 401 response is
// returned unchanged.
//
// Refresh is tried before RefreshAsync. RefreshAsync is only consulted
// if Refresh is nil or fails.
type Reauth struct {
	// Disabled turns the policy off. A disabled Reauth never retries.
	Disabled bool

	// Refresh is the synchronous refresh callback.
	Refresh RefreshFunc

	// RefreshAsync is the asynchronous refresh callback.
	RefreshAsync AsyncRefreshFunc
}

// Decide implements Policy.
func (p *Reauth) Decide(ctx context.Context, e *request.Execution) bool {
	switch StateOf(e) {
	case Retried:
		e.SetValue(stateKey{}, Done)
		return false
	case Done:
		return false
	}

	if p == nil || p.Disabled || !Trigger(e) {
		e.SetValue(stateKey{}, Done)
		return false
	}

	// The state moves to Done before the callbacks run, so a refresh
	// callback which itself fails cannot cause a second evaluation.
	e.SetValue(stateKey{}, Done)
	if err := p.refresh(ctx); err != nil {
		e.SetValue(refreshErrKey{}, err)
		return false
	}

	e.SetValue(stateKey{}, Retried)
	return true
}

func (p *Reauth) refresh(ctx context.Context) error {
	err := ErrNoRefresh
	if p.Refresh != nil {
		if err = p.Refresh(ctx); err == nil {
			return nil
		}
	}
	if p.RefreshAsync != nil {
		return await(ctx, p.RefreshAsync(ctx))
	}
	return err
}

func await(ctx context.Context, ch <-chan error) error {
	if ch == nil {
		return errClosed
	}
	select {
	case err, ok := <-ch:
		if !ok {
			return errClosed
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
