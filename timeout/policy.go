// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"time"

	"github.com/gogama/restx/request"
)

// A Policy decides the timeout of each request attempt made by an
// execution, including the reauthenticated retry.
//
// The timeout covers the whole attempt: connecting, sending the body,
// receiving the headers and reading the response body. When a result is
// materialized as a stream, the timeout keeps running while the caller
// reads it.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next request attempt
	// of execution e. A non-positive value means no timeout.
	Timeout(e *request.Execution) time.Duration
}

// DefaultTimeout is the attempt timeout of DefaultPolicy.
const DefaultTimeout = 100 * time.Second

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 100 seconds on each attempt.
var DefaultPolicy Policy = Fixed(DefaultTimeout)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(0)

// Fixed constructs a timeout policy that uses the same value d for
// every attempt. A non-positive d means no timeout.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (f fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(f)
}

// Attempt derives the context for the next attempt of e from parent,
// applying the timeout chosen by p. The returned cancel function must
// be called once the attempt's response body has been consumed.
func Attempt(parent context.Context, p Policy, e *request.Execution) (context.Context, context.CancelFunc) {
	if p == nil {
		p = DefaultPolicy
	}
	if d := p.Timeout(e); d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}
