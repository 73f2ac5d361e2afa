// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/restx/transient"
	"github.com/google/uuid"
)

// An Execution represents the state of a single logical REST request
// execution, including the reauthentication retry if one happens.
//
// Retry policies and event handlers may set values on an Execution
// using its SetValue method and read them back using the Value method.
// They should otherwise treat the exported fields as read-only. The
// one reasonable exception is changing the http.Request of the current
// attempt before it is sent, for example to sign it.
type Execution struct {
	// ID uniquely identifies the execution. It is also reported as the
	// ID of the result envelope, in log entries and on the trace span.
	ID uuid.UUID

	// Plan specifies the request plan being executed. It is nil until
	// the final URL has been built and validated.
	Plan *Plan

	// Start is the start time of the execution. It is assigned a
	// non-zero value when the execution starts, and this value remains
	// constant thereafter.
	Start time.Time

	// End is the end time of the execution. It contains the zero value
	// until the execution ends, when it is set to the current time.
	End time.Time

	// Attempt is the zero-based number of the current request attempt.
	// It is zero on the initial attempt and one on the reauthenticated
	// retry. No execution ever makes more than two attempts.
	Attempt int

	// Request specifies the HTTP request to be made in the current
	// attempt, or already made in the last attempt.
	Request *http.Request

	// Response specifies the HTTP response received in the most recent
	// request attempt. It is nil if the most recent attempt ended in an
	// error, or before the first response arrives.
	Response *http.Response

	// Err indicates the error which ended the execution, or the error
	// of the most recent attempt while the execution is in flight. A
	// transport failure always has the type *url.Error.
	Err error

	data context.Context
}

// StatusCode returns the status code of the HTTP response from the
// most recent request attempt. If there is no HTTP response, 0 is
// returned.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the HTTP response headers from the most recent
// request attempt. If there is no HTTP response, the nil header is
// returned, which is safe for read-only operations.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Response.Header
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has Ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended. Once it returns
// true there are no further changes to the execution.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently contains a timeout error.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// Canceled indicates whether Err currently reports a cancellation,
// either of the caller's context or by an on-start callback.
func (e *Execution) Canceled() bool {
	return transient.Categorize(e.Err) == transient.Canceled
}

// SetValue allows retry policies and event handlers to store arbitrary
// data in the execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
