// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"io"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/gogama/restx/transient"
	"github.com/google/uuid"
)

// An Envelope is the part of a result which does not depend on the
// content type. Lifecycle callbacks receive the envelope of the result
// being produced.
type Envelope struct {
	// ID identifies the execution which produced the envelope.
	ID uuid.UUID

	// StatusCode is the HTTP status code of the final response, or 0 if
	// no response was received.
	StatusCode int

	// Status is the status of the final response, for example
	// "200 OK". It is empty if no response was received.
	Status string

	// Proto is the protocol of the final response, for example
	// "HTTP/1.1" or "HTTP/2.0".
	Proto string

	// Header contains the headers of the final response.
	Header http.Header

	// Raw is the response body as received, after gzip decoding. It is
	// nil for stream results.
	Raw []byte

	// Err is the error which ended the execution, or nil. An error
	// status code is not an error.
	Err error

	// Duration is the elapsed time of the execution.
	Duration time.Duration

	// Attempts is the number of attempts sent, 2 if the credentials were
	// refreshed and the request sent again.
	Attempts int

	content  interface{}
	closer   io.Closer
	once     sync.Once
	closeErr error
}

// Success reports whether the execution received a 2XX response and
// materialized it without error.
func (env *Envelope) Success() bool {
	return env.Err == nil && env.StatusCode >= 200 && env.StatusCode <= 299
}

// Canceled reports whether the execution was canceled, either through
// its context or by the on-start callback.
func (env *Envelope) Canceled() bool {
	return transient.Categorize(env.Err) == transient.Canceled
}

// Timeout reports whether the execution ended because an attempt
// timed out.
func (env *Envelope) Timeout() bool {
	return transient.Categorize(env.Err) == transient.Timeout
}

// Check returns Err if it is not nil. Otherwise it returns a
// *StatusError if the status code is not in the 2XX range, and nil if
// it is.
func (env *Envelope) Check() error {
	if env.Err != nil {
		return env.Err
	}
	if env.StatusCode < 200 || env.StatusCode > 299 {
		return &StatusError{
			StatusCode: env.StatusCode,
			Status:     env.Status,
			Body:       env.Raw,
		}
	}
	return nil
}

// Value returns the materialized content as an interface value, for
// callbacks which only see the envelope.
func (env *Envelope) Value() interface{} {
	return env.content
}

// Close releases the response held by the envelope. Text, byte and
// typed results are fully read and already released, so Close is only
// needed for stream results. Close may be called any number of times.
func (env *Envelope) Close() error {
	env.once.Do(func() {
		if env.closer != nil {
			env.closeErr = env.closer.Close()
		}
	})
	return env.closeErr
}

// A Result is the materialized outcome of one execution. Its Content
// is the response body as text, bytes, a deserialized value or a
// stream, depending on the method used.
//
// A Result is never nil and should be treated as read-only.
type Result[T any] struct {
	Envelope

	// Content is the materialized response body. It is the zero value
	// of T if the execution failed, or for a typed result whose body was
	// empty.
	Content T
}

// A StartEvent is passed to the on-start callback.
type StartEvent struct {
	// Method is the HTTP method about to be sent.
	Method string
	// URL is the final URL about to be requested.
	URL string
	// Payload is the payload about to be serialized, or nil.
	Payload interface{}
	// Cancel, if set by the callback, aborts the execution before any
	// network activity.
	Cancel bool
}

// A PreviewEvent carries the text of a request or response body.
type PreviewEvent struct {
	// Content is the body text.
	Content string
	// Type is the declared type of the payload for a request preview,
	// or the target type for a typed response. It is nil otherwise.
	Type reflect.Type
}

// A PreCompletedEvent is passed to the pre-completed callback.
type PreCompletedEvent struct {
	Envelope  *Envelope
	Completed bool
}

// A CompletedEvent is passed to the completed callback.
type CompletedEvent struct {
	Envelope *Envelope
	// Elapsed is the time from the start of the execution until just
	// before the callback was called.
	Elapsed time.Duration
}
