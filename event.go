// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

// An Event identifies the event type when installing or running a
// Handler. Install event handlers on a Builder to extend executions
// with custom functionality such as metrics or request signing.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// execution starts, before the on-start callback runs.
	//
	// When BeforeExecutionStart fires, the execution's ID, start time
	// and plan are set. The plan has no body yet.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs before each
	// individual HTTP request attempt, including the reauthenticated
	// retry.
	//
	// When BeforeAttempt fires, the execution's request field is set to
	// the HTTP request that WILL BE sent after all BeforeAttempt
	// handlers have finished. Handlers may modify the request, for
	// example to sign it. The request has its own header, so changes do
	// not leak into the next attempt.
	BeforeAttempt
	// AfterAttempt identifies the event that occurs after an HTTP
	// request attempt is concluded, regardless of whether it concluded
	// successfully or not.
	//
	// When AfterAttempt fires, either the execution's response field
	// or its error field is set. The response body has not been read.
	// AfterAttempt runs before the retry policy is consulted.
	AfterAttempt
	// BeforeRetry identifies the event that occurs after the retry
	// policy decided to send the request again, once the credentials
	// were refreshed.
	//
	// When BeforeRetry fires, the execution's attempt counter has been
	// incremented and the previous response has been closed.
	BeforeRetry
	// BeforeReadBody identifies the event that occurs after the final
	// attempt has resulted in an HTTP response (as opposed to an error)
	// but before the response body is materialized.
	//
	// Note that BeforeReadBody never fires if the final attempt ended
	// in error, but always fires if an HTTP response is received,
	// regardless of HTTP response status code.
	BeforeReadBody
	// BeforeResult identifies the event that occurs after the response
	// body has been materialized successfully, immediately before the
	// pre-result callbacks run.
	BeforeResult
	// AfterExecutionEnd identifies the event that occurs after the
	// execution ends, whether it succeeded, failed or was canceled.
	//
	// When AfterExecutionEnd fires, the execution is in its final state
	// and its end time is set. It fires before the on-completed
	// callback.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"AfterAttempt",
	"BeforeRetry",
	"BeforeReadBody",
	"BeforeResult",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur in a
// REST execution, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		AfterAttempt,
		BeforeRetry,
		BeforeReadBody,
		BeforeResult,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
