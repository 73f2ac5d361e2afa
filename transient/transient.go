// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category is the category of an error ending a REST execution, as
// reported by Categorize.
//
// The category Not means the error is none of the recognized kinds.
// Timeout, ConnRefused and ConnReset are transport conditions which a
// caller may reasonably choose to retry later. Canceled is the distinct
// cancellation signal: the caller (or an on-start callback) asked for
// the execution to stop, so it is never a failure of the request.
type Category int

const (
	// Not indicates any error not covered by another category, and the
	// nil error.
	Not Category = iota
	// Timeout indicates a client-side timeout, either of a single
	// attempt or of the caller's context deadline.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection,
	// corresponding to the POSIX error code ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, corresponding to the POSIX
	// error code ECONNRESET.
	ConnReset
	// Canceled indicates the execution was canceled. Categorize returns
	// Canceled if the error is not a Timeout and it wraps
	// context.Canceled.
	Canceled
)

var categoryNames = []string{
	Not:         "not",
	Timeout:     "timeout",
	ConnRefused: "conn_refused",
	ConnReset:   "conn_reset",
	Canceled:    "canceled",
}

// String returns a short snake_case name for the category, suitable
// for use as a log field or metric label.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categorize returns the category of the given error. A nil error
// produces Not.
//
// Categorize looks at wrapped cause errors contained within err, not
// just err itself, so a *url.Error wrapping context.Canceled is still
// reported as Canceled.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
