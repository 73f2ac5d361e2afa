// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"net/http"

	"github.com/gogama/restx/request"
)

// A Decider examines the state of an execution after an attempt and
// reports whether the attempt's outcome matches some condition.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Deciders are the building blocks of retry triggers. The Reauth policy
// uses Trigger, which is Times(1).And(Unauthorized).
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as deciders. It implements the Decider interface, and also
// provides the logical composition methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// Unauthorized is a decider that returns true when the most recent
// attempt received a 401 (Unauthorized) response.
var Unauthorized = StatusCode(http.StatusUnauthorized)

// Trigger is the condition under which Reauth considers refreshing the
// credentials: the first attempt received a 401 (Unauthorized)
// response.
var Trigger = Times(1).And(Unauthorized)

// Decide returns the result of calling f.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two deciders into a new decider which returns true if
// both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two deciders into a new decider which returns true if
// either of the two sub-deciders returns true.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a decider which returns true while the attempt
// index e.Attempt is less than n.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// StatusCode constructs a decider which returns true if the most
// recent attempt received a valid HTTP response whose status code is
// contained in ss.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode() == s {
				return true
			}
		}
		return false
	}
}
