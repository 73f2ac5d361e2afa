// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"fmt"
	"net/http"
)

// A ConfigError describes an invalid builder configuration. Builder
// methods panic with a *ConfigError as soon as they receive an invalid
// value, so the mistake surfaces where it is made rather than when the
// request is sent. FromOptions returns one as an ordinary error.
type ConfigError struct {
	// Field names the configuration option, for example "BufferSize".
	Field string
	// Value is the rejected value.
	Value interface{}
	// Reason describes what is wrong with Value.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("restx: invalid %s %#v: %s", e.Field, e.Value, e.Reason)
}

func configPanic(field string, value interface{}, reason string) {
	panic(&ConfigError{Field: field, Value: value, Reason: reason})
}

// A StatusError reports a response whose status code is not in the
// 2XX range. Executions never produce a StatusError by themselves, since
// an error status is a normal response. Use Envelope.Check to turn one
// into an error where that is convenient.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the status line reason, for example "404 Not Found".
	Status string
	// Body is the raw response body, if it was materialized.
	Body []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "restx: unexpected status " + status
}

// Unauthorized reports whether the status code is 401.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}
