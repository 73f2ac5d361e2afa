// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport builds the HTTP client which carries the attempts
// of a REST execution.
//
// Certificate validation is configured on the transport built for the
// execution. No process-wide TLS setting is ever changed, so one
// execution accepting a self-signed certificate has no effect on any
// other.
package transport
