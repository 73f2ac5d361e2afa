// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for setting the timeout of each
// request attempt within a REST execution. A timed-out attempt produces
// an error-bearing result and is never retried.
package timeout
