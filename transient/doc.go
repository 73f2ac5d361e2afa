// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient categorizes the errors which end a REST execution:
// timeouts, refused or reset connections, and cancellation. The restx
// result envelope uses it to answer Timeout() and Canceled(), and the
// metrics package uses the category names as labels.
//
// Package transient depends only on the standard library.
package transient
