// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package progress moves request and response bodies through a fixed-size
buffer while reporting how many bytes have been moved.

Copy is the push form, used when a whole response body is read into
memory:

	var buf bytes.Buffer
	n, err := progress.Copy(ctx, &buf, resp.Body, resp.ContentLength, 81920,
		func(e progress.Event) {
			fmt.Printf("\r%d%%", e.Percentage())
		})

Reader is the pull form, used when somebody else drives the copy: the
HTTP transport reading an upload body, or the caller reading a streamed
result.

Both forms check the context after every chunk, so cancelling the
context stops the copy at the next chunk boundary.
*/
package progress
