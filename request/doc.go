// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Plan (the wire description of a
logical REST request) and Execution (the state of one execution of that
request).

A Plan is produced by the restx builder when an execution method such
as Get or PostAs is called. It holds the final URL, the static headers
and the already-serialized body:

	p, err := request.NewPlan("GET", "https://example.com/users/5?page=2")
	...
	p = p.WithBody(body, "application/json; charset=utf-8")
	req := p.ToRequest(attemptCtx)

Every attempt gets a fresh http.Request from ToRequest, so the Plan can
be reused verbatim when an unauthorized response is retried after the
credentials are refreshed.

An Execution is the state shared with retry policies and event handlers
while the request runs. You will typically not allocate Execution
instances yourself, but will work with the ones handed out by the
restx invoker.
*/
package request
