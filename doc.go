// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package restx builds and sends REST requests through an immutable,
fluent Builder.

Start from New, describe the request, then call a verb method to send
it:

	api := restx.New().
		URL("https://api.example.com/v1").
		Authorization("Bearer", token)

	r := api.Command("users").CommandInt(5).Parameter("expand", "roles").Get(ctx)
	if err := r.Check(); err != nil {
		...
	}
	fmt.Println(r.Content)

Every configuration method returns a new Builder and leaves its receiver
alone, so a partly configured Builder is a reusable template which any
number of goroutines may extend and send at the same time.

The verb methods return a *Result whose Content is the response body as
text (Get, Post, ...), bytes (GetBytes, PostBytes, ...) or a stream
(GetStream, PostStream, ...). The generic functions GetAs, PostAs and
friends deserialize the body with the Builder's serializer, JSON unless
XML or a custom codec.Serializer is chosen:

	r := restx.GetAs[User](ctx, api.Command("users").CommandInt(5))

A Result never comes back nil. Transport failures, timeouts,
cancellation and deserialization failures are reported in its Err
field, while a non-2XX status code is not an error by itself: use
Success or Check to test for one. A stream result holds the connection
open until it is closed.

When a response has status 401 (Unauthorized) and a refresh callback is
set, the callback is given a chance to renew the credentials and the
request is sent exactly once more:

	api = api.
		AuthorizationFunc(func() string { return "Bearer " + tokens.Current() }).
		RefreshTokenInvoke(tokens.Renew)

Lifecycle callbacks (OnStart, OnPreviewRequest, OnUploadProgress,
OnCompleted, ...) observe one execution at a time. For access to the
request plan, each attempt and the response, install a Handler for one
of the events listed in Event:

	api = api.Handler(restx.BeforeAttempt, restx.HandlerFunc(
		func(_ restx.Event, e *request.Execution) {
			e.Request.Header.Set("X-Attempt", strconv.Itoa(e.Attempt))
		}))

Executions are logged with zerolog (see Builder.Logger) and traced with
OpenTelemetry (see Builder.Tracer). Package metrics exports Prometheus
metrics for a Builder, and package config loads Builder options from
files and the environment.
*/
package restx
