// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"context"
	"io"
	"net/http"
)

// Get executes b with the GET method and returns the response body as
// text.
//
// Like every execution method, Get never returns nil and never panics
// because of a failed request. Transport, timeout and serialization
// failures are reported in the Err field of the result, and an error
// status code is reported in StatusCode. A canceled ctx ends the
// execution with a result whose Canceled method reports true.
func (b Builder) Get(ctx context.Context) *Result[string] {
	return execute(ctx, b, http.MethodGet, asText)
}

// GetBytes executes b with the GET method and returns the response body
// as bytes.
func (b Builder) GetBytes(ctx context.Context) *Result[[]byte] {
	return execute(ctx, b, http.MethodGet, asBytes)
}

// GetStream executes b with the GET method and returns the response
// body as a stream, which the caller must close. Download progress is
// reported as the stream is read, and the attempt timeout keeps running
// until it is closed.
func (b Builder) GetStream(ctx context.Context) *Result[io.ReadCloser] {
	return execute(ctx, b, http.MethodGet, asStream)
}

// Post executes b with the POST method and returns the response body as
// text.
func (b Builder) Post(ctx context.Context) *Result[string] {
	return execute(ctx, b, http.MethodPost, asText)
}

// PostBytes executes b with the POST method and returns the response
// body as bytes.
func (b Builder) PostBytes(ctx context.Context) *Result[[]byte] {
	return execute(ctx, b, http.MethodPost, asBytes)
}

// PostStream executes b with the POST method and returns the response
// body as a stream, which the caller must close.
func (b Builder) PostStream(ctx context.Context) *Result[io.ReadCloser] {
	return execute(ctx, b, http.MethodPost, asStream)
}

// Put executes b with the PUT method and returns the response body as
// text.
func (b Builder) Put(ctx context.Context) *Result[string] {
	return execute(ctx, b, http.MethodPut, asText)
}

// PutBytes executes b with the PUT method and returns the response body
// as bytes.
func (b Builder) PutBytes(ctx context.Context) *Result[[]byte] {
	return execute(ctx, b, http.MethodPut, asBytes)
}

// PutStream executes b with the PUT method and returns the response
// body as a stream, which the caller must close.
func (b Builder) PutStream(ctx context.Context) *Result[io.ReadCloser] {
	return execute(ctx, b, http.MethodPut, asStream)
}

// Delete executes b with the DELETE method and returns the response
// body as text.
func (b Builder) Delete(ctx context.Context) *Result[string] {
	return execute(ctx, b, http.MethodDelete, asText)
}

// DeleteBytes executes b with the DELETE method and returns the
// response body as bytes.
func (b Builder) DeleteBytes(ctx context.Context) *Result[[]byte] {
	return execute(ctx, b, http.MethodDelete, asBytes)
}

// DeleteStream executes b with the DELETE method and returns the
// response body as a stream, which the caller must close.
func (b Builder) DeleteStream(ctx context.Context) *Result[io.ReadCloser] {
	return execute(ctx, b, http.MethodDelete, asStream)
}

// Patch executes b with the PATCH method and returns the response body
// as text.
func (b Builder) Patch(ctx context.Context) *Result[string] {
	return execute(ctx, b, http.MethodPatch, asText)
}

// PatchBytes executes b with the PATCH method and returns the response
// body as bytes.
func (b Builder) PatchBytes(ctx context.Context) *Result[[]byte] {
	return execute(ctx, b, http.MethodPatch, asBytes)
}

// PatchStream executes b with the PATCH method and returns the response
// body as a stream, which the caller must close.
func (b Builder) PatchStream(ctx context.Context) *Result[io.ReadCloser] {
	return execute(ctx, b, http.MethodPatch, asStream)
}

// Call executes b with a custom method, for example "HEAD" or
// "OPTIONS", and returns the response body as text. An empty method
// means GET. A method which is not a valid HTTP token produces a result
// with a non-nil Err.
func (b Builder) Call(ctx context.Context, method string) *Result[string] {
	return execute(ctx, b, method, asText)
}

// CallBytes executes b with a custom method and returns the response
// body as bytes.
func (b Builder) CallBytes(ctx context.Context, method string) *Result[[]byte] {
	return execute(ctx, b, method, asBytes)
}

// CallStream executes b with a custom method and returns the response
// body as a stream, which the caller must close.
func (b Builder) CallStream(ctx context.Context, method string) *Result[io.ReadCloser] {
	return execute(ctx, b, method, asStream)
}

// Download fetches url with the GET method, using the rest of b's
// configuration, and returns the body as bytes.
func (b Builder) Download(ctx context.Context, url string) *Result[[]byte] {
	return b.URL(url).GetBytes(ctx)
}

// GetAs executes b with the GET method and deserializes the response
// body into a T using b's serializer.
//
// The body is deserialized whatever the status code, since many APIs
// describe errors in the same format. If the body is empty, Content is
// the zero T. If deserialization fails, Err is set and the status,
// header and raw body are still reported.
func GetAs[T any](ctx context.Context, b Builder) *Result[T] {
	return execute(ctx, b, http.MethodGet, asTyped[T])
}

// PostAs executes b with the POST method and deserializes the response
// body into a T.
func PostAs[T any](ctx context.Context, b Builder) *Result[T] {
	return execute(ctx, b, http.MethodPost, asTyped[T])
}

// PutAs executes b with the PUT method and deserializes the response
// body into a T.
func PutAs[T any](ctx context.Context, b Builder) *Result[T] {
	return execute(ctx, b, http.MethodPut, asTyped[T])
}

// DeleteAs executes b with the DELETE method and deserializes the
// response body into a T.
func DeleteAs[T any](ctx context.Context, b Builder) *Result[T] {
	return execute(ctx, b, http.MethodDelete, asTyped[T])
}

// PatchAs executes b with the PATCH method and deserializes the
// response body into a T.
func PatchAs[T any](ctx context.Context, b Builder) *Result[T] {
	return execute(ctx, b, http.MethodPatch, asTyped[T])
}

// CallAs executes b with a custom method and deserializes the response
// body into a T.
func CallAs[T any](ctx context.Context, b Builder, method string) *Result[T] {
	return execute(ctx, b, method, asTyped[T])
}
