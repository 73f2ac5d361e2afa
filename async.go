// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

// A Future is the pending result of an execution started by Async.
type Future[T any] struct {
	done chan struct{}
	r    *Result[T]
}

// Async starts fn on a new goroutine and returns a Future for its
// result. Typically fn is a closure over one execution method:
//
//	f := restx.Async(func() *restx.Result[string] {
//		return b.Get(ctx)
//	})
//	...
//	r := f.Wait()
//
// Cancel the context used inside fn to abandon the execution.
func Async[T any](fn func() *Result[T]) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.r = fn()
	}()
	return f
}

// Done returns a channel which is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the execution ends and returns its result.
func (f *Future[T]) Wait() *Result[T] {
	<-f.done
	return f.r
}
