// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package progress

import (
	"context"
	"errors"
	"io"
	"sync"
)

// DefaultBufferSize is the chunk size used when a non-positive buffer
// size is given. It is 80 KiB.
const DefaultBufferSize = 5 * 4096 * 4

var errInvalidWrite = errors.New("restx/progress: invalid write result")

// An Event reports how far a body copy has progressed.
type Event struct {
	// Current is the number of bytes copied so far.
	Current int64
	// Total is the total number of bytes to copy, or zero if the total
	// is unknown.
	Total int64
}

// Fraction returns Current divided by Total, or zero if Total is not
// known.
func (e Event) Fraction() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Current) / float64(e.Total)
}

// Percentage returns the progress as a whole percentage between 0 and
// 100. It is zero if Total is not known.
func (e Event) Percentage() int {
	p := int(e.Fraction() * 100)
	if p > 100 {
		return 100
	}
	return p
}

// A Func receives an Event after every chunk of a copy. It is called
// on the goroutine doing the copy and must not block for long.
type Func func(Event)

func report(fn Func, current, total int64) {
	if fn != nil {
		fn(Event{Current: current, Total: total})
	}
}

// Copy copies from src to dst through a buffer of bufSize bytes until
// src reports io.EOF or an error occurs. It returns the number of bytes
// copied.
//
// After every chunk Copy calls fn (if not nil) with the running count
// and total, then checks ctx. If ctx is done, Copy stops and returns
// ctx.Err(); no further bytes are copied. Parameter total is only
// reported, it does not limit the copy. Use zero if it is unknown.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, total int64, bufSize int, fn Func) (int64, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	buf := make([]byte, bufSize)
	var n int64
	for {
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = errInvalidWrite
				}
			}
			n += int64(nw)
			if ew != nil {
				return n, ew
			}
			if nr != nw {
				return n, io.ErrShortWrite
			}
			report(fn, n, total)
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		if er == io.EOF {
			return n, nil
		}
		if er != nil {
			return n, er
		}
	}
}

// A Reader is the pull form of Copy. It wraps a body, hands out at most
// bufSize bytes per Read, and reports progress after every chunk. It is
// used as the outgoing request body and as the body of a streamed
// result.
//
// If the context is done after a chunk is read, Read returns that
// chunk together with ctx.Err(). Once the context is done, Read returns
// no bytes and ctx.Err() without reading the wrapped body.
//
// Close closes the wrapped body exactly once; further calls return the
// same error.
type Reader struct {
	ctx   context.Context
	rc    io.ReadCloser
	max   int
	total int64
	n     int64
	fn    Func

	once     sync.Once
	closeErr error
}

// NewReader wraps rc. Parameter total is the expected length of rc, or
// zero if unknown. A non-positive bufSize means DefaultBufferSize.
func NewReader(ctx context.Context, rc io.ReadCloser, total int64, bufSize int, fn Func) *Reader {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Reader{
		ctx:   ctx,
		rc:    rc,
		max:   bufSize,
		total: total,
		fn:    fn,
	}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) > r.max {
		p = p[:r.max]
	}
	n, err := r.rc.Read(p)
	if n > 0 {
		r.n += int64(n)
		report(r.fn, r.n, r.total)
		if cerr := r.ctx.Err(); cerr != nil {
			return n, cerr
		}
	}
	return n, err
}

// N returns the number of bytes read so far.
func (r *Reader) N() int64 {
	return r.n
}

// Close implements io.Closer.
func (r *Reader) Close() error {
	r.once.Do(func() {
		r.closeErr = r.rc.Close()
	})
	return r.closeErr
}
