// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"compress/gzip"
	"io"
	"net/http"
)

// gzipReader decodes a gzip response body. The gzip header is only read
// on the first Read, so a response which fails before its body is
// consumed never blocks on it. Close closes the response body.
type gzipReader struct {
	body io.ReadCloser
	zr   *gzip.Reader
	err  error
}

func (r *gzipReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.zr == nil {
		r.zr, r.err = gzip.NewReader(r.body)
		if r.err != nil {
			return 0, r.err
		}
	}
	return r.zr.Read(p)
}

func (r *gzipReader) Close() error {
	if r.zr != nil {
		_ = r.zr.Close()
	}
	return r.body.Close()
}

// decompress replaces the body of a gzip encoded response with a
// decoding reader, in the same way net/http does when it negotiates
// compression itself. It reports whether the body was replaced.
func decompress(resp *http.Response) bool {
	if resp.Body == nil || resp.Body == http.NoBody {
		return false
	}
	if resp.Header.Get("Content-Encoding") != "gzip" {
		return false
	}
	resp.Body = &gzipReader{body: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return true
}
