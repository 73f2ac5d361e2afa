// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompress(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		resp := newResponse(200, "plain")
		assert.False(t, decompress(resp))
		assert.Equal(t, int64(5), resp.ContentLength)
	})
	t.Run("no body", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Content-Encoding": {"gzip"}}, Body: http.NoBody}
		assert.False(t, decompress(resp))
		assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	})
	t.Run("gzip", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write([]byte("compressed"))
		require.NoError(t, zw.Close())

		resp := newResponse(200, "")
		resp.Body = io.NopCloser(&buf)
		resp.ContentLength = int64(buf.Len())
		resp.Header.Set("Content-Encoding", "gzip")
		resp.Header.Set("Content-Length", "99")

		require.True(t, decompress(resp))
		assert.Equal(t, int64(-1), resp.ContentLength)
		assert.True(t, resp.Uncompressed)
		assert.Empty(t, resp.Header.Get("Content-Encoding"))
		assert.Empty(t, resp.Header.Get("Content-Length"))
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "compressed", string(data))
		assert.NoError(t, resp.Body.Close())
	})
}

func TestGzipReader_Close(t *testing.T) {
	body := &closeRecorder{Reader: bytes.NewReader(nil)}
	r := &gzipReader{body: body}
	assert.NoError(t, r.Close())
	assert.True(t, body.closed)

	_, err := r.Read(make([]byte, 1))
	assert.Error(t, err)
	_, err2 := r.Read(make([]byte, 1))
	assert.Equal(t, err, err2)
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}
