// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/x509"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("zero config is shared", func(t *testing.T) {
		c, shared, err := New(Config{})
		require.NoError(t, err)
		assert.True(t, shared)
		assert.Same(t, Default(), c)
		tr, ok := c.Transport.(*http.Transport)
		require.True(t, ok)
		assert.True(t, tr.DisableCompression)
	})
	t.Run("validator gets own client", func(t *testing.T) {
		c1, shared, err := New(Config{Verify: acceptAll})
		require.NoError(t, err)
		assert.False(t, shared)
		c2, _, err := New(Config{Verify: acceptAll})
		require.NoError(t, err)
		assert.NotSame(t, c1, c2)
		assert.NotSame(t, Default(), c1)
		assert.Nil(t, Default().Transport.(*http.Transport).TLSClientConfig)
	})
	t.Run("http2 configures next protos", func(t *testing.T) {
		c, shared, err := New(Config{HTTP2: true})
		require.NoError(t, err)
		assert.False(t, shared)
		tr := c.Transport.(*http.Transport)
		require.NotNil(t, tr.TLSClientConfig)
		assert.Contains(t, tr.TLSClientConfig.NextProtos, "h2")
	})
}

func TestCertificateValidator(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "secure")
	}))
	defer server.Close()

	t.Run("accept self-signed", func(t *testing.T) {
		var gotChain []*x509.Certificate
		var gotErr error
		c, _, err := New(Config{Verify: func(chain []*x509.Certificate, err error) bool {
			gotChain, gotErr = chain, err
			return true
		}})
		require.NoError(t, err)
		defer c.CloseIdleConnections()
		resp, err := c.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "secure", string(b))
		assert.NotEmpty(t, gotChain)
		assert.Error(t, gotErr, "self-signed chain must fail standard verification")
	})
	t.Run("reject", func(t *testing.T) {
		c, _, err := New(Config{Verify: func([]*x509.Certificate, error) bool { return false }})
		require.NoError(t, err)
		defer c.CloseIdleConnections()
		_, err = c.Get(server.URL)
		assert.Error(t, err)
	})
	t.Run("reject does not leak into default", func(t *testing.T) {
		_, err := Default().Get(server.URL)
		assert.Error(t, err, "default client must still verify certificates")
	})
}

func TestHTTP2(t *testing.T) {
	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Proto)
	}))
	server.EnableHTTP2 = true
	server.StartTLS()
	defer server.Close()

	c, _, err := New(Config{HTTP2: true, Verify: acceptAll})
	require.NoError(t, err)
	defer c.CloseIdleConnections()
	resp, err := c.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 2, resp.ProtoMajor)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/2.0", string(b))
}

func acceptAll([]*x509.Certificate, error) bool {
	return true
}
