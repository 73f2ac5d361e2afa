// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogama/restx/codec"
	"github.com/gogama/restx/config"
	"github.com/gogama/restx/timeout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		b, err := FromOptions(config.Options{})
		require.NoError(t, err)
		assert.Equal(t, codec.JSON, b.encoder())
		assert.Equal(t, config.DefaultBufferSize, b.bufferSize)
		assert.Equal(t, timeout.Fixed(0), b.timeoutPolicy())
		assert.Empty(t, b.FinalURL())
	})
	t.Run("all options", func(t *testing.T) {
		server := newEchoServer(t)
		b, err := FromOptions(config.Options{
			Endpoint:         server.URL,
			Timeout:          time.Second,
			BufferSize:       512,
			Serializer:       "XML",
			GZip:             true,
			HTTP2:            true,
			EscapeParameters: true,
			Headers:          map[string]string{"X-Api-Key": "k"},
		})
		require.NoError(t, err)
		assert.Equal(t, codec.XML, b.encoder())
		assert.Equal(t, timeout.Fixed(time.Second), b.timeoutPolicy())
		assert.Equal(t, 512, b.bufferSize)
		assert.True(t, b.gzip)
		assert.True(t, b.http2)
		assert.Equal(t, server.URL+"?q=a+b", b.Parameter("q", "a b").FinalURL())

		got := echoOf(t, b.EnableHTTP2(false).Get(context.Background()))
		assert.Equal(t, "k", got.APIKey)
		assert.Equal(t, "gzip", got.AcceptEncoding)
	})
	t.Run("invalid", func(t *testing.T) {
		testCases := []struct {
			name string
			o    config.Options
		}{
			{"serializer", config.Options{Serializer: "yaml"}},
			{"buffer size", config.Options{BufferSize: -1}},
			{"timeout", config.Options{Timeout: -time.Second}},
			{"endpoint", config.Options{Endpoint: "not a url"}},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				_, err := FromOptions(testCase.o)
				assert.ErrorContains(t, err, "restx/config: invalid options")
			})
		}
	})
	t.Run("endpoint without host", func(t *testing.T) {
		_, err := FromOptions(config.Options{Endpoint: "mailto:someone@example.com"})
		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "URL", ce.Field)
	})
}
