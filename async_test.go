// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsync(t *testing.T) {
	server := newEchoServer(t)
	b := New().URL(server.URL)

	text := Async(func() *Result[string] { return b.Get(context.Background()) })
	typed := Async(func() *Result[echo] { return PostAs[echo](context.Background(), b) })

	select {
	case <-text.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for future")
	}
	r := text.Wait()
	require.NoError(t, r.Err)
	assert.Same(t, r, text.Wait())

	tr := typed.Wait()
	require.NoError(t, tr.Err)
	assert.Equal(t, "POST", tr.Content.Method)
}

func TestAsync_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := Async(func() *Result[[]byte] { return New().URL("http://127.0.0.1:1").GetBytes(ctx) })
	r := f.Wait()
	assert.True(t, r.Canceled())
}
