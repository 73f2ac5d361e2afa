// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/restx/request"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	assert.Equal(t, 100*time.Second, DefaultPolicy.Timeout(&request.Execution{}))
	assert.Equal(t, 100*time.Second, DefaultPolicy.Timeout(&request.Execution{Attempt: 1, Err: syscall.ETIMEDOUT}))
}

func TestInfinite(t *testing.T) {
	assert.Equal(t, time.Duration(0), Infinite.Timeout(&request.Execution{}))
}

func TestFixed(t *testing.T) {
	p := Fixed(33 * time.Hour)
	assert.Equal(t, 33*time.Hour, p.Timeout(&request.Execution{}))
	assert.Equal(t, 33*time.Hour, p.Timeout(&request.Execution{Attempt: 1}))
}

func TestAttempt(t *testing.T) {
	t.Run("fixed sets deadline", func(t *testing.T) {
		ctx, cancel := Attempt(context.Background(), Fixed(time.Minute), &request.Execution{})
		defer cancel()
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
	})
	t.Run("infinite has no deadline", func(t *testing.T) {
		ctx, cancel := Attempt(context.Background(), Infinite, &request.Execution{})
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		cancel()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
	t.Run("nil policy uses default", func(t *testing.T) {
		ctx, cancel := Attempt(context.Background(), nil, &request.Execution{})
		defer cancel()
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, time.Second)
	})
	t.Run("short timeout expires", func(t *testing.T) {
		ctx, cancel := Attempt(context.Background(), Fixed(time.Millisecond), &request.Execution{})
		defer cancel()
		<-ctx.Done()
		assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
	})
}
