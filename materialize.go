// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sync"

	"github.com/gogama/restx/codec"
	"github.com/gogama/restx/progress"
)

// readAll consumes and closes the response body, reporting download
// progress. A gzip encoded body is decoded when gzip is enabled, and its
// decoded length is then unknown.
func readAll(inv *invocation, resp *http.Response) ([]byte, error) {
	b := inv.b
	if b.gzip {
		decompress(resp)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	var buf bytes.Buffer
	_, err := progress.Copy(inv.attemptCtx, &buf, resp.Body, total, b.bufferSize, b.onDownload)
	if err != nil {
		return nil, urlErrorWrap(inv.e.Plan, err)
	}
	inv.env.Raw = buf.Bytes()
	return inv.env.Raw, nil
}

func asBytes(inv *invocation, resp *http.Response) ([]byte, error) {
	return readAll(inv, resp)
}

func asText(inv *invocation, resp *http.Response) (string, error) {
	raw, err := readAll(inv, resp)
	if err != nil {
		return "", err
	}
	text := string(raw)
	inv.previewResponse(text, nil)
	return text, nil
}

func asTyped[T any](inv *invocation, resp *http.Response) (T, error) {
	var zero T
	raw, err := readAll(inv, resp)
	if err != nil {
		return zero, err
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	text := string(raw)
	inv.previewResponse(text, t)
	v, err := codec.Decode[T](inv.b.encoder(), text)
	if err != nil {
		return zero, fmt.Errorf("restx: deserialize %v: %w", t, err)
	}
	if v == nil {
		return zero, nil
	}
	return *v, nil
}

// asStream hands the response body to the caller. The attempt context
// stays alive, and the transport stays open, until the stream is
// closed.
func asStream(inv *invocation, resp *http.Response) (io.ReadCloser, error) {
	b := inv.b
	if b.gzip {
		decompress(resp)
	}
	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	s := &stream{
		Reader:  progress.NewReader(inv.attemptCtx, resp.Body, total, b.bufferSize, b.onDownload),
		release: inv.release,
	}
	inv.env.closer = s
	inv.detached = true
	return s, nil
}

type stream struct {
	*progress.Reader
	release func()
	once    sync.Once
}

func (s *stream) Close() error {
	err := s.Reader.Close()
	s.once.Do(s.release)
	return err
}

func (inv *invocation) previewResponse(text string, t reflect.Type) {
	if f := inv.b.onPreviewResponse; f != nil {
		f(PreviewEvent{Content: text, Type: t})
	}
}
