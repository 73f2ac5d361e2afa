// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"net/http"

	"github.com/gogama/restx/codec"
	"github.com/gogama/restx/config"
)

// FromOptions returns a Builder configured from externally loaded
// options. Unlike the Builder methods it never panics: options which
// fail validation produce the validation error, and any value a Builder
// method would reject produces its *ConfigError.
func FromOptions(o config.Options) (b Builder, err error) {
	o.ApplyDefaults()
	if err = o.Validate(); err != nil {
		return Builder{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*ConfigError)
			if !ok {
				panic(r)
			}
			b, err = Builder{}, ce
		}
	}()

	s := codec.ByName(o.Serializer)
	if s == nil {
		return Builder{}, &ConfigError{Field: "Serializer", Value: o.Serializer, Reason: "unknown serializer"}
	}

	b = New().
		Serializer(s).
		Timeout(o.Timeout).
		BufferSize(o.BufferSize).
		EnableGZip(o.GZip).
		EnableHTTP2(o.HTTP2).
		EscapeParameters(o.EscapeParameters)
	if o.Endpoint != "" {
		b = b.URL(o.Endpoint)
	}
	if len(o.Headers) > 0 {
		headers := make(map[string]string, len(o.Headers))
		for k, v := range o.Headers {
			headers[k] = v
		}
		b = b.Header(func(h http.Header) {
			for k, v := range headers {
				h.Set(k, v)
			}
		})
	}
	return b, nil
}
