// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics records Prometheus metrics for restx executions by
// installing event handlers on a builder.
//
//	c := metrics.New(prometheus.DefaultRegisterer)
//	api := c.Instrument(restx.New().URL("https://api.example.com"))
package metrics
