// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strconv"

	"github.com/gogama/restx"
	"github.com/gogama/restx/request"
	"github.com/gogama/restx/transient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the Prometheus namespace of every restx metric.
const Namespace = "restx"

// Collector holds the Prometheus metrics recorded for instrumented
// builders. One Collector may instrument any number of builders.
type Collector struct {
	Attempts   *prometheus.CounterVec
	Retries    *prometheus.CounterVec
	Executions *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	InFlight   prometheus.Gauge
}

// New creates the metrics and registers them with reg. A nil reg means
// prometheus.DefaultRegisterer. New panics if the metrics are already
// registered with reg.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		Attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "attempts_total",
				Help:      "Request attempts sent, by method and status code (0 for transport errors)",
			},
			[]string{"method", "code"},
		),
		Retries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "reauth_retries_total",
				Help:      "Requests sent again after the credentials were refreshed",
			},
			[]string{"method"},
		),
		Executions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "executions_total",
				Help:      "Executions ended, by method and error category",
			},
			[]string{"method", "error"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "execution_duration_seconds",
				Help:      "Execution latency histogram, including any retry",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"method"},
		),
		InFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "executions_in_flight",
				Help:      "Current number of executions in progress",
			},
		),
	}
}

// Instrument returns a copy of b which records its executions in c.
func (c *Collector) Instrument(b restx.Builder) restx.Builder {
	return b.
		Handler(restx.BeforeExecutionStart, restx.HandlerFunc(c.start)).
		Handler(restx.AfterAttempt, restx.HandlerFunc(c.attempt)).
		Handler(restx.BeforeRetry, restx.HandlerFunc(c.retry)).
		Handler(restx.AfterExecutionEnd, restx.HandlerFunc(c.end))
}

func (c *Collector) start(_ restx.Event, _ *request.Execution) {
	c.InFlight.Inc()
}

func (c *Collector) attempt(_ restx.Event, e *request.Execution) {
	c.Attempts.WithLabelValues(method(e), strconv.Itoa(e.StatusCode())).Inc()
}

func (c *Collector) retry(_ restx.Event, e *request.Execution) {
	c.Retries.WithLabelValues(method(e)).Inc()
}

func (c *Collector) end(_ restx.Event, e *request.Execution) {
	// The plan is only nil if the execution failed before it started.
	if e.Plan != nil {
		c.InFlight.Dec()
	}
	m := method(e)
	c.Executions.WithLabelValues(m, category(e.Err)).Inc()
	c.Duration.WithLabelValues(m).Observe(e.Duration().Seconds())
}

func method(e *request.Execution) string {
	if e.Plan == nil {
		return "unknown"
	}
	return e.Plan.Method
}

func category(err error) string {
	if err == nil {
		return "none"
	}
	return transient.Categorize(err).String()
}
