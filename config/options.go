// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultTimeout    = 100 * time.Second
	DefaultBufferSize = 5 * 4096 * 4
	DefaultSerializer = "json"
)

// Options is the externally configurable part of a request builder.
// Callback options (refresh, progress, lifecycle) can only be set in
// code.
type Options struct {
	// Endpoint is the base URL of the API, for example
	// "https://api.example.com/v1".
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	// Timeout limits each attempt. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	// BufferSize is the chunk size used to move bodies.
	BufferSize int `mapstructure:"buffer_size" validate:"gt=0"`
	// Serializer is "json" or "xml".
	Serializer string `mapstructure:"serializer" validate:"oneof=json xml"`
	// GZip asks for gzip compressed responses.
	GZip bool `mapstructure:"gzip"`
	// HTTP2 negotiates HTTP/2 over TLS.
	HTTP2 bool `mapstructure:"http2"`
	// EscapeParameters percent-encodes query parameters.
	EscapeParameters bool `mapstructure:"escape_parameters"`
	// Headers are sent with every request.
	Headers map[string]string `mapstructure:"headers"`
	// Log configures the logger of the command line tool.
	Log LogOptions `mapstructure:"log"`
}

// LogOptions configures a zerolog logger.
type LogOptions struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output" validate:"oneof=stdout stderr"`
}

// ApplyDefaults fills in zero fields which have a non-zero default.
// Timeout is left alone since zero is meaningful.
func (o *Options) ApplyDefaults() {
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.Serializer == "" {
		o.Serializer = DefaultSerializer
	}
	o.Serializer = strings.ToLower(o.Serializer)
	o.Log.ApplyDefaults()
}

// ApplyDefaults fills in zero fields with info level JSON logging to
// standard error.
func (o *LogOptions) ApplyDefaults() {
	if o.Level == "" {
		o.Level = "info"
	}
	if o.Format == "" {
		o.Format = "json"
	}
	if o.Output == "" {
		o.Output = "stderr"
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks o against its constraints. The returned error lists
// every invalid field.
func (o Options) Validate() error {
	err := getValidator().Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("restx/config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
	}
	return errors.New("restx/config: invalid options: " + strings.Join(msgs, "; "))
}

// Logger builds the logger described by o.
func (o LogOptions) Logger() zerolog.Logger {
	var w io.Writer = os.Stderr
	if o.Output == "stdout" {
		w = os.Stdout
	}
	return o.NewLogger(w)
}

// NewLogger builds the logger described by o, writing to w instead of
// the configured output.
func (o LogOptions) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(o.Level)
	if err != nil || o.Level == "" {
		level = zerolog.InfoLevel
	}
	if o.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
