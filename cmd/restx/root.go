// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gogama/restx"
	"github.com/gogama/restx/config"
	"github.com/gogama/restx/progress"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

type flags struct {
	configFile string
	envFile    string
	headers    []string
	params     []string
	form       []string
	data       string
	xml        bool
	gzip       bool
	http2      bool
	insecure   bool
	timeout    time.Duration
	bearer     string
	user       string
	output     string
	include    bool
	fail       bool
	verbose    bool
	repeat     int
	rate       float64
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "restx [flags] [METHOD] URL",
		Short: "Send REST requests with reauthentication, progress and tracing",
		Long: `restx sends a REST request and prints the response body.

METHOD defaults to GET. If an endpoint is configured, URL may be a path
relative to it.

Examples:
  restx https://api.example.com/users -p page=2
  restx POST https://api.example.com/users -d '{"name":"ada"}'
  restx --repeat 10 --rate 2 https://api.example.com/health`,
		Version:       version,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f, args)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	fs := cmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "Path to configuration file")
	fs.StringVar(&f.envFile, "env-file", "", "Path to .env file")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, `Request header "Name: value" (repeatable)`)
	fs.StringArrayVarP(&f.params, "param", "p", nil, "Query parameter key=value (repeatable)")
	fs.StringArrayVar(&f.form, "form", nil, "Form field key=value, sent url-encoded (repeatable)")
	fs.StringVarP(&f.data, "data", "d", "", "JSON payload")
	fs.BoolVar(&f.xml, "xml", false, "Use the XML serializer")
	fs.BoolVar(&f.gzip, "gzip", false, "Accept gzip compressed responses")
	fs.BoolVar(&f.http2, "http2", false, "Negotiate HTTP/2")
	fs.BoolVarP(&f.insecure, "insecure", "k", false, "Accept any server certificate")
	fs.DurationVar(&f.timeout, "timeout", 0, "Attempt timeout (default from config, 100s)")
	fs.StringVar(&f.bearer, "bearer", "", "Bearer token for the Authorization header")
	fs.StringVarP(&f.user, "user", "u", "", "Basic auth credentials user:password")
	fs.StringVarP(&f.output, "output", "o", "", "Write the body to a file instead of stdout")
	fs.BoolVarP(&f.include, "include", "i", false, "Print the status line and headers")
	fs.BoolVar(&f.fail, "fail", false, "Exit with an error on a non-2XX status")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Log at debug level")
	fs.IntVar(&f.repeat, "repeat", 1, "Number of times to send the request")
	fs.Float64Var(&f.rate, "rate", 0, "Maximum requests per second when repeating (0 is unlimited)")
	return cmd
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	method, target := "GET", args[0]
	if len(args) == 2 {
		method, target = strings.ToUpper(args[0]), args[1]
	}

	var loadOpts []config.Option
	if f.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(f.envFile))
	}
	opts, err := config.Load(loadOpts...)
	if err != nil {
		return err
	}
	if err = applyFlags(cmd, f, &opts); err != nil {
		return err
	}

	log := opts.Log.NewLogger(cmd.ErrOrStderr())
	if f.verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	b, err := restx.FromOptions(opts)
	if err != nil {
		return err
	}
	if b, err = configure(b, f, opts, target); err != nil {
		return err
	}
	b = b.Logger(log)

	for i := 0; i < f.repeat; i++ {
		if err = send(cmd, f, b, method, log); err != nil {
			return err
		}
	}
	return nil
}

func applyFlags(cmd *cobra.Command, f *flags, o *config.Options) error {
	if cmd.Flags().Changed("timeout") {
		o.Timeout = f.timeout
	}
	if f.xml {
		o.Serializer = "xml"
	}
	o.GZip = o.GZip || f.gzip
	o.HTTP2 = o.HTTP2 || f.http2
	if f.verbose {
		o.Log.Level = "debug"
	}
	headers := make(map[string]string, len(o.Headers)+len(f.headers))
	for k, v := range o.Headers {
		headers[k] = v
	}
	for _, h := range f.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("restx: invalid header %q, want \"Name: value\"", h)
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	o.Headers = headers
	return nil
}

func configure(b restx.Builder, f *flags, o config.Options, target string) (b2 restx.Builder, err error) {
	defer func() {
		if r := recover(); r != nil {
			var ce *restx.ConfigError
			if e, ok := r.(error); ok && errors.As(e, &ce) {
				b2, err = restx.Builder{}, ce
				return
			}
			panic(r)
		}
	}()

	if u, perr := url.Parse(target); perr == nil && u.IsAbs() {
		b = b.URL(target)
	} else if o.Endpoint != "" {
		b = b.Command(target)
	} else {
		return b, fmt.Errorf("restx: %q is not an absolute URL and no endpoint is configured", target)
	}

	for _, p := range f.params {
		k, v, _ := strings.Cut(p, "=")
		b = b.Parameter(k, v)
	}
	if len(f.form) > 0 {
		values := url.Values{}
		for _, p := range f.form {
			k, v, _ := strings.Cut(p, "=")
			values.Add(k, v)
		}
		b = b.FormURLEncoded(values)
	}
	if f.data != "" {
		if o.Serializer != "json" {
			return b, errors.New("restx: --data requires the json serializer")
		}
		if !json.Valid([]byte(f.data)) {
			return b, errors.New("restx: --data is not valid JSON")
		}
		b = b.Payload(json.RawMessage(f.data))
	}
	if f.insecure {
		b = b.CertificateValidation(func([]*x509.Certificate, error) bool { return true })
	}
	if f.bearer != "" {
		b = b.Authorization("Bearer", f.bearer)
	}
	if f.user != "" {
		user, pass, _ := strings.Cut(f.user, ":")
		b = b.Credentials(user, pass)
	}
	if f.rate > 0 {
		b = b.Limiter(rate.NewLimiter(rate.Limit(f.rate), 1))
	}
	return b, nil
}

func send(cmd *cobra.Command, f *flags, b restx.Builder, method string, log zerolog.Logger) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return err
		}
		defer file.Close()
		r := b.OnDownloadProgress(func(evt progress.Event) {
			log.Debug().Int64("bytes", evt.Current).Int64("total", evt.Total).Int("percent", evt.Percentage()).Msg("download progress")
		}).CallStream(ctx, method)
		defer r.Close()
		if r.Err != nil {
			return r.Err
		}
		printHead(out, f, &r.Envelope)
		if _, err = io.Copy(file, r.Content); err != nil {
			return err
		}
		return checkStatus(f, &r.Envelope)
	}

	r := b.Call(ctx, method)
	if r.Err != nil {
		return r.Err
	}
	printHead(out, f, &r.Envelope)
	fmt.Fprint(out, r.Content)
	if r.Content != "" && !strings.HasSuffix(r.Content, "\n") {
		fmt.Fprintln(out)
	}
	return checkStatus(f, &r.Envelope)
}

func printHead(w io.Writer, f *flags, env *restx.Envelope) {
	if !f.include {
		return
	}
	fmt.Fprintf(w, "%s %s\n", env.Proto, env.Status)
	keys := make([]string, 0, len(env.Header))
	for k := range env.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range env.Header[k] {
			fmt.Fprintf(w, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintln(w)
}

func checkStatus(f *flags, env *restx.Envelope) error {
	if !f.fail {
		return nil
	}
	return env.Check()
}
