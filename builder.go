// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/restx/codec"
	"github.com/gogama/restx/progress"
	"github.com/gogama/restx/retry"
	"github.com/gogama/restx/timeout"
	"github.com/gogama/restx/transport"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/gogama/restx"

// A Builder is an immutable description of one REST request. Its zero
// value is a valid, empty configuration, and New returns the zero
// value.
//
// Every configuration method returns a new Builder which is equal to
// the receiver except for the option the method changes. The receiver
// itself is never modified, so a partially configured Builder can be
// kept as a template and safely extended, even concurrently, by any
// number of goroutines:
//
//	api := restx.New().URL("https://api.example.com").JSON()
//	users := api.Command("users")
//	one := users.CommandInt(5)      // https://api.example.com/users/5
//	page := users.Parameter("page", 2) // https://api.example.com/users?page=2
//
// Builder methods panic with a *ConfigError when given an invalid
// value, such as an empty path segment or a non-positive buffer size.
type Builder struct {
	endpoint string
	segments []string
	params   []param
	escape   bool

	header func(http.Header)
	auth   func() string
	creds  *credentials

	payload     interface{}
	payloadType reflect.Type
	hasPayload  bool
	form        url.Values
	formMode    bool
	serializer  codec.Serializer

	verify     transport.CertificateValidator
	http2      bool
	doer       transport.Doer
	timeout    timeout.Policy
	bufferSize int
	gzip       bool
	limiter    *rate.Limiter

	reauthOff    bool
	refresh      retry.RefreshFunc
	refreshAsync retry.AsyncRefreshFunc

	handlers *HandlerGroup
	logger   *zerolog.Logger
	tracer   trace.Tracer

	onStart           func(*StartEvent)
	onPreviewRequest  func(PreviewEvent)
	onPreviewResponse func(PreviewEvent)
	onUpload          progress.Func
	onDownload        progress.Func
	onPreResult       func(*Envelope)
	onPreCompleted    func(PreCompletedEvent)
	onCompleted       func(CompletedEvent)
	onException       func(error)
}

type param struct {
	key   string
	value string
}

// A Param is one query parameter for Builder.Parameters.
type Param struct {
	Key   string
	Value interface{}
}

type credentials struct {
	username string
	password string
}

// New returns an empty Builder. It uses the JSON serializer, a 100
// second attempt timeout, an 80 KiB stream buffer and reauthentication
// enabled (although it has no effect until a refresh callback is set).
func New() Builder {
	return Builder{}
}

// URL returns a copy of b with the endpoint base URL set to endpoint,
// which must be an absolute URL.
func (b Builder) URL(endpoint string) Builder {
	u, err := url.Parse(endpoint)
	if err != nil {
		configPanic("URL", endpoint, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		configPanic("URL", endpoint, "not an absolute URL")
	}
	b.endpoint = endpoint
	return b
}

// Command returns a copy of b with a path segment appended. Leading
// slashes are normalized so the segment is joined with exactly one.
// The segment may itself contain slashes, as in "users/5".
func (b Builder) Command(segment string) Builder {
	s := strings.TrimLeft(segment, "/")
	if s == "" {
		configPanic("Command", segment, "empty path segment")
	}
	b.segments = appendClamped(b.segments, "/"+s)
	return b
}

// CommandInt returns a copy of b with the decimal form of n appended as
// a path segment.
func (b Builder) CommandInt(n int64) Builder {
	b.segments = appendClamped(b.segments, "/"+strconv.FormatInt(n, 10))
	return b
}

// CommandUint returns a copy of b with the decimal form of n appended
// as a path segment.
func (b Builder) CommandUint(n uint64) Builder {
	b.segments = appendClamped(b.segments, "/"+strconv.FormatUint(n, 10))
	return b
}

// CommandUUID returns a copy of b with the canonical form of id
// appended as a path segment.
func (b Builder) CommandUUID(id uuid.UUID) Builder {
	b.segments = appendClamped(b.segments, "/"+id.String())
	return b
}

// Parameter returns a copy of b with the query parameter key set to the
// textual form of value. A new key is added after the existing ones; an
// existing key keeps its position and only its value changes. A nil
// value is sent as an empty string.
//
// Values are sent as given, without percent-encoding, unless
// EscapeParameters(true) is set. The caller is responsible for values
// that contain reserved characters such as '&' or '='.
func (b Builder) Parameter(key string, value interface{}) Builder {
	if key == "" {
		configPanic("Parameter", key, "empty parameter key")
	}
	v := ""
	if value != nil {
		v = fmt.Sprint(value)
	}
	for i := range b.params {
		if b.params[i].key == key {
			ps := slices.Clone(b.params)
			ps[i].value = v
			b.params = ps
			return b
		}
	}
	b.params = appendClamped(b.params, param{key: key, value: v})
	return b
}

// Parameters returns a copy of b with each parameter set in order, as
// if by successive calls to Parameter.
func (b Builder) Parameters(ps ...Param) Builder {
	for _, p := range ps {
		b = b.Parameter(p.Key, p.Value)
	}
	return b
}

// EscapeParameters returns a copy of b which percent-encodes query
// parameter keys and values when building the final URL.
func (b Builder) EscapeParameters(escape bool) Builder {
	b.escape = escape
	return b
}

// Payload returns a copy of b with the request payload set to v. The
// payload is serialized with the configured serializer when the request
// is sent, unless form mode is enabled. A nil v serializes to an empty
// body.
func (b Builder) Payload(v interface{}) Builder {
	b.payload = v
	b.payloadType = reflect.TypeOf(v)
	b.hasPayload = true
	return b
}

// PayloadType returns the declared type of the payload, or nil if no
// payload was set or it was set to nil.
func (b Builder) PayloadType() reflect.Type {
	return b.payloadType
}

// FormURLEncoded returns a copy of b with the form values set to a
// copy of values, and form mode enabled. In form mode the request body
// is values encoded as application/x-www-form-urlencoded, and the
// payload is ignored.
func (b Builder) FormURLEncoded(values url.Values) Builder {
	form := make(url.Values, len(values))
	for k, v := range values {
		form[k] = slices.Clone(v)
	}
	b.form = form
	b.formMode = true
	return b
}

// EnableFormURLEncoded returns a copy of b with form mode switched on
// or off. The form values themselves are kept.
func (b Builder) EnableFormURLEncoded(enabled bool) Builder {
	b.formMode = enabled
	return b
}

// Header returns a copy of b with the header mutation function set to
// f. Function f receives the static header of each execution and may
// add to it or change it. It replaces any previously set function.
func (b Builder) Header(f func(http.Header)) Builder {
	b.header = f
	return b
}

// Authorization returns a copy of b which sends the Authorization
// header "scheme parameter" on each attempt, for example
// Authorization("Bearer", token).
func (b Builder) Authorization(scheme, parameter string) Builder {
	v := scheme
	if parameter != "" {
		v += " " + parameter
	}
	b.auth = func() string { return v }
	return b
}

// AuthorizationFunc returns a copy of b which calls f before each
// attempt and sends the result as the Authorization header. Because it
// is evaluated again for the reauthenticated retry, f is the natural
// place to read a token renewed by a refresh callback. An empty result
// sends no Authorization header.
func (b Builder) AuthorizationFunc(f func() string) Builder {
	b.auth = f
	return b
}

// Credentials returns a copy of b which authenticates with HTTP Basic
// Authentication. An Authorization or AuthorizationFunc value takes
// precedence over the credentials.
func (b Builder) Credentials(username, password string) Builder {
	b.creds = &credentials{username: username, password: password}
	return b
}

// CertificateValidation returns a copy of b which decides whether to
// accept server certificates by calling v. The validator applies only
// to executions of this Builder and its descendants.
func (b Builder) CertificateValidation(v transport.CertificateValidator) Builder {
	b.verify = v
	return b
}

// EnableHTTP2 returns a copy of b which negotiates HTTP/2 over TLS.
func (b Builder) EnableHTTP2(enabled bool) Builder {
	b.http2 = enabled
	return b
}

// Transport returns a copy of b which sends its attempts through d. A
// nil d restores the built-in transport. When a custom transport is
// set, CertificateValidation and EnableHTTP2 have no effect.
func (b Builder) Transport(d transport.Doer) Builder {
	b.doer = d
	return b
}

// Timeout returns a copy of b with each attempt limited to d. Zero
// means no timeout. A negative d panics.
func (b Builder) Timeout(d time.Duration) Builder {
	if d < 0 {
		configPanic("Timeout", d, "negative timeout")
	}
	b.timeout = timeout.Fixed(d)
	return b
}

// TimeoutPolicy returns a copy of b which uses p to decide the timeout
// of each attempt. A nil p restores timeout.DefaultPolicy.
func (b Builder) TimeoutPolicy(p timeout.Policy) Builder {
	b.timeout = p
	return b
}

// BufferSize returns a copy of b which moves bodies in chunks of at
// most n bytes, reporting progress after each one. Parameter n must be
// positive.
func (b Builder) BufferSize(n int) Builder {
	if n <= 0 {
		configPanic("BufferSize", n, "buffer size must be positive")
	}
	b.bufferSize = n
	return b
}

// EnableGZip returns a copy of b which asks for gzip compressed
// responses and transparently decodes them.
func (b Builder) EnableGZip(enabled bool) Builder {
	b.gzip = enabled
	return b
}

// Limiter returns a copy of b which waits on l before each attempt. A
// nil l removes the limit.
func (b Builder) Limiter(l *rate.Limiter) Builder {
	b.limiter = l
	return b
}

// Serializer returns a copy of b which uses s for payloads and typed
// results. A nil s panics.
func (b Builder) Serializer(s codec.Serializer) Builder {
	if s == nil {
		configPanic("Serializer", s, "nil serializer")
	}
	b.serializer = s
	return b
}

// JSON returns a copy of b which uses codec.JSON.
func (b Builder) JSON() Builder {
	return b.Serializer(codec.JSON)
}

// XML returns a copy of b which uses codec.XML.
func (b Builder) XML() Builder {
	return b.Serializer(codec.XML)
}

// RefreshToken returns a copy of b with reauthentication switched on or
// off. It is on by default.
func (b Builder) RefreshToken(enabled bool) Builder {
	b.reauthOff = !enabled
	return b
}

// RefreshTokenInvoke returns a copy of b which calls f to renew the
// credentials after a 401 (Unauthorized) response. If f returns nil,
// the request is sent once more. The asynchronous callback, if any, is
// kept.
func (b Builder) RefreshTokenInvoke(f retry.RefreshFunc) Builder {
	b.refresh = f
	return b
}

// RefreshTokenInvokeAsync returns a copy of b which calls f to renew
// the credentials after a 401 (Unauthorized) response, waiting for the
// outcome on the returned channel. The synchronous callback, if any, is
// kept and is tried first.
func (b Builder) RefreshTokenInvokeAsync(f retry.AsyncRefreshFunc) Builder {
	b.refreshAsync = f
	return b
}

// Logger returns a copy of b which logs execution activity to l. By
// default nothing is logged.
func (b Builder) Logger(l zerolog.Logger) Builder {
	b.logger = &l
	return b
}

// Tracer returns a copy of b which records a client span for each
// execution using t. By default the tracer of the global OpenTelemetry
// provider is used.
func (b Builder) Tracer(t trace.Tracer) Builder {
	b.tracer = t
	return b
}

// Handler returns a copy of b with h added to the back of the handler
// chain for evt. The handler chains of b are not changed.
func (b Builder) Handler(evt Event, h Handler) Builder {
	g := b.handlers.clone()
	g.PushBack(evt, h)
	b.handlers = g
	return b
}

// OnStart returns a copy of b which calls f before any network
// activity. Setting Cancel on the event aborts the execution, and the
// result then reports Canceled.
func (b Builder) OnStart(f func(*StartEvent)) Builder {
	b.onStart = f
	return b
}

// OnPreviewRequest returns a copy of b which calls f with the textual
// request body before each attempt that has one.
func (b Builder) OnPreviewRequest(f func(PreviewEvent)) Builder {
	b.onPreviewRequest = f
	return b
}

// OnPreviewResponse returns a copy of b which calls f with the
// response text, for text and typed results, before it is returned or
// deserialized.
func (b Builder) OnPreviewResponse(f func(PreviewEvent)) Builder {
	b.onPreviewResponse = f
	return b
}

// OnUploadProgress returns a copy of b which reports the progress of
// sending the request body.
func (b Builder) OnUploadProgress(f progress.Func) Builder {
	b.onUpload = f
	return b
}

// OnDownloadProgress returns a copy of b which reports the progress of
// reading the response body.
func (b Builder) OnDownloadProgress(f progress.Func) Builder {
	b.onDownload = f
	return b
}

// OnPreResult returns a copy of b which calls f with the result of a
// successful execution, just before OnPreCompleted.
//
// Deprecated: Use OnPreCompleted.
func (b Builder) OnPreResult(f func(*Envelope)) Builder {
	b.onPreResult = f
	return b
}

// OnPreCompleted returns a copy of b which calls f once the response
// has been materialized without error.
func (b Builder) OnPreCompleted(f func(PreCompletedEvent)) Builder {
	b.onPreCompleted = f
	return b
}

// OnCompleted returns a copy of b which calls f when an execution ends,
// whatever its outcome.
func (b Builder) OnCompleted(f func(CompletedEvent)) Builder {
	b.onCompleted = f
	return b
}

// OnException returns a copy of b which calls f with the error of a
// failed execution. Cancellation is not a failure and does not call f.
func (b Builder) OnException(f func(error)) Builder {
	b.onException = f
	return b
}

// FinalURL returns the URL an execution of b would request: the
// endpoint, then the path segments in order, then the query parameters
// in order.
func (b Builder) FinalURL() string {
	var sb strings.Builder
	if len(b.segments) > 0 {
		sb.WriteString(strings.TrimRight(b.endpoint, "/"))
	} else {
		sb.WriteString(b.endpoint)
	}
	for _, s := range b.segments {
		sb.WriteString(s)
	}
	for i, p := range b.params {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		if b.escape {
			sb.WriteString(url.QueryEscape(p.key))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(p.value))
		} else {
			sb.WriteString(p.key)
			sb.WriteByte('=')
			sb.WriteString(p.value)
		}
	}
	return sb.String()
}

func (b Builder) encoder() codec.Serializer {
	if b.serializer == nil {
		return codec.JSON
	}
	return b.serializer
}

func (b Builder) timeoutPolicy() timeout.Policy {
	if b.timeout == nil {
		return timeout.DefaultPolicy
	}
	return b.timeout
}

func (b Builder) retryPolicy() retry.Policy {
	if b.reauthOff {
		return retry.Never
	}
	return &retry.Reauth{
		Refresh:      b.refresh,
		RefreshAsync: b.refreshAsync,
	}
}

func (b Builder) log() zerolog.Logger {
	if b.logger == nil {
		return zerolog.Nop()
	}
	return *b.logger
}

func (b Builder) spanTracer() trace.Tracer {
	if b.tracer == nil {
		return otel.Tracer(tracerName)
	}
	return b.tracer
}

// appendClamped appends x to a copy-on-write view of s, so the result
// never shares spare capacity with a sibling Builder.
func appendClamped[E any](s []E, x E) []E {
	return append(s[:len(s):len(s)], x)
}
