// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/gogama/restx/codec"
	"github.com/gogama/restx/progress"
	"github.com/gogama/restx/request"
	"github.com/gogama/restx/retry"
	"github.com/gogama/restx/timeout"
	"github.com/gogama/restx/transport"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var errStartCanceled = fmt.Errorf("restx: canceled by on-start callback: %w", context.Canceled)

// maxDrain bounds how much of an abandoned response body is read so the
// connection can be reused for the retry.
const maxDrain = 64 << 10

// A materializer turns the final response of an execution into the
// content of its result. Except for streams, it must consume and close
// the response body.
type materializer[T any] func(inv *invocation, resp *http.Response) (T, error)

// invocation holds the state of one execution which is not part of the
// request.Execution handlers see.
type invocation struct {
	b   Builder
	ctx context.Context
	e   *request.Execution
	env *Envelope
	log zerolog.Logger

	attemptCtx context.Context
	cancel     context.CancelFunc
	idle       transport.IdleCloser
	sent       int
	detached   bool
}

// execute runs one execution of b and returns its result. It never
// returns nil, and it never returns an error other than through the
// result: configuration errors were already raised by the Builder.
//
// The sequence is:
//
// • build the final URL and plan, then fire BeforeExecutionStart and
// the on-start callback, which may cancel;
//
// • send the first attempt, and send it once more if the
// reauthentication policy refreshed the credentials after a 401;
//
// • materialize the final response with m;
//
// • fire the pre-result callbacks on success, or the exception callback
// on failure, then AfterExecutionEnd and the completed callback.
func execute[T any](ctx context.Context, b Builder, method string, m materializer[T]) *Result[T] {
	if ctx == nil {
		panic("restx: nil context")
	}
	if method == "" {
		method = http.MethodGet
	}

	r := &Result[T]{}
	e := &request.Execution{ID: uuid.New()}
	r.ID = e.ID
	u := b.FinalURL()

	ctx, span := b.spanTracer().Start(ctx, "restx "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", u),
			attribute.String("restx.execution_id", e.ID.String()),
		))
	defer span.End()

	inv := &invocation{
		b:   b,
		ctx: ctx,
		e:   e,
		env: &r.Envelope,
		log: b.log().With().
			Str("execution_id", e.ID.String()).
			Str("method", method).
			Str("url", u).
			Logger(),
	}

	var err error
	r.Content, err = invoke(inv, method, u, m)
	if err == nil {
		r.content = r.Content
	}
	inv.finish(err, span)
	return r
}

func invoke[T any](inv *invocation, method, u string, m materializer[T]) (content T, err error) {
	b, e := inv.b, inv.e
	e.Start = time.Now()

	p, err := request.NewPlan(method, u)
	if err != nil {
		return content, err
	}
	if b.creds != nil {
		p.SetBasicAuth(b.creds.username, b.creds.password)
	}
	if b.header != nil {
		b.header(p.Header)
	}
	e.Plan = p
	b.handlers.run(BeforeExecutionStart, e)

	if b.onStart != nil {
		evt := &StartEvent{Method: p.Method, URL: u, Payload: b.payload}
		b.onStart(evt)
		if evt.Cancel {
			return content, errStartCanceled
		}
	}

	doer, err := inv.doer()
	if err != nil {
		return content, urlErrorWrap(p, err)
	}

	policy := b.retryPolicy()
	for {
		inv.attempt(p, doer)
		if !policy.Decide(inv.ctx, e) {
			break
		}
		if e.Response != nil {
			drain(e.Response.Body)
		}
		inv.cancel()
		e.Response = nil
		e.Err = nil
		e.Attempt++
		inv.log.Info().Int("attempt", e.Attempt).Msg("credentials refreshed, retrying")
		b.handlers.run(BeforeRetry, e)
	}
	if err = retry.RefreshErr(e); err != nil {
		if errors.Is(err, retry.ErrNoRefresh) {
			inv.log.Debug().Msg("unauthorized, no refresh callback")
		} else {
			inv.log.Warn().Err(err).Msg("credentials refresh failed")
		}
	}

	if e.Err != nil {
		return content, e.Err
	}

	resp := e.Response
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	b.handlers.run(BeforeReadBody, e)
	if content, err = m(inv, resp); err != nil {
		return content, err
	}
	b.handlers.run(BeforeResult, e)
	return content, nil
}

// attempt sends one request attempt for plan p, leaving the outcome in
// the execution's Response and Err fields.
func (inv *invocation) attempt(p *request.Plan, doer transport.Doer) {
	b, e := inv.b, inv.e
	e.Request, e.Response, e.Err = nil, nil, nil

	body, contentType, err := inv.body()
	if err != nil {
		e.Err = err
		return
	}
	ap := p.WithBody(body, contentType)
	e.Plan = ap

	if b.limiter != nil {
		if err = b.limiter.Wait(inv.ctx); err != nil {
			e.Err = urlErrorWrap(ap, err)
			return
		}
	}

	inv.attemptCtx, inv.cancel = timeout.Attempt(inv.ctx, b.timeoutPolicy(), e)
	e.Request = ap.ToRequest(inv.attemptCtx)
	inv.decorate(e.Request)
	b.handlers.run(BeforeAttempt, e)

	inv.log.Debug().Int("attempt", e.Attempt).Msg("sending attempt")
	inv.sent++
	resp, err := doer.Do(e.Request)
	if err != nil {
		e.Err = urlErrorWrap(ap, err)
		inv.log.Debug().Int("attempt", e.Attempt).Err(e.Err).Msg("attempt failed")
	} else {
		e.Response = resp
		inv.log.Debug().Int("attempt", e.Attempt).Int("status", resp.StatusCode).Msg("response received")
	}
	b.handlers.run(AfterAttempt, e)
}

// body materializes the outgoing body. Form mode wins over the payload
// when it is on and there are form values.
func (inv *invocation) body() ([]byte, string, error) {
	b := inv.b
	if b.formMode && len(b.form) > 0 {
		text := b.form.Encode()
		inv.previewRequest(text, nil)
		return []byte(text), "application/x-www-form-urlencoded", nil
	}
	if !b.hasPayload || codec.IsNil(b.payload) {
		return nil, "", nil
	}
	s := b.encoder()
	text, err := s.Serialize(b.payload)
	if err != nil {
		return nil, "", fmt.Errorf("restx: serialize %v payload: %w", b.payloadType, err)
	}
	if text == "" {
		return nil, "", nil
	}
	inv.previewRequest(text, b.payloadType)
	return []byte(text), s.MediaType() + "; charset=utf-8", nil
}

func (inv *invocation) decorate(r *http.Request) {
	b := inv.b
	if b.gzip {
		r.Header.Set("Accept-Encoding", "gzip")
	}
	if b.auth != nil {
		if v := b.auth(); v != "" {
			r.Header.Set("Authorization", v)
		}
	}
	otel.GetTextMapPropagator().Inject(r.Context(), propagation.HeaderCarrier(r.Header))
	if r.Body != nil && b.onUpload != nil {
		r.Body = progress.NewReader(r.Context(), r.Body, r.ContentLength, b.bufferSize, b.onUpload)
	}
}

func (inv *invocation) doer() (transport.Doer, error) {
	if inv.b.doer != nil {
		return inv.b.doer, nil
	}
	c, shared, err := transport.New(transport.Config{
		Verify: inv.b.verify,
		HTTP2:  inv.b.http2,
	})
	if err != nil {
		return nil, err
	}
	if !shared {
		inv.idle = c
	}
	return c, nil
}

func (inv *invocation) previewRequest(text string, t reflect.Type) {
	if f := inv.b.onPreviewRequest; f != nil {
		f(PreviewEvent{Content: text, Type: t})
	}
}

func (inv *invocation) finish(err error, span trace.Span) {
	b, e, env := inv.b, inv.e, inv.env
	e.Err = err
	env.Err = err
	env.Attempts = inv.sent
	if resp := e.Response; resp != nil {
		env.StatusCode = resp.StatusCode
		env.Status = resp.Status
		env.Proto = resp.Proto
		env.Header = resp.Header
	}
	span.SetAttributes(
		attribute.Int("http.response.status_code", env.StatusCode),
		attribute.Int("restx.attempts", env.Attempts),
	)

	switch {
	case err == nil:
		if b.onPreResult != nil {
			b.onPreResult(env)
		}
		if b.onPreCompleted != nil {
			b.onPreCompleted(PreCompletedEvent{Envelope: env, Completed: true})
		}
	case env.Canceled():
		inv.log.Info().Err(err).Msg("execution canceled")
		span.SetStatus(codes.Error, "canceled")
	default:
		inv.log.Error().Err(err).Int("status", env.StatusCode).Msg("execution failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if b.onException != nil {
			b.onException(err)
		}
	}

	e.End = time.Now()
	env.Duration = e.Duration()
	b.handlers.run(AfterExecutionEnd, e)
	if !inv.detached || err != nil {
		inv.release()
	}
	if b.onCompleted != nil {
		b.onCompleted(CompletedEvent{Envelope: env, Elapsed: time.Since(e.Start)})
	}
}

// release cancels the last attempt's context and closes the idle
// connections of a transport built for this execution.
func (inv *invocation) release() {
	if inv.cancel != nil {
		inv.cancel()
	}
	if inv.idle != nil {
		inv.idle.CloseIdleConnections()
	}
}

func drain(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, body, maxDrain)
	_ = body.Close()
}

func urlErrorWrap(p *request.Plan, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: p.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
