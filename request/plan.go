// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

// A Plan is the wire-level description of one logical REST request. It
// is derived from a finalized restx.Builder snapshot when an execution
// method is called, and is used to produce one http.Request per attempt.
//
// A Plan holds the request body as plain bytes, already serialized (or
// form-encoded) by the builder. Because the body is pre-buffered, the
// same Plan can produce any number of identical attempts, which is what
// makes the reauthentication retry possible.
//
// A Plan carries no context. Each attempt gets its context from
// ToRequest, so the execution alone controls cancellation.
type Plan struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// URL specifies the final URL to access, including path segments
	// and query parameters.
	URL *urlpkg.URL

	// Header contains the static request header fields. Per-attempt
	// headers (authorization callbacks, trace propagation) are added to
	// a copy of Header by ToRequest's caller, so Header itself never
	// changes between attempts.
	Header http.Header

	// Body is the pre-buffered request body. A nil or empty body
	// indicates no request body should be sent.
	Body []byte

	// ContentType is the media type of Body, sent as the Content-Type
	// header. It is ignored when Body is empty.
	ContentType string

	// Host optionally overrides the Host header to send. If empty, the
	// value of URL.Host will be sent.
	Host string
}

// NewPlan returns a new Plan with an empty body given a method and URL.
// An empty method means GET, and a method which is not a valid HTTP
// token is rejected.
func NewPlan(method, url string) (*Plan, error) {
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("restx/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	return &Plan{
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Host:   u.Host,
	}, nil
}

// WithBody returns a copy of p carrying the given body and content
// type. The header map is cloned so the copy and p never share it.
func (p *Plan) WithBody(body []byte, contentType string) *Plan {
	p2 := new(Plan)
	*p2 = *p
	p2.Header = p.Header.Clone()
	if p2.Header == nil {
		p2.Header = make(http.Header)
	}
	p2.Body = body
	p2.ContentType = contentType
	return p2
}

// SetBasicAuth sets the plan's Authorization header to use HTTP Basic
// Authentication with the provided username and password.
//
// With HTTP Basic Authentication the provided username and password
// are not encrypted.
func (p *Plan) SetBasicAuth(username, password string) {
	p.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// ToRequest creates an HTTP request attempt for the plan. The context
// of the new request is set to ctx, which may not be nil. The request
// gets its own copy of the plan header, so changes made to the request
// header do not leak into later attempts.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := template.WithContext(ctx)
	r.Method = p.Method
	r.URL = p.URL
	r.Header = p.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if len(p.Body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
		if p.ContentType != "" {
			r.Header.Set("Content-Type", p.ContentType)
		}
	}
	r.Host = p.Host
	return r
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// validMethod reports whether method is an RFC 7230 token. The empty
// string never reaches here because it is interpreted as "GET".
func validMethod(method string) bool {
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
