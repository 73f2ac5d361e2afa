// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// A Doer sends one HTTP request attempt and returns the response.
// *http.Client satisfies Doer, and it is the only method the restx
// invoker calls on its transport.
//
// Implementations of Doer must be safe for concurrent use by multiple
// goroutines.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// An IdleCloser can close idle connections. *http.Client satisfies
// IdleCloser. The invoker calls CloseIdleConnections on transports it
// created for a single execution once the execution ends.
type IdleCloser interface {
	CloseIdleConnections()
}

// A CertificateValidator decides whether to accept the certificate
// chain presented by a server. Parameter err is the result of the
// standard chain verification against the system roots and the server
// name, nil if the chain is valid. Returning true accepts the
// connection even if err is not nil.
type CertificateValidator func(chain []*x509.Certificate, err error) bool

// Config describes the transport of one execution. The zero Config is
// served by a shared client.
type Config struct {
	// Verify, if not nil, replaces the accept/reject decision of
	// standard certificate verification for this transport only.
	Verify CertificateValidator

	// HTTP2 configures the transport to negotiate HTTP/2 over TLS.
	HTTP2 bool
}

var (
	defaultOnce   sync.Once
	defaultClient *http.Client
)

// Default returns the shared client used for executions with a zero
// Config.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = &http.Client{Transport: newTransport()}
	})
	return defaultClient
}

// New returns a client honoring cfg. For the zero Config it returns
// Default and reports shared as true; otherwise the client is freshly
// built and owned by the caller, which should close its idle
// connections when done.
func New(cfg Config) (c *http.Client, shared bool, err error) {
	if cfg.Verify == nil && !cfg.HTTP2 {
		return Default(), true, nil
	}
	t := newTransport()
	if cfg.Verify != nil {
		t.TLSClientConfig = tlsConfig(cfg.Verify)
	}
	if cfg.HTTP2 {
		if err = http2.ConfigureTransport(t); err != nil {
			return nil, false, err
		}
	}
	return &http.Client{Transport: t}, false, nil
}

// newTransport builds the base transport. Compression is disabled:
// Accept-Encoding is only sent when gzip is enabled on the builder, and
// the body is then decoded by the invoker.
func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		DisableCompression:    true,
	}
}

var errRejected = errors.New("restx/transport: certificate rejected by validator")

func tlsConfig(verify CertificateValidator) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		// The chain is verified in VerifyConnection.
		InsecureSkipVerify: true,
		VerifyConnection: func(cs tls.ConnectionState) error {
			err := verifyChain(cs)
			if verify(cs.PeerCertificates, err) {
				return nil
			}
			if err == nil {
				err = errRejected
			}
			return err
		},
	}
}

func verifyChain(cs tls.ConnectionState) error {
	if len(cs.PeerCertificates) == 0 {
		return errors.New("restx/transport: no peer certificates")
	}
	opts := x509.VerifyOptions{
		DNSName:       cs.ServerName,
		Intermediates: x509.NewCertPool(),
	}
	for _, cert := range cs.PeerCertificates[1:] {
		opts.Intermediates.AddCert(cert)
	}
	_, err := cs.PeerCertificates[0].Verify(opts)
	return err
}
