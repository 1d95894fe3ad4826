// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	urlpkg "net/url"
	"strings"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

const (
	nilCtxMsg = "relay/request: nil context"
)

// A Plan describes the single HTTP request a relay call sends.
//
// The field structure of Plan mirrors the lower-level http.Request with
// server-only fields removed and Body simplified to a pre-buffered byte
// slice.
//
// Like http.Request, a Plan has a context which can be used to cancel
// the in-flight request at any time.
type Plan struct {
	// Method specifies the HTTP method: GET, POST or HEAD.
	Method string
	// URL specifies the absolute http or https URL to access.
	URL *urlpkg.URL
	// Header contains the request header fields supplied by the caller.
	// The relay applies its defaults to a copy, so Header is never
	// modified by plan execution.
	Header http.Header
	// Body is the pre-buffered request body. It is only sent for POST.
	Body []byte
	// Host optionally overrides the Host header to send. If empty, the
	// value of URL.Host will be sent.
	Host string
	// ctx allows the Plan execution to be cancelled. It should only
	// be modified by copying the whole Plan using WithContext.
	ctx context.Context
}

// NewPlan wraps NewPlanWithContext using the background context.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	return NewPlanWithContext(context.Background(), method, url, body)
}

// NewPlanWithContext returns a new Plan given a method, URL, and
// optional body.
//
// An empty method means GET. Any method other than GET, POST and HEAD
// is rejected, as is a URL that is not absolute or whose scheme is not
// http or https.
//
// Parameter body may be any type accepted by BodyBytes. A body given
// with GET or HEAD is kept on the plan but never sent.
func NewPlanWithContext(ctx context.Context, method, url string, body interface{}) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("relay/request: unsupported method %q", method)
	}
	u, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
		Host:   u.Host,
	}, nil
}

// ParseURL parses rawURL and checks that it is usable as a relay
// target: absolute, with scheme http or https, and with a host. An
// empty port ("host:") is stripped as mandated by RFC 3986 section
// 6.2.3.
func ParseURL(rawURL string) (*urlpkg.URL, error) {
	u, err := urlpkg.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("relay/request: unsupported URL scheme %q in %q", u.Scheme, rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("relay/request: missing host in %q", rawURL)
	}
	u.Host = removeEmptyPort(u.Host)
	return u, nil
}

// Context returns the plan's context. The returned context is always
// non-nil; it defaults to the background context.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx, which must be non-nil.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// WithURL returns a shallow copy of p targeting u. The Host override is
// reset to u.Host. The relay uses it to follow a location header while
// keeping the caller's method, headers and context.
func (p *Plan) WithURL(u *urlpkg.URL) *Plan {
	p2 := new(Plan)
	*p2 = *p
	p2.URL = u
	p2.Host = u.Host
	return p2
}

// ToRequest creates the HTTP request for the plan, carrying header h
// instead of the plan's own Header. The context of the new request is
// set to ctx, which may not be nil.
func (p *Plan) ToRequest(ctx context.Context, h http.Header) *http.Request {
	r := template.WithContext(ctx)
	r.Method = p.Method
	r.URL = p.URL
	r.Header = h
	if p.Method == "POST" {
		r.Body = ioutil.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return ioutil.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
		if len(p.Body) == 0 {
			r.Body = http.NoBody
		}
	}
	r.Host = p.Host
	return r
}

func validMethod(method string) bool {
	switch method {
	case "GET", "POST", "HEAD":
		return true
	default:
		return false
	}
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
