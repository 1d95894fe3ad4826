// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/relay/decode"
	"github.com/gogama/relay/forward"
	"github.com/gogama/relay/request"
	"github.com/gogama/relay/timeout"
	"github.com/sirupsen/logrus"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	Do(r *http.Request) (*http.Response, error)
}

// DegradedStatus is the status code of the Response returned when the
// request could not be carried out at all.
const DegradedStatus = http.StatusInternalServerError

// DefaultMaxHops is the number of location headers GetStatus follows
// when Relay.MaxHops is zero.
const DefaultMaxHops = 10

var emptyHandlers = HandlerGroup{}

// A Response is the normalized result of a relay call.
type Response struct {
	// Body is the decoded response body as UTF-8 text. It is empty for
	// HEAD requests and for degraded results.
	Body string
	// StatusCode is the HTTP status code the origin server returned,
	// or DegradedStatus if no response was received.
	StatusCode int
	// Header maps lower-cased response header names to their values.
	// A header received more than once has its values joined with
	// ", ". Header is nil if no response was received.
	Header map[string]string
}

// A Relay makes one outbound HTTP request per call on behalf of a
// client, and normalizes the response. Its zero value is a valid
// configuration.
//
// Before sending, the relay adds default Accept-Encoding, User-Agent and
// X-Forwarded-For headers (see package forward) unless the caller set
// them. After receiving, it decodes the body to UTF-8 text (see package
// decode).
//
// A relay call never fails because of the network. When the request
// cannot be carried out, because the host does not resolve, the
// connection is refused, or the request times out, the relay logs a
// diagnostic and returns a degraded Response with an empty body, status
// DegradedStatus and a nil Header. HTTP error statuses are not failures
// either: a 404 or 503 response is decoded and returned like any other.
//
// Relay holds no per-call state, so a single Relay may be used from
// multiple goroutines, but it never issues requests concurrently
// itself and never retries.
type Relay struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard net/http
	// package is used. Note that it follows redirects on its own.
	HTTPDoer HTTPDoer
	// TimeoutPolicy bounds the round trip.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used, which
	// sets no timeout.
	TimeoutPolicy timeout.Policy
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during a relay call.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Logger receives the relay's diagnostics.
	//
	// If Logger is nil, logrus.StandardLogger() is used.
	Logger logrus.FieldLogger
	// Env describes the client the relay acts for.
	//
	// If Env is nil, forward.FromOS() is consulted on every call.
	Env *forward.Env
	// HostIP resolves the relaying host's IP address for the
	// X-Forwarded-For header when Env carries none. It is only called
	// when that header will actually be added.
	//
	// If HostIP is nil, forward.LocalHostIP is used.
	HostIP func(ctx context.Context) (string, error)
	// MaxHops is the number of location headers GetStatus follows
	// before giving up and returning the last status seen.
	//
	// If MaxHops is zero, DefaultMaxHops is used. If it is negative, no
	// location headers are followed.
	MaxHops int
}

// Do executes the request plan and returns the normalized response.
//
// The returned error is nil unless the response body used a content
// coding that could not be undone (see decode.ErrCorrupt). In that case
// the returned Response carries the status code and headers but an
// empty body.
//
// For simple use cases, the Get, Post, Head, GetStatus and
// ResponseHeaders methods may prove easier to use than Do.
func (r *Relay) Do(p *request.Plan) (*Response, error) {
	return r.do("relay.Do", p, 0)
}

// Get issues a GET to the specified URL with the caller's header, which
// may be nil. See Do for error semantics.
func (r *Relay) Get(url string, header http.Header) (*Response, error) {
	p, err := newPlan("GET", url, nil, header)
	if err != nil {
		return nil, err
	}
	return r.do("relay.Get", p, 0)
}

// Post issues a POST to the specified URL.
//
// The data parameter may be any of the types supported by
// request.BodyBytes, namely: string; []byte; url.Values; io.Reader; and
// io.ReadCloser. If data is nil, the query string of the URL is
// re-encoded as form data and sent as the body (the URL keeps its
// query). The Content-Type header defaults to
// application/x-www-form-urlencoded.
func (r *Relay) Post(url string, data interface{}, header http.Header) (*Response, error) {
	p, err := newPostPlan(url, data, header)
	if err != nil {
		return nil, err
	}
	return r.do("relay.Post", p, 0)
}

// Head issues a HEAD to the specified URL. The Body of the returned
// Response is always empty.
func (r *Relay) Head(url string, header http.Header) (*Response, error) {
	p, err := newPlan("HEAD", url, nil, header)
	if err != nil {
		return nil, err
	}
	return r.do("relay.Head", p, 0)
}

// GetStatus issues a HEAD to the specified URL and returns the status
// code. If the response has a location header, GetStatus issues a HEAD
// to that location instead, resolved relative to the current URL, and so
// on, up to MaxHops times.
//
// The error is non-nil if url is invalid or a location header names a
// URL the relay cannot fetch.
func (r *Relay) GetStatus(url string, header http.Header) (int, error) {
	p, err := newPlan("HEAD", url, nil, header)
	if err != nil {
		return 0, err
	}
	do := func(p *request.Plan, hop int) (*Response, error) {
		return r.do("relay.GetStatus", p, hop)
	}
	return followStatus(do, p, r.maxHops(), r.logger())
}

// ResponseHeaders issues a HEAD to the specified URL and returns the
// response headers only. The map is nil if no response was received.
func (r *Relay) ResponseHeaders(url string, header http.Header) (map[string]string, error) {
	p, err := newPlan("HEAD", url, nil, header)
	if err != nil {
		return nil, err
	}
	resp, err := r.do("relay.ResponseHeaders", p, 0)
	if resp == nil {
		return nil, err
	}
	return resp.Header, err
}

func (r *Relay) do(caller string, p *request.Plan, hop int) (*Response, error) {
	e := request.Execution{
		Plan:   p,
		Caller: caller,
		Hop:    hop,
	}

	handlers := r.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}
	handlers.run(BeforeExecutionStart, &e)
	e.Start = time.Now()

	resp, err := r.execute(&e, handlers)

	e.End = time.Now()
	handlers.run(AfterExecutionEnd, &e)
	return resp, err
}

func (r *Relay) execute(e *request.Execution, handlers *HandlerGroup) (*Response, error) {
	header := r.requestHeader(e)
	sendAndReceive(e, header, r.doer(), handlers, r.timeoutPolicy())
	handlers.run(AfterAttempt, e)
	if e.Err != nil {
		logTransportError(r.logger(), e)
		return &Response{StatusCode: DegradedStatus}, nil
	}

	resp := &Response{
		StatusCode: e.StatusCode(),
		Header:     lowerHeader(e.Header()),
	}
	handlers.run(BeforeDecode, e)
	body, err := decode.Body(e.Body, e.Header())
	if err != nil {
		logDecodeError(r.logger(), e, err)
		return resp, err
	}
	resp.Body = body
	return resp, nil
}

// requestHeader returns a copy of the plan header with the relay's
// defaults applied.
func (r *Relay) requestHeader(e *request.Execution) http.Header {
	h := e.Plan.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	env := r.env()
	if env.HostIP == "" && forward.NeedsHostIP(h, env) {
		ip, err := r.hostIP(e.Plan.Context())
		if err != nil {
			logHostIPError(r.logger(), e, err)
		}
		env.HostIP = ip
	}
	forward.Apply(h, env)
	return h
}

func sendAndReceive(e *request.Execution, header http.Header, doer HTTPDoer, handlers *HandlerGroup, timeoutPolicy timeout.Policy) {
	p := e.Plan
	ctx, cancel := context.WithTimeout(p.Context(), timeoutPolicy.Timeout(e))
	defer cancel()
	e.Request = p.ToRequest(ctx, header)
	handlers.run(BeforeAttempt, e)
	var err error
	e.Response, err = doer.Do(e.Request)
	if err != nil {
		e.Response = nil
		e.Err = urlErrorWrap(p, err)
		return
	}
	readBody(e, handlers)
}

func readBody(e *request.Execution, handlers *HandlerGroup) {
	defer func() {
		_ = e.Response.Body.Close()
	}()
	handlers.run(BeforeReadBody, e)
	var err error
	e.Body, err = ioutil.ReadAll(e.Response.Body)
	if err != nil {
		e.Err = urlErrorWrap(e.Plan, err)
	}
}

func (r *Relay) doer() HTTPDoer {
	if r.HTTPDoer == nil {
		return http.DefaultClient
	}
	return r.HTTPDoer
}

func (r *Relay) timeoutPolicy() timeout.Policy {
	if r.TimeoutPolicy == nil {
		return timeout.DefaultPolicy
	}
	return r.TimeoutPolicy
}

func (r *Relay) logger() logrus.FieldLogger {
	if r.Logger == nil {
		return logrus.StandardLogger()
	}
	return r.Logger
}

func (r *Relay) env() forward.Env {
	if r.Env == nil {
		return forward.FromOS()
	}
	return *r.Env
}

func (r *Relay) hostIP(ctx context.Context) (string, error) {
	if r.HostIP == nil {
		return forward.LocalHostIP(ctx)
	}
	return r.HostIP(ctx)
}

func (r *Relay) maxHops() int {
	switch {
	case r.MaxHops == 0:
		return DefaultMaxHops
	case r.MaxHops < 0:
		return 0
	default:
		return r.MaxHops
	}
}

func lowerHeader(h http.Header) map[string]string {
	m := make(map[string]string, len(h))
	for k, vs := range h {
		k = strings.ToLower(k)
		v := strings.Join(vs, ", ")
		if prev, ok := m[k]; ok {
			v = prev + ", " + v
		}
		m[k] = v
	}
	return m
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
