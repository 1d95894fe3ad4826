// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"net/http"

	"github.com/gogama/relay/request"
	"github.com/sirupsen/logrus"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes a request plan and returns the normalized response.
// Relay implements the Doer interface, and any other Doer
// implementation must behave substantially the same as Relay.Do: in
// particular, transport failures produce a degraded Response rather
// than an error.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(p *request.Plan) (*Response, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Any Doer can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string, header http.Header) (*Response, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Any Doer can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url string, data interface{}, header http.Header) (*Response, error)
}

// Header is the interface that wraps the basic Head method.
//
// Any Doer can be used to emulate a Header via the Head function.
type Header interface {
	Head(url string, header http.Header) (*Response, error)
}

// StatusGetter is the interface that wraps the basic GetStatus method.
//
// Any Doer can be used to emulate a StatusGetter via the GetStatus
// function.
type StatusGetter interface {
	GetStatus(url string, header http.Header) (int, error)
}

// HeadersGetter is the interface that wraps the basic ResponseHeaders
// method.
//
// Any Doer can be used to emulate a HeadersGetter via the
// ResponseHeaders function.
type HeadersGetter interface {
	ResponseHeaders(url string, header http.Header) (map[string]string, error)
}

// Executor is the interface that groups the basic Do, Get, Post, Head,
// GetStatus, and ResponseHeaders methods.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Getter
	Poster
	Header
	StatusGetter
	HeadersGetter
}

// Get uses the specified Doer to issue a GET to the specified URL.
func Get(d Doer, url string, header http.Header) (*Response, error) {
	p, err := newPlan("GET", url, nil, header)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

// Post uses the specified Doer to issue a POST to the specified URL,
// following the same conventions as Relay.Post.
func Post(d Doer, url string, data interface{}, header http.Header) (*Response, error) {
	p, err := newPostPlan(url, data, header)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

// Head uses the specified Doer to issue a HEAD to the specified URL.
func Head(d Doer, url string, header http.Header) (*Response, error) {
	p, err := newPlan("HEAD", url, nil, header)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

// GetStatus uses the specified Doer to resolve the status of the
// specified URL, following location headers up to DefaultMaxHops times
// like Relay.GetStatus.
func GetStatus(d Doer, url string, header http.Header) (int, error) {
	p, err := newPlan("HEAD", url, nil, header)
	if err != nil {
		return 0, err
	}
	do := func(p *request.Plan, _ int) (*Response, error) {
		return d.Do(p)
	}
	return followStatus(do, p, DefaultMaxHops, logrus.StandardLogger())
}

// ResponseHeaders uses the specified Doer to issue a HEAD to the
// specified URL and returns only the response headers.
func ResponseHeaders(d Doer, url string, header http.Header) (map[string]string, error) {
	resp, err := Head(d, url, header)
	if resp == nil {
		return nil, err
	}
	return resp.Header, err
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that only
// has access to a Doer needs to call a function that requires an
// Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("relay: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(p *request.Plan) (*Response, error) {
	return i.doer.Do(p)
}

func (i inflated) Get(url string, header http.Header) (*Response, error) {
	return Get(i.doer, url, header)
}

func (i inflated) Post(url string, data interface{}, header http.Header) (*Response, error) {
	return Post(i.doer, url, data, header)
}

func (i inflated) Head(url string, header http.Header) (*Response, error) {
	return Head(i.doer, url, header)
}

func (i inflated) GetStatus(url string, header http.Header) (int, error) {
	return GetStatus(i.doer, url, header)
}

func (i inflated) ResponseHeaders(url string, header http.Header) (map[string]string, error) {
	return ResponseHeaders(i.doer, url, header)
}
