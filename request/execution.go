// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/relay/transient"
)

// An Execution represents the state of a single Plan execution: one
// outbound round trip and the decoding of its response.
//
// Timeout policies and event handlers may store values on an Execution
// with SetValue and read them back with Value. They should otherwise
// treat the exported fields as read-only, with the limited exception of
// reasonable changes to the http.Request before it is sent (for example
// request signing).
type Execution struct {
	// Plan specifies the plan being executed. It is never nil.
	Plan *Plan
	// Caller names the public relay operation that started the
	// execution, for example "relay.Get". It is used for diagnostics.
	Caller string
	// Hop is the zero-based number of location headers followed to
	// reach Plan. It is only ever non-zero for executions started while
	// resolving a status.
	Hop int
	// Start is the time the execution started. It is zero until then.
	Start time.Time
	// End is the time the execution ended. It is zero until then.
	End time.Time
	// Request is the HTTP request to be sent, or already sent. Its
	// header carries the relay's defaults; the plan's header does not.
	Request *http.Request
	// Response is the HTTP response received. It is nil if the round
	// trip ended in error or has not completed.
	Response *http.Response
	// Err is the transport error, if any, that ended the round trip or
	// the reading of the response body. Whenever Err is non-nil, it has
	// the type *url.Error.
	Err error
	// Body is the raw response body, before any content decoding.
	Body []byte

	data context.Context
}

// StatusCode returns the status code of the HTTP response, or 0 if
// there is no response.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Header returns the HTTP response headers. If there is no HTTP
// response, the nil header is returned, which is safe for read-only
// operations.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		return nil
	}
	return e.Response.Header
}

// Duration returns the duration of the execution: zero before it
// starts, the time elapsed since Start while it is in flight, and End
// minus Start once it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}
	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution. The key must follow the same rules as the key parameter in
// context.WithValue.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}
	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}
	return ctx.Value(key)
}
