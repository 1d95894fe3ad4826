// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/relay/request"
)

// A Policy defines a timeout policy which may be plugged into the relay
// (relay.Relay) to direct how long the outbound round trip, including
// reading the response body, may take.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the HTTP request about to
	// be sent.
	//
	// Parameter e contains the current state of the relay execution,
	// including the plan being executed.
	Timeout(e *request.Execution) time.Duration
}

// Infinite is a built-in timeout policy which never times out. The
// round trip is then bounded only by the plan context and by whatever
// limits the operating system and the HTTP doer impose.
var Infinite Policy = Fixed(1<<63 - 1)

// DefaultPolicy is the timeout policy used when none is configured. The
// relay sets no explicit timeout of its own, so DefaultPolicy is
// Infinite.
var DefaultPolicy = Infinite

// Fixed constructs a timeout policy that always returns d.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (f fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(f)
}
