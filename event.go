// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Relay to observe or adjust the
// request it sends and the response it receives.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// relay call starts. Only the execution's plan, caller and hop
	// fields are set.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs after the HTTP
	// request has been built, default headers included, and before it
	// is sent.
	//
	// BeforeAttempt handlers may modify the execution's request, for
	// example to sign it. They should clone the URL before changing it,
	// as it is shared with the plan.
	BeforeAttempt
	// BeforeReadBody identifies the event that occurs after an HTTP
	// response has been received, regardless of its status code, but
	// before its body is read.
	BeforeReadBody
	// AfterAttempt identifies the event that occurs after the round trip
	// concludes, successfully or not. Either the execution's response
	// or its error is set.
	AfterAttempt
	// BeforeDecode identifies the event that occurs after the raw body
	// has been read and before it is decoded. It does not occur if the
	// round trip failed.
	BeforeDecode
	// AfterExecutionEnd identifies the event that occurs after the relay
	// call ends. The execution's end time is set.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeReadBody",
	"AfterAttempt",
	"BeforeDecode",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur in a
// relay call, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		BeforeReadBody,
		AfterAttempt,
		BeforeDecode,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
