// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"fmt"
	"testing"

	"github.com/gogama/relay/request"
	"github.com/stretchr/testify/assert"
)

func TestHandlerGroup(t *testing.T) {
	var evts []string
	var execs []*request.Execution
	h1 := &testHandler{seq: 1, evts: &evts, execs: &execs}
	h2 := &testHandler{seq: 2, evts: &evts, execs: &execs}
	g := &HandlerGroup{}
	t.Run("PushBack", func(t *testing.T) {
		assert.Panics(t, func() { g.PushBack(BeforeExecutionStart, nil) })
		assert.Panics(t, func() { g.PushBack(Event(123), h1) })
		g.PushBack(BeforeExecutionStart, h1)
		g.PushBack(BeforeExecutionStart, h2)
		g.PushBack(BeforeDecode, h1)
	})
	t.Run("run", func(t *testing.T) {
		e1 := &request.Execution{Hop: 1}
		e2 := &request.Execution{Hop: 2}
		assert.Empty(t, evts)
		assert.Empty(t, execs)
		g.run(AfterExecutionEnd, e1)
		assert.Empty(t, evts)
		assert.Empty(t, execs)
		g.run(BeforeExecutionStart, e1)
		assert.Equal(t, []string{"1.BeforeExecutionStart", "2.BeforeExecutionStart"}, evts)
		assert.Equal(t, []*request.Execution{e1, e1}, execs)
		evts = evts[:0]
		execs = execs[:0]
		g.run(BeforeDecode, e2)
		assert.Equal(t, []string{"1.BeforeDecode"}, evts)
		assert.Equal(t, []*request.Execution{e2}, execs)
	})
	t.Run("empty group", func(t *testing.T) {
		assert.NotPanics(t, func() { (&HandlerGroup{}).run(AfterAttempt, &request.Execution{}) })
	})
}

type testHandler struct {
	seq   int
	evts  *[]string
	execs *[]*request.Execution
}

func (h *testHandler) Handle(evt Event, e *request.Execution) {
	*h.evts = append(*h.evts, fmt.Sprintf("%d.%s", h.seq, evt))
	*h.execs = append(*h.execs, e)
}

func TestHandlerFunc(t *testing.T) {
	var gotEvt Event
	var gotE *request.Execution
	h := HandlerFunc(func(evt Event, e *request.Execution) {
		gotEvt = evt
		gotE = e
	})
	e := &request.Execution{Caller: "relay.Get"}
	h.Handle(BeforeReadBody, e)

	assert.Equal(t, BeforeReadBody, gotEvt)
	assert.Same(t, e, gotE)
}
