// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Plan (describes the one
outbound HTTP request a relay call makes) and Execution (describes the
state of a Plan execution).

A Plan looks like a stripped-down http.Request from net/http: server-side
fields are removed, the body is a pre-buffered []byte, and the method is
limited to the three the relay speaks (GET, POST and HEAD). The URL must
be absolute and use the http or https scheme.

	p, err := request.NewPlan("GET", "https://example.com", nil)
	...
	resp, err := r.Do(p)
	...

A plan may be assigned a context to allow the caller to bound or cancel
the round trip:

	p, err := request.NewPlanWithContext(ctx, "POST", "https://example.com/form", body)

Execution is the input type for callbacks invoked while a plan executes:
timeout policies and event handlers. You will typically not allocate
Execution instances yourself.
*/
package request
