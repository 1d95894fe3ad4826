// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package relay makes a single HTTP request on behalf of someone else and
hands back the decoded result.

Create a Relay to begin making requests. Its zero value is ready to use.

	r := &relay.Relay{}
	resp, err := r.Get("https://www.example.com", nil)
	...
	resp, err := r.Post("https://www.example.com/form?a=1&b=2", nil, nil)
	...
	status, err := r.GetStatus("https://www.example.com/moved", nil)

Every call builds the request headers, sends one request and decodes
one response. Missing Accept-Encoding, User-Agent and X-Forwarded-For
headers are filled in from the environment (see package forward), and
the response body is decompressed and transcoded to UTF-8 (see package
decode). A Response carries the decoded body, the status code and the
response headers keyed by lower-cased name.

Network failures never surface as errors. They are logged through the
relay's logrus logger and the call returns a Response with an empty
body, status 500 and nil headers. HTTP error statuses from the origin
are returned as ordinary responses.

The relay's environment is explicit rather than global when you want it
to be:

	r := &relay.Relay{
		Env: &forward.Env{
			RemoteAddr: clientAddr,
			HostIP:     "192.0.2.1",
		},
		TimeoutPolicy: timeout.Fixed(10 * time.Second),
		Logger:        logger,
	}

To hook into the details of a call, install a handler into the
appropriate handler chain:

	handlers := &relay.HandlerGroup{}
	handlers.PushBack(relay.BeforeAttempt, relay.HandlerFunc(
		func(_ relay.Event, e *request.Execution) {
			log.Printf("%s %s", e.Request.Method, e.Request.URL)
		}))
	r := &relay.Relay{Handlers: handlers}

Package relay provides basic interfaces for each method of Relay (Doer,
Getter, Poster, Header, StatusGetter and HeadersGetter); a combined
interface that composes all the basic methods (Executor); and utility
functions for working with a Doer (Inflate, Get, Post, Head, GetStatus
and ResponseHeaders).
*/
package relay
