// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"io/ioutil"
	"mime"
	"net"
	"net/http"
	"net/http/cgi"

	"github.com/gogama/relay"
	"github.com/gogama/relay/forward"
)

type cgiCmd struct{}

func (c *cgiCmd) Run(rt *runtime) error {
	return cgi.Serve(&cgiHandler{relay: rt.relay})
}

// cgiHandler relays the URL named by the url query parameter using the
// inbound request's method, body and headers, and writes the decoded
// result back.
//
// Upstream headers arrive with repeated values joined by ", ", which
// cannot be split back apart for Set-Cookie, so cookies are not passed
// through.
type cgiHandler struct {
	relay *relay.Relay
}

// Inbound headers that are not passed upstream. X-Forwarded-For and
// User-Agent travel through forward.Env instead.
var dropRequestHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Proxy-Connection":    true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
	"Host":                true,
	"Content-Length":      true,
	"Accept-Encoding":     true,
	"X-Forwarded-For":     true,
	"User-Agent":          true,
}

// Upstream headers that no longer describe the body written back, and
// set-cookie, whose joined values clients cannot split.
var dropResponseHeaders = map[string]bool{
	"connection":        true,
	"keep-alive":        true,
	"proxy-connection":  true,
	"te":                true,
	"trailer":           true,
	"transfer-encoding": true,
	"upgrade":           true,
	"content-encoding":  true,
	"content-length":    true,
	"set-cookie":        true,
}

func (h *cgiHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	target := req.URL.Query().Get("url")
	if target == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	r := *h.relay
	env := clientEnv(req)
	r.Env = &env
	header := upstreamHeader(req.Header)

	var resp *relay.Response
	var err error
	switch req.Method {
	case http.MethodGet:
		resp, err = r.Get(target, header)
	case http.MethodHead:
		resp, err = r.Head(target, header)
	case http.MethodPost:
		var b []byte
		b, err = ioutil.ReadAll(req.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var data interface{}
		if len(b) > 0 {
			data = b
		}
		resp, err = r.Post(target, data, header)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if resp == nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for k, v := range resp.Header {
		if dropResponseHeaders[k] {
			continue
		}
		if k == "content-type" {
			v = utf8ContentType(v)
		}
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func clientEnv(req *http.Request) forward.Env {
	addr := req.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return forward.Env{
		RemoteAddr:   addr,
		ForwardedFor: req.Header.Get("X-Forwarded-For"),
		UserAgent:    req.UserAgent(),
	}
}

func upstreamHeader(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for k, vs := range in {
		if dropRequestHeaders[http.CanonicalHeaderKey(k)] {
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// utf8ContentType replaces the charset parameter, if any, since the
// body has been transcoded.
func utf8ContentType(v string) string {
	mediaType, params, err := mime.ParseMediaType(v)
	if err != nil {
		return v
	}
	if _, ok := params["charset"]; !ok {
		return v
	}
	params["charset"] = "utf-8"
	return mime.FormatMediaType(mediaType, params)
}
