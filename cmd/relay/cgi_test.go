// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gogama/relay"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = httptest.NewUnstartedServer(newOriginMux())

func TestMain(m *testing.M) {
	origin.Start()
	code := m.Run()
	origin.Close()
	os.Exit(code)
}

type echo struct {
	Method string
	Header http.Header
	Body   string
}

func newOriginMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/echo", func(w http.ResponseWriter, req *http.Request) {
		b, _ := ioutil.ReadAll(req.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echo{Method: req.Method, Header: req.Header, Body: string(b)})
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		w.Header().Set("X-Origin", "yes")
		_, _ = w.Write([]byte("caf\xe9"))
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte("squeezed"))
		_ = gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(buf.Bytes())
	})
	mux.HandleFunc("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "a", Value: "1", Expires: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)})
		http.SetCookie(w, &http.Cookie{Name: "b", Value: "2"})
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("cookies"))
	})
	mux.HandleFunc("/created", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "/teapot")
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func newTestRelay() *relay.Relay {
	logger, _ := test.NewNullLogger()
	return &relay.Relay{
		HTTPDoer: origin.Client(),
		Logger:   logger,
		HostIP: func(context.Context) (string, error) {
			return "192.0.2.9", nil
		},
	}
}

func cgiRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, "/relay.cgi?url="+url.QueryEscape(target), nil)
	} else {
		r = httptest.NewRequest(method, "/relay.cgi?url="+url.QueryEscape(target), strings.NewReader(body))
	}
	r.RemoteAddr = "198.51.100.4:5555"
	return r
}

func serveCGI(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h := &cgiHandler{relay: newTestRelay()}
	h.ServeHTTP(w, req)
	return w
}

func TestCGIHandler(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		w := serveCGI(httptest.NewRequest("GET", "/relay.cgi", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("invalid url", func(t *testing.T) {
		w := serveCGI(cgiRequest("GET", "ftp://files.example.com/", ""))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("method not allowed", func(t *testing.T) {
		w := serveCGI(cgiRequest("PUT", origin.URL+"/echo", "x"))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET, HEAD, POST", w.Header().Get("Allow"))
	})
	t.Run("transcoded", func(t *testing.T) {
		w := serveCGI(cgiRequest("GET", origin.URL+"/latin1", ""))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "café", w.Body.String())
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "yes", w.Header().Get("X-Origin"))
		assert.Empty(t, w.Header().Get("Content-Length"))
	})
	t.Run("decompressed", func(t *testing.T) {
		w := serveCGI(cgiRequest("GET", origin.URL+"/gzip", ""))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "squeezed", w.Body.String())
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	})
	t.Run("error status", func(t *testing.T) {
		w := serveCGI(cgiRequest("GET", origin.URL+"/teapot", ""))
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "short and stout", w.Body.String())
	})
	t.Run("cookies not echoed", func(t *testing.T) {
		w := serveCGI(cgiRequest("GET", origin.URL+"/cookie", ""))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cookies", w.Body.String())
		assert.Empty(t, w.Header().Values("Set-Cookie"))
		assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	})
	t.Run("head", func(t *testing.T) {
		w := serveCGI(cgiRequest("HEAD", origin.URL+"/teapot", ""))
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Empty(t, w.Body.String())
	})
	t.Run("forwarding headers", func(t *testing.T) {
		req := cgiRequest("GET", origin.URL+"/echo", "")
		req.Header.Set("User-Agent", "Browser/1.0")
		req.Header.Set("Accept-Encoding", "br")
		req.Header.Set("X-Custom", "kept")
		w := serveCGI(req)
		require.Equal(t, http.StatusOK, w.Code)
		var e echo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
		assert.Equal(t, "GET", e.Method)
		assert.Equal(t, "198.51.100.4, 192.0.2.9", e.Header.Get("X-Forwarded-For"))
		assert.Equal(t, "Browser/1.0", e.Header.Get("User-Agent"))
		assert.Equal(t, "gzip, deflate", e.Header.Get("Accept-Encoding"))
		assert.Equal(t, "kept", e.Header.Get("X-Custom"))
	})
	t.Run("inbound forwarded for", func(t *testing.T) {
		req := cgiRequest("GET", origin.URL+"/echo", "")
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := serveCGI(req)
		var e echo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
		assert.Equal(t, "203.0.113.7, 192.0.2.9", e.Header.Get("X-Forwarded-For"))
	})
	t.Run("post body", func(t *testing.T) {
		req := cgiRequest("POST", origin.URL+"/echo", "k=v")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := serveCGI(req)
		var e echo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
		assert.Equal(t, "POST", e.Method)
		assert.Equal(t, "k=v", e.Body)
	})
	t.Run("post query as form", func(t *testing.T) {
		w := serveCGI(cgiRequest("POST", origin.URL+"/echo?z=26&a=1", ""))
		var e echo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
		assert.Equal(t, "a=1&z=26", e.Body)
		assert.Equal(t, "application/x-www-form-urlencoded", e.Header.Get("Content-Type"))
	})
	t.Run("degraded", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := l.Addr().String()
		require.NoError(t, l.Close())
		w := serveCGI(cgiRequest("GET", "http://"+addr+"/", ""))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestUpstreamHeader(t *testing.T) {
	in := http.Header{
		"Connection":      {"keep-alive"},
		"Cookie":          {"a=1"},
		"Content-Length":  {"3"},
		"User-Agent":      {"x"},
		"X-Forwarded-For": {"1.2.3.4"},
		"Accept":          {"text/html"},
	}
	out := upstreamHeader(in)
	assert.Equal(t, http.Header{
		"Cookie": {"a=1"},
		"Accept": {"text/html"},
	}, out)
	assert.Len(t, in, 6)
}

func TestUTF8ContentType(t *testing.T) {
	testCases := []struct {
		in, out string
	}{
		{"text/html; charset=ISO-8859-1", "text/html; charset=utf-8"},
		{"text/plain; charset=\"windows-1251\"; format=flowed", "text/plain; charset=utf-8; format=flowed"},
		{"application/json", "application/json"},
		{"not a media type;;", "not a media type;;"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.in, func(t *testing.T) {
			assert.Equal(t, testCase.out, utf8ContentType(testCase.in))
		})
	}
}

func TestClientEnv(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	req.Header.Set("User-Agent", "UA/1")
	env := clientEnv(req)
	assert.Equal(t, "2001:db8::1", env.RemoteAddr)
	assert.Equal(t, "UA/1", env.UserAgent)
	assert.Empty(t, env.ForwardedFor)

	req.RemoteAddr = "192.0.2.77"
	assert.Equal(t, "192.0.2.77", clientEnv(req).RemoteAddr)
}
