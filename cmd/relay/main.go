// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command relay fetches a URL the way a relay library caller would and
// prints the normalized result. Run as "relay cgi" it serves as a CGI
// program relaying the URL named by its url query parameter.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gogama/relay"
	"github.com/gogama/relay/forward"
	"github.com/gogama/relay/timeout"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Globals are the flags shared by every command.
type Globals struct {
	RemoteAddr   string        `name:"remote-addr" env:"REMOTE_ADDR" placeholder:"IP" help:"Address of the client the relay acts for."`
	ForwardedFor string        `name:"forwarded-for" env:"HTTP_X_FORWARDED_FOR" placeholder:"LIST" help:"X-Forwarded-For chain the client's request arrived with."`
	UserAgent    string        `name:"user-agent" env:"HTTP_USER_AGENT" help:"User-Agent to send instead of the relay's own."`
	Timeout      time.Duration `help:"Round trip timeout. Zero means none."`
	MaxHops      int           `name:"max-hops" default:"10" help:"Location headers followed by the status command. Zero disables following."`
	LogLevel     string        `name:"log-level" default:"warning" enum:"trace,debug,info,warning,error" help:"Log level (${enum})."`
}

type cli struct {
	Globals

	Get     getCmd     `cmd:"" help:"Issue a GET and print the response."`
	Post    postCmd    `cmd:"" help:"Issue a POST and print the response."`
	Head    headCmd    `cmd:"" help:"Issue a HEAD and print the response."`
	Status  statusCmd  `cmd:"" help:"Print the status of a URL, following location headers."`
	Headers headersCmd `cmd:"" help:"Print the response headers of a URL."`
	CGI     cgiCmd     `cmd:"" name:"cgi" help:"Serve one request as a CGI program."`
}

// runtime is what every command's Run method receives.
type runtime struct {
	relay *relay.Relay
	out   io.Writer
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("relay"),
		kong.Description("Relay HTTP requests with forwarding headers and decoded bodies."),
		kong.UsageOnError())

	logger, err := newLogger(c.LogLevel, os.Stderr)
	ctx.FatalIfErrorf(err)

	rt := &runtime{
		relay: c.newRelay(logger),
		out:   os.Stdout,
	}
	ctx.FatalIfErrorf(ctx.Run(rt))
}

func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

func (g *Globals) newRelay(logger logrus.FieldLogger) *relay.Relay {
	r := &relay.Relay{
		Logger: logger,
		Env: &forward.Env{
			RemoteAddr:   g.RemoteAddr,
			ForwardedFor: g.ForwardedFor,
			UserAgent:    g.UserAgent,
		},
		MaxHops: g.MaxHops,
	}
	if g.MaxHops == 0 {
		r.MaxHops = -1
	}
	if g.Timeout > 0 {
		r.TimeoutPolicy = timeout.Fixed(g.Timeout)
	}
	return r
}

// Target is the URL and request headers a command operates on.
type Target struct {
	URL    string   `arg:"" help:"URL to fetch."`
	Header []string `short:"H" sep:"none" placeholder:"KEY: VALUE" help:"Request header. May be repeated."`
}

func (t *Target) header() (http.Header, error) {
	h := make(http.Header, len(t.Header))
	for _, kv := range t.Header {
		i := strings.IndexByte(kv, ':')
		if i <= 0 {
			return nil, fmt.Errorf("relay: malformed header %q", kv)
		}
		h.Add(strings.TrimSpace(kv[:i]), strings.TrimSpace(kv[i+1:]))
	}
	return h, nil
}

type getCmd struct {
	Target
}

func (c *getCmd) Run(rt *runtime) error {
	h, err := c.header()
	if err != nil {
		return err
	}
	resp, err := rt.relay.Get(c.URL, h)
	return printResponse(rt.out, resp, err)
}

type postCmd struct {
	Target
	Data string `short:"d" help:"Request body. If empty, the URL's query string is sent as form data."`
}

func (c *postCmd) Run(rt *runtime) error {
	h, err := c.header()
	if err != nil {
		return err
	}
	var data interface{}
	if c.Data != "" {
		data = c.Data
	}
	resp, err := rt.relay.Post(c.URL, data, h)
	return printResponse(rt.out, resp, err)
}

type headCmd struct {
	Target
}

func (c *headCmd) Run(rt *runtime) error {
	h, err := c.header()
	if err != nil {
		return err
	}
	resp, err := rt.relay.Head(c.URL, h)
	return printResponse(rt.out, resp, err)
}

type statusCmd struct {
	Target
}

func (c *statusCmd) Run(rt *runtime) error {
	h, err := c.header()
	if err != nil {
		return err
	}
	status, err := rt.relay.GetStatus(c.URL, h)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(rt.out, status)
	return err
}

type headersCmd struct {
	Target
}

func (c *headersCmd) Run(rt *runtime) error {
	h, err := c.header()
	if err != nil {
		return err
	}
	m, err := rt.relay.ResponseHeaders(c.URL, h)
	if err != nil {
		return err
	}
	return printHeader(rt.out, m)
}

// printResponse writes the status line, the headers and the body. A
// Response that comes with a decoding error is still printed, without
// body, before the error is returned.
func printResponse(w io.Writer, resp *relay.Response, err error) error {
	if resp == nil {
		return err
	}
	if _, werr := fmt.Fprintf(w, "%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode)); werr != nil {
		return werr
	}
	if werr := printHeader(w, resp.Header); werr != nil {
		return werr
	}
	if _, werr := fmt.Fprintf(w, "\n%s", resp.Body); werr != nil {
		return werr
	}
	return err
}

func printHeader(w io.Writer, m map[string]string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %s\n", k, m[k]); err != nil {
			return err
		}
	}
	return nil
}
