// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package forward

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
)

// DefaultAcceptEncoding is the Accept-Encoding value Apply sets when the
// caller did not set one.
const DefaultAcceptEncoding = "gzip, deflate"

// Names of the environment variables read by FromOS. They follow the
// CGI conventions for exposing the inbound request to the program.
const (
	EnvRemoteAddr   = "REMOTE_ADDR"
	EnvForwardedFor = "HTTP_X_FORWARDED_FOR"
	EnvUserAgent    = "HTTP_USER_AGENT"
)

// An Env describes the environment a relay call is made from.
type Env struct {
	// RemoteAddr is the address of the client the relay acts for.
	RemoteAddr string
	// ForwardedFor is the X-Forwarded-For chain the client's request
	// arrived with. Its first entry takes precedence over RemoteAddr.
	ForwardedFor string
	// UserAgent, if non-empty, replaces the synthesized User-Agent.
	UserAgent string
	// HostIP is the relaying host's own IP address.
	HostIP string
}

// FromOS returns the Env described by the process environment variables
// REMOTE_ADDR, HTTP_X_FORWARDED_FOR and HTTP_USER_AGENT. HostIP is left
// empty; use LocalHostIP to resolve it.
func FromOS() Env {
	return Env{
		RemoteAddr:   os.Getenv(EnvRemoteAddr),
		ForwardedFor: os.Getenv(EnvForwardedFor),
		UserAgent:    os.Getenv(EnvUserAgent),
	}
}

// ClientIP returns the address of the original client: the first entry
// of ForwardedFor if there is one, otherwise RemoteAddr.
func (env Env) ClientIP() string {
	if env.ForwardedFor != "" {
		first := strings.SplitN(env.ForwardedFor, ",", 2)[0]
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return strings.TrimSpace(env.RemoteAddr)
}

// Apply sets the relay's default headers on h, skipping any header
// already present in h:
//
// • Accept-Encoding is set to DefaultAcceptEncoding;
//
// • User-Agent is set to env.UserAgent, or if that is empty, to
// UserAgent();
//
// • X-Forwarded-For is set to "{client}, {host}" where client is
// env.ClientIP() and host is env.HostIP, but only if both are known.
func Apply(h http.Header, env Env) {
	setDefault(h, "Accept-Encoding", DefaultAcceptEncoding)

	ua := env.UserAgent
	if ua == "" {
		ua = UserAgent()
	}
	setDefault(h, "User-Agent", ua)

	if client := env.ClientIP(); client != "" && env.HostIP != "" {
		setDefault(h, "X-Forwarded-For", client+", "+env.HostIP)
	}
}

// NeedsHostIP reports whether Apply would use env.HostIP on h, so that
// callers only pay for resolving it when an X-Forwarded-For header will
// actually be added.
func NeedsHostIP(h http.Header, env Env) bool {
	return !Has(h, "X-Forwarded-For") && env.ClientIP() != ""
}

func setDefault(h http.Header, key, value string) {
	if !Has(h, key) {
		h.Set(key, value)
	}
}

// Has reports whether h carries key. The lookup is case-insensitive,
// so it also finds keys a caller stored in non-canonical form.
func Has(h http.Header, key string) bool {
	if _, ok := h[http.CanonicalHeaderKey(key)]; ok {
		return true
	}
	for k := range h {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// A Resolver looks up the IP addresses of a host. *net.Resolver
// implements Resolver.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

var errNoAddrs = errors.New("relay/forward: no addresses")

// HostIP resolves hostname with r and returns its first IPv4 address,
// or its first address of any family if it has no IPv4 address.
func HostIP(ctx context.Context, r Resolver, hostname string) (string, error) {
	addrs, err := r.LookupIPAddr(ctx, hostname)
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if ip4 := a.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	if len(addrs) > 0 {
		return addrs[0].IP.String(), nil
	}
	return "", fmt.Errorf("%w for host %q", errNoAddrs, hostname)
}

// LocalHostIP returns the IP address of the local host, found by
// resolving os.Hostname() with net.DefaultResolver.
func LocalHostIP(ctx context.Context) (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return HostIP(ctx, net.DefaultResolver, hostname)
}
