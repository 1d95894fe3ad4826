// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package forward

import (
	"fmt"
	"runtime"
	"strings"
)

// AgentName is the product token identifying the relay in the
// synthesized User-Agent.
const AgentName = "relay"

// Version is the relay build identifier. Override it at link time with
// -ldflags "-X github.com/gogama/relay/forward.Version=...".
var Version = "21.3.1"

// UserAgent returns the synthesized User-Agent, of the form
//
//	Mozilla/5.0 (compatible; Linux/5.10.0) relay/21.3.1
//
// The operating system name and release come from uname(2) where the
// platform provides it. Elsewhere the title-cased runtime.GOOS is used
// and the release is omitted.
func UserAgent() string {
	return formatUserAgent(osInfo())
}

func formatUserAgent(system, release string) string {
	platform := system
	if release != "" {
		platform += "/" + release
	}
	return fmt.Sprintf("Mozilla/5.0 (compatible; %s) %s/%s", platform, AgentName, Version)
}

func goosName() string {
	switch runtime.GOOS {
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	default:
		if runtime.GOOS == "" {
			return "Unknown"
		}
		return strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:]
	}
}
