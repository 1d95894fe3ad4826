// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies the transport errors a relay call can
// run into (timeouts, refused or reset connections, DNS failures) so
// that diagnostics can report the class of failure alongside the
// message.
//
// Package transient depends only on the standard library packages
// "errors", "net" and "syscall", so it brings no significant
// dependencies when imported as a standalone package.
package transient
