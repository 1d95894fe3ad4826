// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris

package forward

import "golang.org/x/sys/unix"

func osInfo() (system, release string) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return goosName(), ""
	}
	system = unix.ByteSliceToString(u.Sysname[:])
	if system == "" {
		system = goosName()
	}
	return system, unix.ByteSliceToString(u.Release[:])
}
