// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"net"
	"syscall"
)

// A Category is the class of a transport error, as reported by function
// Categorize.
//
// The category Not means the error does not belong to any of the
// recognized network failure classes. It is also the category of a nil
// error.
type Category int

const (
	// Not indicates an error outside every other category.
	Not Category = iota
	// Timeout indicates a client-side timeout, either a dial or read
	// deadline or an expired request context.
	//
	// Function Categorize returns Timeout if the error or any of its
	// wrapped causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// Function Categorize returns ConnRefused if the error is not a
	// Timeout, and the error or any of its wrapped causes is equal to
	// syscall.ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	//
	// Function Categorize returns ConnReset if the error is not a
	// Timeout, and the error or any of its wrapped causes is equal to
	// syscall.ECONNRESET.
	ConnReset
	// DNS indicates the target host name could not be resolved.
	//
	// Function Categorize returns DNS if the error is not a Timeout and
	// the error or any of its wrapped causes is a *net.DNSError.
	DNS
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"DNS",
}

// String returns the name of the category.
func (cat Category) String() string {
	i := int(cat)
	if i < 0 || i >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[i]
}

// Categorize returns the category of the given error. A nil error, and
// an error belonging to no recognized class, both produce the return
// value Not.
//
// In assessing the category, Categorize looks at wrapped cause errors
// contained within err, not just err itself. However, Categorize never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
