// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"fmt"
	"net/url"

	"github.com/gogama/relay/request"
	"github.com/gogama/relay/transient"
	"github.com/sirupsen/logrus"
)

func executionFields(e *request.Execution) logrus.Fields {
	return logrus.Fields{
		"url":    e.Plan.URL.String(),
		"caller": e.Caller,
	}
}

func logTransportError(log logrus.FieldLogger, e *request.Execution) {
	log.WithFields(executionFields(e)).
		WithField("error_class", errorClass(e.Err)).
		WithError(e.Err).
		Error("Could not load URL")
}

func logDecodeError(log logrus.FieldLogger, e *request.Execution, err error) {
	log.WithFields(executionFields(e)).
		WithField("status", e.StatusCode()).
		WithError(err).
		Error("Could not decode response body")
}

func logHostIPError(log logrus.FieldLogger, e *request.Execution, err error) {
	log.WithFields(executionFields(e)).
		WithError(err).
		Error("Could not get server IP address")
}

// errorClass names the transient category of err and the type of the
// error beneath the *url.Error wrapper, e.g. "DNS/*net.OpError".
func errorClass(err error) string {
	cause := err
	if urlErr, ok := err.(*url.Error); ok {
		cause = urlErr.Err
	}
	return fmt.Sprintf("%s/%T", transient.Categorize(err), cause)
}
