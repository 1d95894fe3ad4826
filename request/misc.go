// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
	"io/ioutil"
	urlpkg "net/url"
)

const badBodyTypeMsg = "relay/request: invalid type (for body use nil, " +
	"string, []byte, url.Values, io.Reader or io.ReadCloser)"

// BodyBytes converts a generic body parameter to a byte slice for use
// as a plan body.
//
// The conversion logic is:
//
// • nil gives a nil byte slice;
//
// • a []byte is returned as is, and a string is converted;
//
// • url.Values are form-encoded with their Encode method;
//
// • an io.Reader is read to the end, and closed afterward if it is an
// io.ReadCloser. A read or close error is returned with a nil slice;
//
// • any other type is an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case urlpkg.Values:
		return []byte(x.Encode()), nil
	case io.ReadCloser:
		b, err := ioutil.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(ioutil.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}

// QueryForm re-encodes the query string of u as an
// application/x-www-form-urlencoded body. Keys are sorted and repeated
// keys keep every value. The query is not removed from u.
//
// Query pairs that fail to decode are dropped, as url.ParseQuery does.
func QueryForm(u *urlpkg.URL) []byte {
	values, _ := urlpkg.ParseQuery(u.RawQuery)
	return []byte(values.Encode())
}
