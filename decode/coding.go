// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package decode

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// ErrCorrupt is matched, under errors.Is, by every error reporting a
// content coding that could not be undone.
var ErrCorrupt = errors.New("relay/decode: corrupt content coding")

// A CodingError reports a body that could not be decoded from the named
// content coding.
type CodingError struct {
	// Coding is the content coding, for example "gzip".
	Coding string
	// Err is the decompressor's error.
	Err error
}

func (e *CodingError) Error() string {
	return "relay/decode: bad " + e.Coding + " content: " + e.Err.Error()
}

// Unwrap returns the decompressor's error.
func (e *CodingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrCorrupt.
func (e *CodingError) Is(target error) bool {
	return target == ErrCorrupt
}

// Codings returns the content codings listed in the Content-Encoding
// header of h, lower-cased, in the order they were applied.
func Codings(h http.Header) []string {
	var codings []string
	for _, v := range h.Values("Content-Encoding") {
		for _, c := range strings.Split(v, ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				codings = append(codings, c)
			}
		}
	}
	return codings
}

// Content undoes the content codings listed in h, last applied first.
// An empty body is returned as is. Decoding stops at the first coding
// that is neither gzip, x-gzip, deflate nor identity, leaving the
// remaining bytes in the form that coding produced.
func Content(raw []byte, h http.Header) ([]byte, error) {
	if len(raw) == 0 {
		return raw, nil
	}
	b := raw
	codings := Codings(h)
	for i := len(codings) - 1; i >= 0; i-- {
		var err error
		switch codings[i] {
		case "gzip", "x-gzip":
			b, err = Gunzip(b)
		case "deflate":
			b, err = Inflate(b)
		case "identity":
			continue
		default:
			return b, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Gunzip decompresses a gzip body.
//
// A strict pass verifies the CRC-32 and length trailer of the stream.
// If it fails, a relaxed pass decompresses the first member without
// looking at the trailer at all, which recovers bodies whose trailer
// was cut off or mangled in transit. If the relaxed pass fails too,
// the returned *CodingError wraps the relaxed pass's error.
func Gunzip(raw []byte) ([]byte, error) {
	b, strictErr := gunzipStrict(raw)
	if strictErr == nil {
		return b, nil
	}
	b, err := gunzipRelaxed(raw)
	if err != nil {
		return nil, errors.WithStack(&CodingError{
			Coding: "gzip",
			Err:    errors.Wrapf(err, "without trailer check (strict: %v)", strictErr),
		})
	}
	return b, nil
}

func gunzipStrict(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return ioutil.ReadAll(zr)
}

func gunzipRelaxed(raw []byte) ([]byte, error) {
	// A *bytes.Reader is a flate.Reader, so gzip.NewReader reads the
	// member header from it directly and leaves it positioned at the
	// first byte of the deflate stream.
	br := bytes.NewReader(raw)
	if _, err := gzip.NewReader(br); err != nil {
		return nil, err
	}
	fr := flate.NewReader(br)
	defer fr.Close()
	return ioutil.ReadAll(fr)
}

// Inflate decompresses a deflate body. RFC 9110 defines deflate as a
// zlib stream, but some servers send raw deflate data, so Inflate falls
// back to raw deflate when the zlib header or checksum is wrong.
func Inflate(raw []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err == nil {
		var b []byte
		b, err = ioutil.ReadAll(zr)
		_ = zr.Close()
		if err == nil {
			return b, nil
		}
	}
	fr := flate.NewReader(bytes.NewReader(raw))
	defer fr.Close()
	b, rawErr := ioutil.ReadAll(fr)
	if rawErr != nil {
		return nil, errors.WithStack(&CodingError{
			Coding: "deflate",
			Err:    errors.Wrapf(rawErr, "as raw deflate (zlib: %v)", err),
		})
	}
	return b, nil
}
