// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package decode

import (
	"bytes"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// Charset returns the charset parameter of the Content-Type header in
// h, or "" if there is none. A Content-Type that is not a well-formed
// media type is searched for a literal "charset=" instead.
func Charset(h http.Header) string {
	ct := h.Get("Content-Type")
	if ct == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(ct); err == nil {
		return strings.TrimSpace(params["charset"])
	}
	i := strings.Index(strings.ToLower(ct), "charset=")
	if i < 0 {
		return ""
	}
	cs := ct[i+len("charset="):]
	if j := strings.IndexByte(cs, ';'); j >= 0 {
		cs = cs[:j]
	}
	return strings.Trim(strings.TrimSpace(cs), `"'`)
}

// Encoding returns the encoding registered under the WHATWG label name,
// or nil if there is none.
func Encoding(name string) encoding.Encoding {
	e, _ := charset.Lookup(name)
	return e
}

// Transcode converts b from the named charset to UTF-8. The error is
// non-nil if the charset is unknown or the conversion fails. Decoders
// substitute U+FFFD for input they cannot map, so output carrying more
// U+FFFD runes than b itself counts as a failed conversion.
func Transcode(b []byte, name string) ([]byte, error) {
	e := Encoding(name)
	if e == nil {
		return nil, errors.Errorf("relay/decode: unsupported charset %q", name)
	}
	out, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return nil, errors.Wrapf(err, "relay/decode: transcoding from %q", name)
	}
	if bytes.Count(out, replacement) > bytes.Count(b, replacement) {
		return nil, errors.Errorf("relay/decode: input is not valid %q", name)
	}
	return out, nil
}

var replacement = []byte(string(utf8.RuneError))

// Body decodes a raw response body, received with header h, to UTF-8
// text. It undoes the content codings (see Content) and then transcodes
// from the declared charset, keeping the bytes unchanged if the charset
// is unknown or the bytes are not valid in it (see Transcode).
// Byte sequences that are still not valid UTF-8 are replaced with
// U+FFFD.
func Body(raw []byte, h http.Header) (string, error) {
	b, err := Content(raw, h)
	if err != nil {
		return "", err
	}
	if name := Charset(h); name != "" {
		if t, err := Transcode(b, name); err == nil {
			b = t
		}
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError)), nil
}
