// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package decode turns a raw HTTP response body into UTF-8 text.

Decoding happens in two stages. First the content codings named by the
Content-Encoding header are undone (gzip and deflate are understood).
Then, if the Content-Type header names a charset, the bytes are
transcoded from that charset to UTF-8.

	text, err := decode.Body(raw, resp.Header)

Both stages are forgiving. A gzip stream whose CRC-32/size trailer is
missing or wrong is decompressed anyway, and a charset that is unknown
or fails to transcode leaves the bytes untouched. The only error Body
returns is a content coding that cannot be undone even leniently; it
matches ErrCorrupt under errors.Is.
*/
package decode
