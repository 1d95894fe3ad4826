// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package relay

import (
	"net/http"

	"github.com/gogama/relay/forward"
	"github.com/gogama/relay/request"
	"github.com/sirupsen/logrus"
)

const formContentType = "application/x-www-form-urlencoded"

func newPlan(method, url string, body interface{}, header http.Header) (*request.Plan, error) {
	p, err := request.NewPlan(method, url, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		p.Header[k] = append([]string(nil), vs...)
	}
	return p, nil
}

func newPostPlan(url string, data interface{}, header http.Header) (*request.Plan, error) {
	p, err := newPlan("POST", url, data, header)
	if err != nil {
		return nil, err
	}
	if data == nil {
		p.Body = request.QueryForm(p.URL)
	}
	if !forward.Has(p.Header, "Content-Type") {
		p.Header.Set("Content-Type", formContentType)
	}
	return p, nil
}

// followStatus runs HEAD plans through do, following location headers
// until a response has none or maxHops have been followed.
func followStatus(do func(*request.Plan, int) (*Response, error), p *request.Plan, maxHops int, log logrus.FieldLogger) (int, error) {
	for hop := 0; ; hop++ {
		resp, err := do(p, hop)
		if err != nil {
			if resp != nil {
				return resp.StatusCode, err
			}
			return 0, err
		}
		location := resp.Header["location"]
		if location == "" {
			return resp.StatusCode, nil
		}
		if hop >= maxHops {
			log.WithFields(logrus.Fields{
				"url":      p.URL.String(),
				"location": location,
				"hops":     hop,
			}).Warn("Location hop limit reached")
			return resp.StatusCode, nil
		}
		next, err := p.URL.Parse(location)
		if err != nil {
			return 0, err
		}
		if next, err = request.ParseURL(next.String()); err != nil {
			return 0, err
		}
		p = p.WithURL(next)
	}
}
