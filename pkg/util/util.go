/*
Copyright 2019 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
)

const (
	// MaxResponseBytes bounds how much of a response body is read.
	MaxResponseBytes = 1 << 20

	redacted = "<redacted>"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// ParseEndpoint validates a metadata service endpoint such as
// "http://169.254.169.254" and returns it without a trailing slash.
func ParseEndpoint(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("could not parse endpoint: %v", err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported protocol: %s", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("endpoint %q must not carry a query or fragment", endpoint)
	}

	return scheme + "://" + u.Host + strings.TrimRight(u.Path, "/"), nil
}

// GetHttpResponse sends req and returns the status code and body. The body
// is always closed. Only transport, read and oversized-body failures are
// returned as errors; the caller decides what a status code means.
func GetHttpResponse(client aws.HTTPClient, req *http.Request) (*Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil {
		return &Response{StatusCode: resp.StatusCode}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %v", err)
	}
	if len(body) > MaxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxResponseBytes)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// SanitizeHeaders returns a copy of h with the values of the named headers
// replaced, so that it can be logged.
func SanitizeHeaders(h http.Header, secrets ...string) http.Header {
	out := h.Clone()
	if out == nil {
		return http.Header{}
	}
	for _, name := range secrets {
		if _, ok := out[http.CanonicalHeaderKey(name)]; ok {
			out.Set(name, redacted)
		}
	}
	return out
}
