/*
Copyright 2026 The Kubernetes Authors.

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

package cloud

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"k8s.io/klog/v2"

	"github.com/kubernetes-sigs/ec2-instance-metadata/pkg/util"
)

const (
	// DefaultEndpoint is the link-local address of the EC2 instance metadata service.
	DefaultEndpoint = "http://169.254.169.254"
	// DefaultTokenTTL is the lifetime requested for session tokens.
	DefaultTokenTTL = 21600 * time.Second
	// MaxTokenTTL is the longest lifetime the metadata service grants.
	MaxTokenTTL = 21600 * time.Second

	// TokenTTLHeader carries the requested token lifetime in seconds on the token PUT.
	TokenTTLHeader = "X-aws-ec2-metadata-token-ttl-seconds"
	// TokenHeader carries the session token on every metadata GET.
	TokenHeader = "X-aws-ec2-metadata-token"

	// TokenPath is where session tokens are requested.
	TokenPath = "/latest/api/token"
	// MetadataPath prefixes every metadata field path.
	MetadataPath = "/latest/meta-data/"

	dialTimeout    = 2 * time.Second
	requestTimeout = 5 * time.Second

	// maxErrorMessage bounds how much of an error body ends up in a StatusError.
	maxErrorMessage = 256
)

// Options configures a MetadataClient.
type Options struct {
	// Endpoint is the base URL of the metadata service.
	Endpoint string

	// TokenTTL is sent with every token request. Whole seconds, 1s to 6h.
	TokenTTL time.Duration

	// HTTPClient sends the requests. Defaults to a client that never uses a
	// proxy and gives up connecting after two seconds.
	HTTPClient aws.HTTPClient
}

// MetadataClient fetches instance metadata from IMDSv2. It holds no state
// between calls and is safe for concurrent use.
type MetadataClient struct {
	endpoint string
	tokenTTL time.Duration
	client   aws.HTTPClient
}

var _ MetadataProvider = &MetadataClient{}

// NewMetadataClient returns a client bound to DefaultEndpoint unless
// overridden. It performs no network I/O.
func NewMetadataClient(optFns ...func(*Options)) (*MetadataClient, error) {
	o := Options{
		Endpoint: DefaultEndpoint,
		TokenTTL: DefaultTokenTTL,
	}
	for _, fn := range optFns {
		fn(&o)
	}

	endpoint, err := util.ParseEndpoint(o.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata endpoint: %w", err)
	}
	if o.TokenTTL < time.Second || o.TokenTTL > MaxTokenTTL || o.TokenTTL%time.Second != 0 {
		return nil, fmt.Errorf("invalid token TTL %v: must be whole seconds between 1s and %v", o.TokenTTL, MaxTokenTTL)
	}
	if o.HTTPClient == nil {
		o.HTTPClient = newDefaultHTTPClient()
	}

	return &MetadataClient{
		endpoint: endpoint,
		tokenTTL: o.TokenTTL,
		client:   o.HTTPClient,
	}, nil
}

func newDefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			// The metadata service is link-local; never route it through a proxy.
			Proxy: nil,
			DialContext: (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:    2,
			IdleConnTimeout: 30 * time.Second,
		},
	}
}

// Get obtains a session token and then fetches and parses every metadata
// field in turn. It returns the first error encountered and never a
// partially populated result.
func (c *MetadataClient) Get(ctx context.Context) (*InstanceMetadata, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	m := &InstanceMetadata{}
	for _, f := range metadataFields {
		body, err := c.getMetadata(ctx, token, f.path)
		if err != nil {
			var statusErr *StatusError
			if f.optional && errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
				klog.V(4).InfoS("Optional instance metadata not present", "path", f.path)
				continue
			}
			return nil, err
		}
		if len(body) == 0 {
			if f.optional {
				continue
			}
			return nil, &ParseError{Path: f.path, Err: errors.New("empty response body")}
		}
		if err := f.parse(m, body); err != nil {
			return nil, &ParseError{Path: f.path, Err: err}
		}
	}

	if m.region == "" {
		_, err := availabilityZoneToRegion(m.availabilityZone)
		return nil, &ParseError{Path: availabilityZonePath, Err: err}
	}

	klog.V(4).InfoS("Fetched instance metadata", "instanceID", m.instanceID, "region", m.region)
	return m, nil
}

func (c *MetadataClient) getMetadata(ctx context.Context, token, path string) ([]byte, error) {
	fullPath := MetadataPath + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for %s: %w", fullPath, err)
	}
	req.Header.Set(TokenHeader, token)
	return c.send(req, fullPath)
}

// send issues req and maps the outcome onto RequestError or StatusError.
func (c *MetadataClient) send(req *http.Request, path string) ([]byte, error) {
	klog.V(4).InfoS("Sending instance metadata request", "method", req.Method, "path", path, "headers", util.SanitizeHeaders(req.Header, TokenHeader))

	resp, err := util.GetHttpResponse(c.client, req)
	if err != nil {
		return nil, &RequestError{Method: req.Method, Path: path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}
	return resp.Body, nil
}

func errorMessage(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		// drop a rune cut in half at the boundary
		msg = strings.ToValidUTF8(msg[:maxErrorMessage], "")
	}
	return msg
}
