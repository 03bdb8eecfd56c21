// Package restconf is a small RFC 8040 client for Cisco IOS-XE routers.
//
// Each exported operation issues exactly one HTTP request and maps the
// outcome onto a typed Error; nothing is retried or cached.
package restconf

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/routerbot/routerbot/pkg/util"
	"github.com/routerbot/routerbot/pkg/version"
)

const (
	mediaJSON = "application/yang-data+json"
	mediaXML  = "application/yang-data+xml"

	maxBodySize = 8 << 20
)

// Observer is notified once per completed request. outcome is "ok" or the
// failing Kind's string form.
type Observer interface {
	ObserveRequest(method, outcome string, elapsed time.Duration)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport built from the endpoint. The
// endpoint's TLS settings are then ignored; its timeout still applies when
// hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver installs a request observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client talks to one RESTCONF server. It is safe for concurrent use.
type Client struct {
	endpoint DeviceEndpoint
	http     *http.Client
	observer Observer
}

// New validates the endpoint and builds a client for it.
func New(endpoint DeviceEndpoint, opts ...Option) (*Client, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, fmt.Errorf("restconf endpoint: %w", err)
	}
	c := &Client{endpoint: endpoint}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		tlsCfg, err := newTLSConfig(endpoint)
		if err != nil {
			return nil, err
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsCfg
		c.http = &http.Client{Transport: transport, Timeout: endpoint.timeout()}
	} else if c.http.Timeout == 0 {
		hc := *c.http
		hc.Timeout = endpoint.timeout()
		c.http = &hc
	}
	return c, nil
}

func newTLSConfig(e DeviceEndpoint) (*tls.Config, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: !e.VerifyTLS} //nolint:gosec
	if e.CAFile != "" {
		ca, err := os.ReadFile(e.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read router CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("router CA file %s contains no certificates", e.CAFile)
		}
		tlsCfg.RootCAs = pool
	}
	return tlsCfg, nil
}

// Endpoint returns the endpoint the client was built with.
func (c *Client) Endpoint() DeviceEndpoint { return c.endpoint }

// Host returns the device host, for logs and replies.
func (c *Client) Host() string { return c.endpoint.Host() }

// getData fetches a data resource and returns its decoded tree.
func (c *Client) getData(ctx context.Context, resource string) (interface{}, error) {
	return c.do(ctx, http.MethodGet, c.endpoint.dataURL(resource), resource, nil)
}

// writeData sends a PATCH, PUT or DELETE to a data resource.
func (c *Client) writeData(ctx context.Context, method, resource string, body interface{}) error {
	_, err := c.do(ctx, method, c.endpoint.dataURL(resource), resource, body)
	return err
}

// invoke POSTs to an RPC under /operations.
func (c *Client) invoke(ctx context.Context, rpc string, input interface{}) (interface{}, error) {
	return c.do(ctx, http.MethodPost, c.endpoint.operationsURL(rpc), rpc, input)
}

func (c *Client) do(ctx context.Context, method, url, resource string, body interface{}) (tree interface{}, err error) {
	op := method + " " + resource
	start := time.Now()
	log := util.WithDevice(c.Host()).WithField("op", op)

	defer func() {
		elapsed := time.Since(start)
		outcome := "ok"
		if err != nil {
			outcome = KindOf(err).String()
			log.WithError(err).Debugf("request failed after %s", elapsed)
		} else {
			log.Debugf("request completed in %s", elapsed)
		}
		if c.observer != nil {
			c.observer.ObserveRequest(method, outcome, elapsed)
		}
	}()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Accept", mediaJSON)
	if body != nil {
		req.Header.Set("Content-Type", mediaJSON)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if c.endpoint.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.endpoint.Token)
	} else {
		req.SetBasicAuth(c.endpoint.Username, c.endpoint.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindDeviceUnreachable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindDeviceUnreachable, Op: op, Status: resp.StatusCode, Err: err}
	}
	isXML := isXMLContent(resp.Header.Get("Content-Type"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(data, isXML)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Kind: kindForStatus(resp.StatusCode), Op: op, Status: resp.StatusCode, Message: msg}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if isXML {
		tree, err = decodeXML(data)
	} else {
		tree, err = decodeJSON(data)
	}
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Op: op, Status: resp.StatusCode, Err: err}
	}
	return tree, nil
}

func isXMLContent(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == mediaXML || strings.HasSuffix(mt, "/xml")
}

func malformed(op string, format string, args ...interface{}) error {
	return &Error{Kind: KindMalformedResponse, Op: op, Err: fmt.Errorf(format, args...)}
}
