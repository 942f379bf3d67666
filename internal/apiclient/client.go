// Package apiclient issues authenticated requests against the forecast
// service. A bearer token is obtained through the client-credentials flow
// once at construction and reused for every request the client issues;
// there is no refresh, retry, or response caching.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jmcallister/forecast-service/internal/identity"
	"github.com/jmcallister/forecast-service/internal/observability"
)

// StatusError reports a response that failed the success-status contract.
// It carries the target URL and the numeric status code; no distinction is
// made between authentication failures and generic server errors.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s rejected with status %d", e.URL, e.StatusCode)
}

// Client is an authenticated HTTP client bound to a single base address
// and a single access token. Build one per logical caller and discard it
// after use; a long-lived Client outlives its token.
type Client struct {
	baseURL string
	token   string
	ambient bool
}

// New validates cfg and eagerly acquires an access token. When token
// acquisition fails the identity-provider error is returned and no Client
// is constructed.
func New(ctx context.Context, cfg identity.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	token, err := identity.AcquireToken(ctx, cfg)
	if err != nil {
		observability.TokenAcquisitionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.TokenAcquisitionsTotal.WithLabelValues("success").Inc()

	return &Client{
		baseURL: cfg.BaseAddress,
		token:   token,
		ambient: cfg.AmbientCredentials,
	}, nil
}

// Get fetches the base address, or base?query when query is non-empty,
// decoding the JSON body into out. A 204 or an empty body leaves out at
// its zero value.
func (c *Client) Get(ctx context.Context, query string, out any) error {
	target := c.baseURL
	if query != "" {
		target = c.baseURL + "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

// Post sends payload as JSON to the base address and decodes the response
// into out under the same classification rules as Get.
func (c *Client) Post(ctx context.Context, payload, out any) error {
	return c.send(ctx, http.MethodPost, c.baseURL, payload, out)
}

// Put sends payload as JSON to target with the PUT verb.
func (c *Client) Put(ctx context.Context, target string, payload, out any) error {
	return c.send(ctx, http.MethodPut, target, payload, out)
}

func (c *Client) send(ctx context.Context, method, target string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	return c.do(req, out)
}

// do issues the request on a fresh transport, released when the call
// returns, and applies the shared response classification: 2xx decodes
// the body into out, with 204 and empty bodies mapping to the zero value;
// every other status becomes a StatusError.
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	transport := c.transport()
	defer transport.CloseIdleConnections()
	httpClient := &http.Client{Transport: transport}

	resp, err := httpClient.Do(req)
	if err != nil {
		observability.ForecastAPICallsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.ForecastAPICallsTotal.WithLabelValues(status).Inc()
	observability.ForecastAPIDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		if len(body) == 0 || out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		return nil
	default:
		return &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}
}

// transport returns the per-call transport. With ambient credentials the
// environment's proxy settings apply; otherwise the transport is clean.
func (c *Client) transport() *http.Transport {
	if c.ambient {
		return &http.Transport{Proxy: http.ProxyFromEnvironment}
	}
	return &http.Transport{}
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
