// Package upstream is the single choke point for calls against the shop's
// REST API. Every outbound request goes through Client: Basic auth with the
// webservice key as username, JSON output, explicit field selection, and a
// hard per-call timeout. No retries anywhere; a failed call fails its caller
// immediately.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopvoice/internal/metrics"
)

const errBodyLimit = 300 // bytes of upstream error body kept for logs

// Client executes authenticated requests against the shop API.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// New creates a client for the API at baseURL. Every call is bounded by
// timeout via context deadline.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

// getJSON performs a GET against resource (optionally with a sub-path) and
// decodes the JSON response into out. Field selection and filters come in
// through params; output_format=JSON is always added.
func (c *Client) getJSON(ctx context.Context, resource, subPath string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("output_format", "JSON")

	endpoint := c.baseURL + "/" + resource
	if subPath != "" {
		endpoint += "/" + subPath
	}
	endpoint += "?" + params.Encode()

	body, err := c.do(ctx, http.MethodGet, resource, endpoint, "", nil)
	if err != nil {
		return err
	}

	// The API answers an empty body or "[]" instead of an object when a
	// filter matches nothing.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("[]")) {
		return ErrNotFound
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

// postXML sends an XML document to resource and returns the raw response
// body. Used only by the messaging endpoints, the one part of the API that
// does not speak JSON on writes.
func (c *Client) postXML(ctx context.Context, resource string, payload string) ([]byte, error) {
	endpoint := c.baseURL + "/" + resource + "?output_format=JSON"
	return c.do(ctx, http.MethodPost, resource, endpoint, "text/xml", strings.NewReader(payload))
}

func (c *Client) do(ctx context.Context, method, resource, endpoint, contentType string, body io.Reader) ([]byte, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(resource, outcome).
			Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", resource, err)
	}
	req.SetBasicAuth(c.apiKey, "")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
			return nil, fmt.Errorf("%s: %w", resource, ErrTimeout)
		}
		return nil, fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", resource, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		outcome = "not_found"
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Resource: resource,
			Code:     resp.StatusCode,
			Body:     truncate(string(data), errBodyLimit),
		}
	}
	outcome = "ok"
	return data, nil
}

// listFilter builds the bracketed filter syntax the API expects, e.g.
// filter[reference]=[ABCDEFGHI].
func listFilter(params url.Values, field, value string) {
	params.Set("filter["+field+"]", "["+value+"]")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
