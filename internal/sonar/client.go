// Package sonar is a typed client for the code-quality server Web API.
// It covers single requests, page aggregation, duplication joins and
// waiting on background analysis tasks.
package sonar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout is applied to every HTTP request unless overridden.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Branch     string
	Timeout    time.Duration
	Logger     zerolog.Logger
	HTTPClient *http.Client
}

// Client talks to one server with one set of credentials.
// It holds no state between calls.
type Client struct {
	baseURL    string
	token      string
	branch     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		branch:     opts.Branch,
		httpClient: httpClient,
		log:        opts.Logger,
	}
}

// BaseURL returns the server URL without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// withBranch adds the configured branch to branch-aware queries.
func (c *Client) withBranch(q url.Values) url.Values {
	if c.branch != "" {
		q.Set("branch", c.branch)
	}
	return q
}

// get performs one authenticated GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	if c.token != "" {
		req.SetBasicAuth(c.token, "")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("url", target).Msg("request failed")
		return nil, &TransportError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	c.log.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("GET")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// getJSON performs one GET and decodes the body into T.
func getJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	body, err := c.get(ctx, path, query)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, &DecodeError{Path: path, Err: err}
	}
	return out, nil
}

// paging is the pagination block shared by most search endpoints.
type paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

// totalOf prefers the paging block and falls back to a top-level total.
func totalOf(total int, p *paging) int {
	if p != nil {
		return p.Total
	}
	return total
}

// pageQuery returns a copy of base with page parameters set.
func pageQuery(base url.Values, page, pageSize int) url.Values {
	q := url.Values{}
	for k, v := range base {
		q[k] = v
	}
	q.Set("p", strconv.Itoa(page))
	q.Set("ps", strconv.Itoa(pageSize))
	return q
}

// setIf adds a query parameter only when value is not empty.
func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// setList adds a comma-joined query parameter only when values is not empty.
func setList(q url.Values, key string, values []string) {
	if len(values) > 0 {
		q.Set(key, strings.Join(values, ","))
	}
}
