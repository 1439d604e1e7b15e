package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public demo service the dashboard runs against when
// no other service is configured.
const DefaultBaseURL = "https://dummyjson.com"

// readRetries is the number of automatic retries for read operations after a
// transport failure. Writes are never retried: a lost response does not mean
// the write did not land, and retrying could duplicate it.
const readRetries = 1

// Client issues catalog operations against the remote service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// New creates a Client for the service at baseURL. An empty baseURL selects
// DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listEnvelope is the wire shape of every list endpoint.
type listEnvelope struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// List fetches one page of products. Category filtering takes precedence
// over search when both are set.
func (c *Client) List(ctx context.Context, q ListQuery) (ListResult, error) {
	if q.PageSize <= 0 {
		q.PageSize = 10
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.PageSize))
	params.Set("skip", strconv.Itoa(q.Page*q.PageSize))
	params.Set("delay", strconv.Itoa(q.DelayMS))

	var path string
	switch {
	case q.Category != "":
		path = "/products/category/" + url.PathEscape(q.Category)
	case q.Search != "":
		path = "/products/search"
		params.Set("q", q.Search)
	default:
		path = "/products"
	}

	var env listEnvelope
	if err := c.do(ctx, "list", http.MethodGet, path+"?"+params.Encode(), nil, &env, readRetries); err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: env.Products, Total: env.Total, Skip: env.Skip, Limit: env.Limit}, nil
}

// Get fetches a single product by id.
func (c *Client) Get(ctx context.Context, id int) (Product, error) {
	var p Product
	err := c.do(ctx, "get", http.MethodGet, "/products/"+strconv.Itoa(id), nil, &p, readRetries)
	return p, err
}

// Add creates a product. The service assigns the id.
func (c *Client) Add(ctx context.Context, d Draft) (Product, error) {
	var p Product
	err := c.do(ctx, "add", http.MethodPost, "/products/add", d, &p, 0)
	return p, err
}

// Update replaces the writable fields of the product with the given id and
// returns the updated record.
func (c *Client) Update(ctx context.Context, id int, d Draft) (Product, error) {
	var p Product
	err := c.do(ctx, "update", http.MethodPut, "/products/"+strconv.Itoa(id), d, &p, 0)
	return p, err
}

// Delete removes the product with the given id and returns the deleted
// record, which callers use to patch their caches.
func (c *Client) Delete(ctx context.Context, id int) (Product, error) {
	var p Product
	err := c.do(ctx, "delete", http.MethodDelete, "/products/"+strconv.Itoa(id), nil, &p, 0)
	return p, err
}

// Categories fetches the list of category names known to the service.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := c.do(ctx, "categories", http.MethodGet, "/products/category-list", nil, &cats, readRetries)
	return cats, err
}

// do performs one HTTP round trip, retrying up to retries times on transport
// failures. Non-2xx responses become *ServiceError; failures to reach the
// service at all become *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any, retries int) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("catalog: %s: encoding request: %w", op, err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("catalog: %s: building request: %w", op, err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = &TransportError{Op: op, Err: err}
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		err = decodeResponse(op, resp, out)
		resp.Body.Close()
		return err
	}
	return lastErr
}

// decodeResponse turns a received response into out or into a *ServiceError.
func decodeResponse(op string, resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &body)
		return &ServiceError{Op: op, Status: resp.StatusCode, Message: body.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog: %s: decoding response: %w", op, err)
	}
	return nil
}
