// Package client queries a remote catalog served by assetcat serve.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"assetcat/pkg/catalog"
	"assetcat/pkg/log"
	"assetcat/pkg/models"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultRetryMax     = 3
	defaultRetryWaitMin = 100 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
)

// APIError is a non-2xx response from the catalog server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status back to the catalog sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return catalog.ErrValidation
	case http.StatusNotFound:
		return catalog.ErrAssetNotFound
	case http.StatusConflict:
		return catalog.ErrSchemaConflict
	default:
		return nil
	}
}

// Client talks to the catalog HTTP API.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithRetry sets how often and how long connection failures are retried.
func WithRetry(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = retryMax
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = defaultRetryMax
	httpClient.RetryWaitMin = defaultRetryWaitMin
	httpClient.RetryWaitMax = defaultRetryWaitMax
	httpClient.Logger = nil
	httpClient.CheckRetry = retryPolicy

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryPolicy retries connection errors only. Any response, error statuses
// included, is returned to the caller as is.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil {
		return false, nil
	}
	return err != nil, nil
}

// List returns the records matching every field/value pair.
func (c *Client) List(ctx context.Context, filter map[string]string) ([]models.AssetRecord, error) {
	query := url.Values{}
	for key, value := range filter {
		query.Set(key, value)
	}

	target := c.baseURL + "/assets"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var records []models.AssetRecord
	if err := c.getJSON(ctx, target, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Get returns one record by identifier.
func (c *Client) Get(ctx context.Context, id int64) (*models.AssetRecord, error) {
	var record models.AssetRecord
	if err := c.getJSON(ctx, c.baseURL+"/assets/"+strconv.FormatInt(id, 10), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DownloadURL returns where the server serves the file of record.
func (c *Client) DownloadURL(record *models.AssetRecord) string {
	return c.baseURL + "/assets/" + strconv.FormatInt(record.ID, 10) + "/download"
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("unable to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", target, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("url", target).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil || body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode response from %s: %w", target, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
