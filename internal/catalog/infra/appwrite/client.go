// Package appwrite reads catalog documents from an Appwrite database over its
// REST API.
package appwrite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

var ErrNotConfigured = errors.New("appwrite endpoint is not configured")

const maxBodyBytes = 8 << 20

type Config struct {
	Endpoint   string
	ProjectID  string
	APIKey     string
	DatabaseID string

	// Retries is the number of extra attempts after a retryable failure.
	Retries        int
	InitialBackoff time.Duration
	// RPS caps outgoing requests per second. Zero disables the limit.
	RPS        float64
	HTTPClient *http.Client
}

type Client struct {
	base    string
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *logrus.Entry
}

func New(cfg Config, log *logrus.Entry) (*Client, error) {
	base := normalizeEndpoint(cfg.Endpoint)
	if base == "" {
		return nil, ErrNotConfigured
	}
	if cfg.DatabaseID == "" {
		return nil, errors.New("appwrite database id is required")
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		base:    base,
		cfg:     cfg,
		http:    hc,
		limiter: limiter,
		log:     log.WithField("component", "appwrite"),
	}, nil
}

// normalizeEndpoint strips trailing slashes and a trailing /v1 so the API
// version is appended exactly once.
func normalizeEndpoint(endpoint string) string {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return strings.TrimSuffix(base, "/v1")
}

func (c *Client) documentsURL(collection string) string {
	return fmt.Sprintf("%s/v1/databases/%s/collections/%s/documents",
		c.base, url.PathEscape(c.cfg.DatabaseID), url.PathEscape(collection))
}

func (c *Client) ListDocuments(ctx context.Context, collection string) ([]gjson.Result, error) {
	body, err := c.get(ctx, collection, c.documentsURL(collection))
	if err != nil {
		return nil, err
	}

	docs := gjson.GetBytes(body, "documents")
	if !docs.IsArray() {
		return nil, errors.Wrapf(httpx.ErrUnavailable, "collection %s: response has no documents array", collection)
	}
	return docs.Array(), nil
}

func (c *Client) GetDocument(ctx context.Context, collection, id string) (gjson.Result, error) {
	body, err := c.get(ctx, collection, c.documentsURL(collection)+"/"+url.PathEscape(id))
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.Wrapf(httpx.ErrUnavailable, "document %s/%s: invalid json", collection, id)
	}
	return gjson.ParseBytes(body), nil
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("status %d", e.status)
	}
	return fmt.Sprintf("status %d: %s", e.status, e.message)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func (c *Client) get(ctx context.Context, collection, u string) ([]byte, error) {
	defer metrics.ObserveCatalogFetch(collection, time.Now())

	var (
		body    []byte
		attempt int
	)
	op := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Appwrite-Project", c.cfg.ProjectID)
		if c.cfg.APIKey != "" {
			req.Header.Set("X-Appwrite-Key", c.cfg.APIKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.log.WithError(err).WithField("attempt", attempt).Warn("document store request failed")
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(app.ErrNotFound)
		case retryable(resp.StatusCode):
			c.log.WithFields(logrus.Fields{"attempt": attempt, "status": resp.StatusCode}).Warn("document store returned retryable status")
			return &statusError{status: resp.StatusCode, message: gjson.GetBytes(raw, "message").String()}
		case resp.StatusCode >= http.StatusMultipleChoices:
			return backoff.Permanent(&statusError{status: resp.StatusCode, message: gjson.GetBytes(raw, "message").String()})
		}

		body = raw
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.Retries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			return nil, err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, errors.Wrap(err, "document store request")
		}
		return nil, errors.Wrapf(httpx.ErrUnavailable, "GET %s after %d attempt(s): %v", collection, attempt, err)
	}
	return body, nil
}
