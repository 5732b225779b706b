// Package openlibrary is a client for the Open Library books API.
package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnexpectedStatus is returned for non-200 answers.
var ErrUnexpectedStatus = errors.New("openlibrary: unexpected status code")

type Config struct {
	BaseURL    string
	UserAgent  string
	RPS        float64
	MaxRetries int
	Timeout    time.Duration
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent:  cfg.UserAgent,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: max(cfg.MaxRetries, 0),
	}
}

type Publisher struct {
	Name string `json:"name"`
}

type Author struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// BookDetails matches api/books?jscmd=data
type BookDetails struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Publishers  []Publisher `json:"publishers"`
	PublishDate string      `json:"publish_date"`
	Cover       struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
	Authors       []Author `json:"authors"`
	NumberOfPages int      `json:"number_of_pages"`
}

// BibKey is the key Open Library uses for an ISBN in request and response.
func BibKey(isbn string) string {
	return "ISBN:" + isbn
}

// GetBooksByISBN returns the details Open Library knows for the given ISBNs,
// keyed by BibKey. ISBNs without a match are absent from the map.
func (c *Client) GetBooksByISBN(ctx context.Context, isbns []string) (map[string]BookDetails, error) {
	if len(isbns) == 0 {
		return nil, nil
	}

	bibkeys := make([]string, len(isbns))
	for i, isbn := range isbns {
		bibkeys[i] = BibKey(isbn)
	}

	q := url.Values{}
	q.Set("bibkeys", strings.Join(bibkeys, ","))
	q.Set("format", "json")
	q.Set("jscmd", "data")
	u := c.baseURL + "/api/books?" + q.Encode()

	var res map[string]BookDetails
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retry, err := c.do(ctx, url, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	if c.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// do performs one attempt and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, url string, target any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}
