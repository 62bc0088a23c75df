package zotero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Zotero Web API base URL.
	BaseURL = "https://api.zotero.org"

	// APIVersion is sent as the Zotero-API-Version header.
	APIVersion = "3"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the number of tries per request before giving up.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the delay after the first failed attempt; it doubles
	// on every further attempt.
	DefaultBackoff = time.Second

	// DefaultCitationInterval paces per-item citation lookups.
	DefaultCitationInterval = 100 * time.Millisecond

	// MaxPageSize is the largest limit the items endpoint accepts.
	MaxPageSize = 100

	// LowRateLimit is the X-Rate-Limit-Remaining value below which a warning is logged.
	LowRateLimit = 10

	// CitationBatchSize groups citation lookups for progress logging.
	CitationBatchSize = 10
)

// DefaultUserAgent identifies the client to the API unless WithUserAgent overrides it.
const DefaultUserAgent = "zotpdf/dev"

// Client is an HTTP client for a Zotero group library. It owns the connection
// settings (base URL, API key, timeout) and is safe to share between callers
// that use it sequentially.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	userAgent   string
	maxAttempts int
	backoff     time.Duration
	citeLimiter *rate.Limiter
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on the current HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxAttempts sets how many times a request is tried.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the base retry delay.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithCitationInterval sets the pause between citation lookups. Zero disables pacing.
func WithCitationInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.citeLimiter = newCitationLimiter(d)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request and retry events.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSleep replaces the backoff sleep (for testing).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) {
		c.sleep = fn
	}
}

// NewClient creates a new Zotero API client authenticated with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		apiKey:      apiKey,
		baseURL:     BaseURL,
		userAgent:   DefaultUserAgent,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		citeLimiter: newCitationLimiter(DefaultCitationInterval),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func newCitationLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchAll fetches every record in the referenced collection, one page at a
// time. Pagination stops at the first empty or short page. Any failed page
// aborts the fetch; no partial result is returned.
func (c *Client) FetchAll(ctx context.Context, ref CollectionRef, pageSize int) ([]Record, error) {
	if ref.Group == "" {
		return nil, errors.New("collection reference has no group")
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	var all []Record
	start := 0
	for {
		params := url.Values{}
		params.Set("format", "json")
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("start", strconv.Itoa(start))

		c.logger.Info("fetching items", "collection", ref.String(), "start", start, "end", start+pageSize-1)

		body, err := c.get(ctx, ref.ItemsPath(), params)
		if err != nil {
			return nil, fmt.Errorf("fetching items at start %d: %w", start, err)
		}

		page, err := decodePage(body)
		if err != nil {
			return nil, fmt.Errorf("fetching items at start %d: %w", start, err)
		}

		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		start += len(page)

		if len(page) < pageSize {
			break
		}
	}

	c.logger.Info("fetched items", "collection", ref.String(), "total", len(all))
	return all, nil
}

// Citation returns the server-rendered citation for one item in the given
// style and locale. The second result is false when the response has no
// "bib" field or the lookup failed; failures are logged, not returned.
func (c *Client) Citation(ctx context.Context, ref CollectionRef, key, style, locale string) (string, bool) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("include", "bib")
	if style != "" {
		params.Set("style", style)
	}
	if locale != "" {
		params.Set("locale", locale)
	}

	body, err := c.get(ctx, ref.ItemPath(key), params)
	if err != nil {
		c.logger.Error("citation lookup failed", "key", key, "error", err)
		return "", false
	}

	var resp citationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Debug("citation response is not an object", "key", key, "error", err)
		return "", false
	}
	if resp.Bib == nil {
		c.logger.Debug("no bib field in response", "key", key)
		return "", false
	}

	c.logger.Debug("got formatted citation", "key", key)
	return *resp.Bib, true
}

// Citations looks up citations for keys one at a time, pausing between
// requests. Keys without a citation are absent from the result.
func (c *Client) Citations(ctx context.Context, ref CollectionRef, keys []string, style, locale string) map[string]string {
	citations := make(map[string]string, len(keys))

	for i, key := range keys {
		if i%CitationBatchSize == 0 {
			end := min(i+CitationBatchSize, len(keys))
			c.logger.Info("getting citations", "batch", i/CitationBatchSize+1, "items", end-i)
		}

		if err := c.citeLimiter.Wait(ctx); err != nil {
			c.logger.Warn("citation lookups interrupted", "error", err)
			break
		}

		if citation, ok := c.Citation(ctx, ref, key, style, locale); ok {
			citations[key] = citation
		}
	}

	return citations
}

// TestConnection issues one request to the collection root and reports
// whether it completed. The payload is not inspected.
func (c *Client) TestConnection(ctx context.Context, ref CollectionRef) bool {
	if _, err := c.get(ctx, ref.root(), nil); err != nil {
		c.logger.Error("Zotero API connection test failed", "collection", ref.String(), "error", err)
		return false
	}
	c.logger.Info("Zotero API connection test successful", "collection", ref.String())
	return true
}

// get performs a GET with retries and returns the response body. Retryable
// failures are retried up to maxAttempts with exponential backoff.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			// 1s, 2s, 4s...
			delay := c.backoff * time.Duration(1<<uint(attempt-1))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		c.logger.Debug("request", "url", u, "attempt", attempt+1)

		body, err := c.do(ctx, u)
		if err == nil {
			return body, nil
		}

		var retry *retryableError
		if !errors.As(err, &retry) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = retry.err
		c.logger.Warn("request failed", "url", u, "attempt", attempt+1, "max_attempts", c.maxAttempts, "error", lastErr)
	}

	return nil, fmt.Errorf("%w: after %d attempts: %w", ErrNetworkError, c.maxAttempts, lastErr)
}

// do performs a single request.
func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", APIVersion)
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Zotero-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{err: err}
	}
	defer resp.Body.Close()

	c.checkRateLimit(resp)

	if err := checkHTTPErrors(resp, u); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("reading response: %w", err)}
	}
	return body, nil
}

// checkRateLimit logs rate limit signals. It never delays requests.
func (c *Client) checkRateLimit(resp *http.Response) {
	if v := resp.Header.Get("X-Rate-Limit-Remaining"); v != "" {
		if remaining, err := strconv.Atoi(v); err == nil && remaining < LowRateLimit {
			c.logger.Warn("low rate limit remaining", "remaining", remaining)
		}
	}
	if v := resp.Header.Get("Backoff"); v != "" {
		c.logger.Warn("server requested backoff", "seconds", v)
	}
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, u string) error {
	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &retryableError{err: &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), URL: u}}
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), URL: u}
	}
}

// CitationLookup binds a client to one library, style and locale so callers
// only need to supply item keys.
type CitationLookup struct {
	client *Client
	ref    CollectionRef
	style  string
	locale string
}

// CitationLookup returns a lookup for citations in ref's group.
func (c *Client) CitationLookup(ref CollectionRef, style, locale string) *CitationLookup {
	return &CitationLookup{client: c, ref: ref, style: style, locale: locale}
}

// Citations looks up citations for keys. See Client.Citations.
func (l *CitationLookup) Citations(ctx context.Context, keys []string) map[string]string {
	return l.client.Citations(ctx, l.ref, keys, l.style, l.locale)
}
