package musicbrainz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/normalize"
)

const (
	DefaultBaseURL   = "https://musicbrainz.org/ws/2"
	DefaultUserAgent = "mbrowse/0.1 (https://github.com/llehouerou/mbrowse)"

	defaultInterval = time.Second // MusicBrainz allows 1 request per second
	minInterval     = 500 * time.Millisecond
	defaultTimeout  = 60 * time.Second

	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second

	maxLimit = 100
)

// discIDIncludes is the include set used for disc ID lookups.
var discIDIncludes = []string{"artists", "recordings", "labels", "release-groups", "artist-credits"}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL     string
	CoverArtURL string
	UserAgent   string
	MinInterval time.Duration
	Timeout     time.Duration
	MaxRetries  int // negative disables retries
	RetryDelay  time.Duration
	HTTPClient  *http.Client
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.CoverArtURL == "" {
		o.CoverArtURL = coverArtBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.MinInterval == 0 {
		o.MinInterval = defaultInterval
	}
	o.MinInterval = max(o.MinInterval, minInterval)
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	switch {
	case o.MaxRetries == 0:
		o.MaxRetries = defaultMaxRetries
	case o.MaxRetries < 0: // no retries
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	return o
}

// Client provides access to the MusicBrainz web service.
//
// All requests, whatever their caller, go through one slot: a request waits
// for the previous one to finish (FIFO) and for the minimum interval since the
// previous request started.
type Client struct {
	opts       Options
	httpClient *http.Client
	slot       *semaphore.Weighted
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a MusicBrainz API client. A nil logger discards output.
func NewClient(opts Options, logger *slog.Logger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		opts:       opts,
		httpClient: httpClient,
		slot:       semaphore.NewWeighted(1),
		limiter:    rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		logger:     logger.With("component", "musicbrainz"),
	}
}

// ValidMBID reports whether s is a MusicBrainz identifier.
func ValidMBID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// ClampPage bounds a page request to what the service accepts.
func ClampPage(limit, offset int) (int, int) {
	return min(max(limit, 1), maxLimit), max(offset, 0)
}

// Search runs a Lucene query against the search endpoint of kind.
func (c *Client) Search(ctx context.Context, kind entity.Kind, query string, limit, offset int) (*normalize.Page, error) {
	if !kind.IsKnown() {
		return nil, dataError("unknown entity type", nil)
	}
	if strings.TrimSpace(query) == "" {
		return nil, dataError("empty search query", nil)
	}
	limit, offset = ClampPage(limit, offset)

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.getJSON(ctx, kind.String(), params)
	if err != nil {
		return nil, err
	}
	page, err := normalize.ParseSearch(body, kind)
	if err != nil {
		return nil, parseError(err)
	}
	return page, nil
}

// Lookup fetches one entity. Without includes the kind's default include set
// is requested.
func (c *Client) Lookup(ctx context.Context, kind entity.Kind, mbid string, includes ...string) (entity.Map, error) {
	if !kind.IsKnown() {
		return nil, dataError("unknown entity type", nil)
	}
	if !ValidMBID(mbid) {
		return nil, dataError(fmt.Sprintf("invalid MBID %q", mbid), nil)
	}
	if len(includes) == 0 {
		includes = kind.DefaultIncludes()
	}

	params := url.Values{}
	params.Set("inc", strings.Join(includes, " "))

	body, err := c.getJSON(ctx, kind.String()+"/"+mbid, params)
	if err != nil {
		return nil, err
	}
	details, err := normalize.ParseDetails(body)
	if err != nil {
		return nil, parseError(err)
	}
	return details, nil
}

// Browse lists the entities of kind linked to another entity, e.g. the
// releases of an artist.
func (c *Client) Browse(
	ctx context.Context,
	kind, linked entity.Kind,
	linkedID string,
	limit, offset int,
	includes ...string,
) (*normalize.Page, error) {
	if !kind.IsKnown() || !linked.IsKnown() {
		return nil, dataError("unknown entity type", nil)
	}
	if !ValidMBID(linkedID) {
		return nil, dataError(fmt.Sprintf("invalid MBID %q", linkedID), nil)
	}
	limit, offset = ClampPage(limit, offset)

	params := url.Values{}
	params.Set(linked.String(), linkedID)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if len(includes) > 0 {
		params.Set("inc", strings.Join(includes, " "))
	}

	body, err := c.getJSON(ctx, kind.String(), params)
	if err != nil {
		return nil, err
	}
	page, err := normalize.ParseList(body, kind.Plural(), kind)
	if err != nil {
		return nil, parseError(err)
	}
	return page, nil
}

// LookupDiscID returns the releases matching a CD table of contents ID.
func (c *Client) LookupDiscID(ctx context.Context, discID string) (*normalize.Page, error) {
	discID = strings.TrimSpace(discID)
	if discID == "" {
		return nil, dataError("empty disc ID", nil)
	}

	params := url.Values{}
	params.Set("inc", strings.Join(discIDIncludes, " "))

	body, err := c.getJSON(ctx, "discid/"+url.PathEscape(discID), params)
	if err != nil {
		return nil, err
	}
	page, err := normalize.ParseList(body, entity.Release.Plural(), entity.Release)
	if err != nil {
		return nil, parseError(err)
	}
	return page, nil
}

// getJSON requests path below the base URL and returns the body of a 200
// response.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("fmt", "json")
	reqURL := fmt.Sprintf("%s/%s?%s", c.opts.BaseURL, path, params.Encode())

	status, body, err := c.do(ctx, reqURL, "application/json")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}
	return body, nil
}

// do executes a GET through the shared slot, retrying network errors and
// 5xx responses with exponential backoff. 4xx responses are returned as is.
func (c *Client) do(ctx context.Context, reqURL, accept string) (int, []byte, error) {
	if err := c.slot.Acquire(ctx, 1); err != nil {
		return 0, nil, transportError(err)
	}
	defer c.slot.Release(1)

	var lastErr *Error
	delay := c.opts.RetryDelay

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying request", "url", reqURL, "attempt", attempt, "delay", delay, "err", lastErr)
			if err := sleep(ctx, delay); err != nil {
				return 0, nil, transportError(err)
			}
			delay = min(delay*2, maxRetryDelay)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, limiterError(ctx, err)
		}

		status, body, err := c.once(ctx, reqURL, accept)
		if err != nil {
			lastErr = transportError(err)
			if ctx.Err() != nil {
				return 0, nil, lastErr
			}
			continue
		}

		// Success or client error (4xx) - don't retry
		if status < 500 {
			return status, body, nil
		}
		lastErr = statusError(status, body)
	}

	lastErr.Message = fmt.Sprintf("%s (after %d attempts)", lastErr.Message, c.opts.MaxRetries+1)
	return 0, nil, lastErr
}

func (c *Client) once(ctx context.Context, reqURL, accept string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	c.logger.Debug("request", "url", reqURL, "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp.StatusCode, body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
