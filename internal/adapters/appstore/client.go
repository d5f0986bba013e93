// internal/adapters/appstore/client.go
package appstore

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed/atom"
	"golang.org/x/time/rate"

	"azal_reviews/internal/adapters/observability"
	"azal_reviews/internal/domain"
)

// Client reads the public App Store customer-reviews Atom feed for one app.
type Client struct {
	base  string
	appID string
	hc    *http.Client
	rl    *rate.Limiter
	strip *bluemonday.Policy
}

func New(base, appID string, rps int) (*Client, error) {
	if appID == "" {
		return nil, fmt.Errorf("app id is required")
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		appID: appID,
		hc:    &http.Client{Timeout: 20 * time.Second},
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
		strip: bluemonday.StrictPolicy(),
	}, nil
}

// ---- Public API ----

// GetReviews fetches one page (1-based) of the most recent reviews in a storefront.
// Country is left for the caller to set.
func (c *Client) GetReviews(ctx context.Context, country string, page int) ([]domain.ReviewRecord, error) {
	u := fmt.Sprintf("%s/%s/rss/customerreviews/page=%d/id=%s/sortby=mostrecent/xml", c.base, country, page, c.appID)
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	feed, err := (&atom.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]domain.ReviewRecord, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		rating, ok := extInt(e, "rating")
		if !ok {
			// the first entry of older feeds describes the app itself
			continue
		}
		rv := domain.ReviewRecord{
			SourceID: e.ID,
			Title:    strings.TrimSpace(e.Title),
			Rating:   rating,
			Review:   c.body(e.Content),
		}
		if e.UpdatedParsed != nil {
			rv.Date = e.UpdatedParsed.UTC()
		}
		if len(e.Authors) > 0 && e.Authors[0] != nil {
			rv.UserName = strings.TrimSpace(e.Authors[0].Name)
		}
		out = append(out, rv)
	}
	return out, nil
}

// ---- Internals ----

func extInt(e *atom.Entry, name string) (int, bool) {
	im, ok := e.Extensions["im"]
	if !ok {
		return 0, false
	}
	vals := im[name]
	if len(vals) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(vals[0].Value))
	if err != nil {
		return 0, false
	}
	return n, true
}

// body returns the review text; html content is reduced to plain text.
func (c *Client) body(ct *atom.Content) string {
	if ct == nil {
		return ""
	}
	v := ct.Value
	switch strings.ToLower(ct.Type) {
	case "html", "xhtml":
		v = html.UnescapeString(c.strip.Sanitize(v))
		v = strings.Join(strings.Fields(v), " ")
	}
	return strings.TrimSpace(v)
}

// get performs a GET with client-side rate limiting and retries, returning the body.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/atom+xml, application/xml")
		req.Header.Set("User-Agent", "azal-reviews/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("appstore", "customerreviews", 0, time.Since(start))
			// network error or context canceled
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("appstore", "customerreviews", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			return b, err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, fmt.Errorf("appstore: %w", domain.ErrNotFound)

		case http.StatusUnauthorized:
			resp.Body.Close()
			return nil, fmt.Errorf("appstore: %w", domain.ErrUnauthorized)

		case http.StatusForbidden:
			resp.Body.Close()
			return nil, fmt.Errorf("appstore: %w", domain.ErrForbidden)

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
