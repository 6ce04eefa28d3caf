package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher retrieves single pages with Colly. It respects robots.txt and
// retries failed requests.
type CollyFetcher struct {
	UserAgent      string
	MaxRetries     int
	RequestTimeout time.Duration
	MaxBodySize    int // bytes, 0 = unlimited
	IgnoreRobots   bool
}

func NewCollyFetcher() *CollyFetcher {
	return &CollyFetcher{
		UserAgent:      "studio-desk/1.0 (+funding research)",
		MaxRetries:     2,
		RequestTimeout: 30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
	}
}

func (f *CollyFetcher) buildCollector(host string) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	}
	if host != "" {
		opts = append(opts, colly.AllowedDomains(host))
	}
	if f.IgnoreRobots {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(f.RequestTimeout)
	return c
}

type fetchOutcome struct {
	doc *FetchedDocument
	err error
}

// Fetch downloads targetURL and returns its body.
func (f *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*FetchedDocument, error) {
	parsedURL, err := url.Parse(targetURL)
	if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid URL %q", ErrFetch, targetURL)
	}

	c := f.buildCollector(parsedURL.Hostname())
	outcome := make(chan fetchOutcome, 1)
	report := func(o fetchOutcome) {
		select {
		case outcome <- o:
		default:
		}
	}

	c.OnResponse(func(r *colly.Response) {
		report(fetchOutcome{doc: &FetchedDocument{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        r.Body,
			FetchedAt:   time.Now(),
		}})
	})

	c.OnError(func(r *colly.Response, err error) {
		retries, _ := r.Request.Ctx.GetAny("retries").(int)
		if retries < f.MaxRetries && ctx.Err() == nil {
			r.Request.Ctx.Put("retries", retries+1)
			slog.Warn("retrying fetch", "url", r.Request.URL.String(), "attempt", retries+1, "err", err)
			if retryErr := r.Request.Retry(); retryErr == nil {
				return
			}
		}
		report(fetchOutcome{err: fmt.Errorf("%w: %s: %v", ErrFetch, targetURL, err)})
	})

	go func() {
		if err := c.Visit(targetURL); err != nil {
			report(fetchOutcome{err: fmt.Errorf("%w: %v", ErrFetch, err)})
			return
		}
		// Callbacks run inside Visit, so a response has been reported by now.
		report(fetchOutcome{err: fmt.Errorf("%w: no response received for %s", ErrFetch, targetURL)})
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-outcome:
		return res.doc, res.err
	}
}
