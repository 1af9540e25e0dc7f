package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobminer/internal/network"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves and parses one page.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*goquery.Document, error)
}

// getter is the subset of network.Client used for fetching pages.
type getter interface {
	Get(ctx context.Context, target string, headers map[string]string) ([]byte, error)
}

// HTTPFetcher is the Fetcher backed by the shared network client. Concurrent
// fetches of the same URL share one request; each caller parses its own
// document because extraction mutates it.
type HTTPFetcher struct {
	client  getter
	headers map[string]string
	flight  singleflight.Group
}

func NewHTTPFetcher(client *network.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (*goquery.Document, error) {
	v, err, _ := f.flight.Do(target, func() (any, error) {
		return f.client.Get(ctx, target, f.headers)
	})
	if err != nil {
		return nil, err
	}
	return parseDocument(target, v.([]byte))
}

func parseDocument(target string, body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrMalformedPage, target, err)
	}
	return doc, nil
}
