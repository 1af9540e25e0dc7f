package scraper

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/jimezsa/jobminer/internal/models"
	"github.com/jimezsa/jobminer/internal/network"
	"github.com/rs/zerolog"
)

const prefix = "https://jobs.example"

func chainedFetcher(pageCount int) *fakeFetcher {
	fetcher := newFakeFetcher()
	for i := 0; i < pageCount; i++ {
		hrefs := []string{fmt.Sprintf("/job/%d-a", i), fmt.Sprintf("/job/%d-b", i)}
		widget := paginationWidget(fmt.Sprintf(`<a href="/jobs?start=%d">Next »</a>`, (i+1)*10))
		fetcher.pages[pageURL(i)] = listingPage(hrefs, widget)
	}
	return fetcher
}

func pageURL(i int) string {
	if i == 0 {
		return prefix + "/jobs?q=go"
	}
	return fmt.Sprintf("%s/jobs?start=%d", prefix, i*10)
}

func TestWalkRespectsPageBudget(t *testing.T) {
	for budget := 1; budget <= 4; budget++ {
		t.Run(fmt.Sprintf("budget %d", budget), func(t *testing.T) {
			fetcher := chainedFetcher(10)
			walker := NewWalker(fetcher, DefaultSelectors(), prefix, zerolog.Nop())

			links, failures := walker.Walk(context.Background(), pageURL(0), budget)
			if len(failures) != 0 {
				t.Fatalf("unexpected failures: %v", failures)
			}
			if got := len(fetcher.calls()); got != budget {
				t.Fatalf("fetches = %d, want %d", got, budget)
			}
			if len(links) != 2*budget {
				t.Fatalf("len(links) = %d, want %d", len(links), 2*budget)
			}
			for i, call := range fetcher.calls() {
				if call != pageURL(i) {
					t.Fatalf("fetch %d = %s, want %s", i, call, pageURL(i))
				}
			}
		})
	}
}

func TestWalkStopsWithoutNextLink(t *testing.T) {
	fetcher := chainedFetcher(2)
	fetcher.pages[pageURL(1)] = listingPage([]string{"/job/last"}, paginationWidget(`<a href="/jobs?start=0">Previous</a>`))
	walker := NewWalker(fetcher, DefaultSelectors(), prefix, zerolog.Nop())

	links, _ := walker.Walk(context.Background(), pageURL(0), 5)
	if got := len(fetcher.calls()); got != 2 {
		t.Fatalf("fetches = %d, want 2", got)
	}
	want := []models.JobLink{"/job/0-a", "/job/0-b", "/job/last"}
	if !reflect.DeepEqual(links, want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
}

func TestWalkSinglePageWithoutPaginationWidget(t *testing.T) {
	start := prefix + "/jobs?l=Austin&q=Data+Analyst"
	fetcher := newFakeFetcher()
	fetcher.pages[start] = listingPage([]string{"/rc/clk?jk=aaa", "/rc/clk?jk=bbb"}, "")

	query, err := models.NewSearchQuery("Data Analyst", "Austin", 1)
	if err != nil {
		t.Fatalf("NewSearchQuery() error = %v", err)
	}
	if got := SearchURL(prefix, query); got != start {
		t.Fatalf("SearchURL() = %s, want %s", got, start)
	}

	pages := 0
	walker := NewWalker(fetcher, DefaultSelectors(), prefix, zerolog.Nop())
	walker.OnPage = func() { pages++ }
	links, failures := walker.Walk(context.Background(), SearchURL(prefix, query), query.Pages)

	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	want := []models.JobLink{"/rc/clk?jk=aaa", "/rc/clk?jk=bbb"}
	if !reflect.DeepEqual(links, want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
	if len(fetcher.calls()) != 1 || pages != 1 {
		t.Fatalf("fetches = %d, OnPage = %d, want 1", len(fetcher.calls()), pages)
	}
}

func TestWalkSkipsMalformedPageButFollowsNext(t *testing.T) {
	fetcher := chainedFetcher(3)
	fetcher.pages[pageURL(1)] = `<div class="jobsearch-SerpJobCard row result"><h2>no link</h2></div>` +
		paginationWidget(`<a href="/jobs?start=20">Next</a>`)
	walker := NewWalker(fetcher, DefaultSelectors(), prefix, zerolog.Nop())

	links, failures := walker.Walk(context.Background(), pageURL(0), 3)
	if len(fetcher.calls()) != 3 {
		t.Fatalf("fetches = %d, want 3", len(fetcher.calls()))
	}
	want := []models.JobLink{"/job/0-a", "/job/0-b", "/job/2-a", "/job/2-b"}
	if !reflect.DeepEqual(links, want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
	if len(failures) != 1 || !errors.Is(failures[0].Err, ErrMalformedPage) || failures[0].Target != pageURL(1) {
		t.Fatalf("failures = %+v, want one malformed page failure", failures)
	}
}

func TestWalkStopsOnFetchError(t *testing.T) {
	fetcher := chainedFetcher(3)
	fetcher.errs[pageURL(1)] = &network.StatusError{Code: 503, URL: pageURL(1)}
	walker := NewWalker(fetcher, DefaultSelectors(), prefix, zerolog.Nop())

	links, failures := walker.Walk(context.Background(), pageURL(0), 3)
	if len(fetcher.calls()) != 2 {
		t.Fatalf("fetches = %d, want 2", len(fetcher.calls()))
	}
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if len(failures) != 1 || !errors.Is(failures[0].Err, network.ErrRequestFailed) {
		t.Fatalf("failures = %+v, want one network failure", failures)
	}
	if failures[0].Stage != models.StageListing {
		t.Fatalf("failure stage = %q", failures[0].Stage)
	}
}

func TestWalkHonorsCancellation(t *testing.T) {
	fetcher := chainedFetcher(3)
	walker := NewWalker(fetcher, DefaultSelectors(), prefix, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	links, failures := walker.Walk(ctx, pageURL(0), 3)
	if len(fetcher.calls()) != 0 || len(links) != 0 {
		t.Fatalf("expected no fetches after cancellation, got %d", len(fetcher.calls()))
	}
	if len(failures) != 1 || !errors.Is(failures[0].Err, context.Canceled) {
		t.Fatalf("failures = %+v", failures)
	}
}
