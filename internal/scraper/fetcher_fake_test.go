package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobminer/internal/network"
)

type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	called []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, target string) (*goquery.Document, error) {
	f.mu.Lock()
	f.called = append(f.called, target)
	f.mu.Unlock()

	if err, ok := f.errs[target]; ok {
		return nil, err
	}
	body, ok := f.pages[target]
	if !ok {
		return nil, &network.StatusError{Code: 404, URL: target}
	}
	return parseDocument(target, []byte(body))
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.called...)
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

func listingPage(hrefs []string, pagination string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i, href := range hrefs {
		fmt.Fprintf(&b, `<div class="jobsearch-SerpJobCard row result"><h2><a class="turnstileLink" href="%s">Job %d</a></h2></div>`, href, i+1)
	}
	b.WriteString(pagination)
	b.WriteString("</body></html>")
	return b.String()
}

func paginationWidget(links ...string) string {
	return `<div class="pagination">` + strings.Join(links, "") + `</div>`
}
