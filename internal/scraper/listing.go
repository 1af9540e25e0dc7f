package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobminer/internal/models"
)

// ParseListing returns the job links of one search-results page in document
// order. A page without result cards yields an empty slice.
func ParseListing(doc *goquery.Document, sel Selectors) ([]models.JobLink, error) {
	cards := doc.Find(sel.Card)
	links := make([]models.JobLink, 0, cards.Length())

	var err error
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		href, ok := card.Find(sel.TitleLink).First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			err = fmt.Errorf("card %d: %w", i+1, ErrMissingLink)
			return false
		}
		links = append(links, models.JobLink(strings.TrimSpace(href)))
		return true
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// NextPageLink scans the pagination widget from the last link backwards and
// returns the href of the first one labelled sel.NextLabel.
func NextPageLink(doc *goquery.Document, sel Selectors) (string, bool) {
	pagination := doc.Find(sel.Pagination).First()
	if pagination.Length() == 0 {
		return "", false
	}

	anchors := pagination.Find("a")
	for i := anchors.Length() - 1; i >= 0; i-- {
		anchor := anchors.Eq(i)
		if !strings.Contains(anchor.Text(), sel.NextLabel) {
			continue
		}
		href, ok := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return "", false
		}
		return href, true
	}
	return "", false
}
