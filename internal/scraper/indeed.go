package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jimezsa/jobminer/internal/models"
)

const DefaultBaseURL = "https://www.indeed.com"

// BaseURL maps a country code to its Indeed host.
func BaseURL(country string) string {
	country = strings.TrimSpace(strings.ToLower(country))
	if country == "" || country == "usa" || country == "us" {
		return DefaultBaseURL
	}
	return fmt.Sprintf("https://%s.indeed.com", country)
}

// SearchURL builds the first listing page URL for query.
func SearchURL(base string, query models.SearchQuery) string {
	values := url.Values{}
	values.Set("q", query.Keyword)
	values.Set("l", query.Location)
	return fmt.Sprintf("%s/jobs?%s", strings.TrimRight(base, "/"), values.Encode())
}

// ResolveLink joins a site-relative href onto prefix. Absolute hrefs are
// returned unchanged.
func ResolveLink(prefix string, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(prefix, "/") + href
}
