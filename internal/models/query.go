package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuery is returned when CLI input cannot form a search.
var ErrInvalidQuery = errors.New("invalid search query")

// SearchQuery is the immutable input of one mining run.
type SearchQuery struct {
	Keyword  string
	Location string
	Pages    int
}

func NewSearchQuery(keyword, location string, pages int) (SearchQuery, error) {
	keyword = strings.TrimSpace(keyword)
	location = strings.TrimSpace(location)
	if keyword == "" {
		return SearchQuery{}, fmt.Errorf("%w: search keywords are required", ErrInvalidQuery)
	}
	if pages < 1 {
		return SearchQuery{}, fmt.Errorf("%w: page count must be at least 1, got %d", ErrInvalidQuery, pages)
	}
	return SearchQuery{Keyword: keyword, Location: location, Pages: pages}, nil
}
