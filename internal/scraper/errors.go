package scraper

import (
	"errors"
	"fmt"
)

// ErrMalformedPage marks a page that is missing an element the flow depends on.
var ErrMalformedPage = errors.New("malformed page")

var (
	ErrMissingLink        = fmt.Errorf("%w: result card has no title link", ErrMalformedPage)
	ErrMissingDescription = fmt.Errorf("%w: description container not found", ErrMalformedPage)
)
