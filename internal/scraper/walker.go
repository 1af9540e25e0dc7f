package scraper

import (
	"context"

	"github.com/jimezsa/jobminer/internal/models"
	"github.com/rs/zerolog"
)

// Walker follows the "Next" chain of listing pages and collects job links.
type Walker struct {
	fetcher   Fetcher
	selectors Selectors
	prefix    string
	logger    zerolog.Logger

	// OnPage is called after each listing page fetch, successful or not.
	OnPage func()
}

func NewWalker(fetcher Fetcher, selectors Selectors, prefix string, logger zerolog.Logger) *Walker {
	return &Walker{
		fetcher:   fetcher,
		selectors: selectors,
		prefix:    prefix,
		logger:    logger,
	}
}

// Walk fetches at most pages listing pages starting at startURL. It stops
// early when a page has no next link or cannot be fetched.
func (w *Walker) Walk(ctx context.Context, startURL string, pages int) ([]models.JobLink, []models.Failure) {
	var (
		links    []models.JobLink
		failures []models.Failure
	)

	state := models.PaginationState{URL: startURL, Remaining: pages}
	for {
		if state.Remaining < 1 {
			break
		}
		if err := ctx.Err(); err != nil {
			failures = append(failures, models.Failure{Stage: models.StageListing, Target: state.URL, Err: err})
			break
		}
		state.Remaining--
		page := pages - state.Remaining

		w.logger.Debug().Str("url", state.URL).Int("page", page).Msg("fetching listing page")
		doc, err := w.fetcher.Fetch(ctx, state.URL)
		w.pageDone()
		if err != nil {
			w.logger.Warn().Err(err).Str("url", state.URL).Int("page", page).Msg("listing page skipped, stopping pagination")
			failures = append(failures, models.Failure{Stage: models.StageListing, Target: state.URL, Err: err})
			break
		}

		pageLinks, err := ParseListing(doc, w.selectors)
		if err != nil {
			w.logger.Warn().Err(err).Str("url", state.URL).Int("page", page).Msg("listing page skipped")
			failures = append(failures, models.Failure{Stage: models.StageListing, Target: state.URL, Err: err})
		} else {
			links = append(links, pageLinks...)
			w.logger.Debug().Int("page", page).Int("links", len(pageLinks)).Msg("listing page parsed")
		}

		next, ok := NextPageLink(doc, w.selectors)
		if !ok {
			w.logger.Debug().Int("page", page).Msg("no next page")
			break
		}
		state.URL = ResolveLink(w.prefix, next)
	}

	return links, failures
}

func (w *Walker) pageDone() {
	if w.OnPage != nil {
		w.OnPage()
	}
}
