package scraper

// Selectors locate the elements of the listing and posting pages.
type Selectors struct {
	Card        string
	TitleLink   string
	Pagination  string
	NextLabel   string
	Description string
	Metadata    string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Card:        "div.jobsearch-SerpJobCard.row.result",
		TitleLink:   "a.turnstileLink",
		Pagination:  "div.pagination",
		NextLabel:   "Next",
		Description: "div.jobsearch-JobComponent-description",
		Metadata:    "div.jobsearch-JobMetadataHeader-item",
	}
}
