package models

// JobLink is a site-relative link to one job posting, as found on a listing page.
type JobLink string

// PaginationState tracks one walk over listing pages.
type PaginationState struct {
	URL       string
	Remaining int
}

// JobDescription is the cleaned text of one posting.
type JobDescription struct {
	Link JobLink `json:"link"`
	URL  string  `json:"url"`
	Text string  `json:"text"`
}

// Failure records a listing page or posting that was skipped.
type Failure struct {
	Stage  string
	Target string
	Err    error
}

const (
	StageListing = "listing"
	StageDetail  = "detail"
)
