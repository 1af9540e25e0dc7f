package scraper

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobminer/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// asciiPunctuation lists the 32 printable ASCII punctuation characters.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var urlPattern = regexp.MustCompile(`(?im)https?://\S+`)

// ExtractDescription returns the cleaned text of a posting page.
func ExtractDescription(doc *goquery.Document, sel Selectors) (string, error) {
	desc := doc.Find(sel.Description).First()
	if desc.Length() == 0 {
		return "", ErrMissingDescription
	}

	desc.Find(sel.Metadata).First().Remove()
	desc.Find("li").Each(func(_ int, li *goquery.Selection) {
		li.PrependNodes(&html.Node{Type: html.TextNode, Data: " "})
	})

	return CleanDescription(desc.Text()), nil
}

// CleanDescription drops URLs and turns punctuation into spaces.
func CleanDescription(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	return ReplacePunctuation(text)
}

// ReplacePunctuation maps every ASCII punctuation character to a single
// space. All other bytes, including invalid UTF-8, are kept as they are, so
// the result has the same length as text.
func ReplacePunctuation(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size <= 1 {
			b.WriteByte(text[i])
			i++
			continue
		}
		if r < utf8.RuneSelf && strings.ContainsRune(asciiPunctuation, r) {
			b.WriteByte(' ')
		} else {
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	return b.String()
}

// Detailer fetches posting pages and extracts their descriptions.
type Detailer struct {
	fetcher     Fetcher
	selectors   Selectors
	prefix      string
	concurrency int
	logger      zerolog.Logger

	// OnItem is called once per finished link. It may be called from
	// several goroutines when concurrency is above one.
	OnItem func()
}

func NewDetailer(fetcher Fetcher, selectors Selectors, prefix string, concurrency int, logger zerolog.Logger) *Detailer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Detailer{
		fetcher:     fetcher,
		selectors:   selectors,
		prefix:      prefix,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Details extracts one description per link. Failed links are reported and
// left out; the remaining descriptions keep the order of links.
func (d *Detailer) Details(ctx context.Context, links []models.JobLink) ([]models.JobDescription, []models.Failure) {
	results := make([]models.JobDescription, len(links))
	errs := make([]error, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			defer d.itemDone()
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = d.describe(gctx, link)
			return nil
		})
	}
	_ = g.Wait()

	descriptions := make([]models.JobDescription, 0, len(links))
	var failures []models.Failure
	for i, err := range errs {
		if err != nil {
			target := ResolveLink(d.prefix, string(links[i]))
			d.logger.Warn().Err(err).Str("url", target).Msg("job posting skipped")
			failures = append(failures, models.Failure{Stage: models.StageDetail, Target: target, Err: err})
			continue
		}
		descriptions = append(descriptions, results[i])
	}
	return descriptions, failures
}

func (d *Detailer) describe(ctx context.Context, link models.JobLink) (models.JobDescription, error) {
	target := ResolveLink(d.prefix, string(link))
	d.logger.Debug().Str("url", target).Msg("fetching job posting")

	doc, err := d.fetcher.Fetch(ctx, target)
	if err != nil {
		return models.JobDescription{}, err
	}
	text, err := ExtractDescription(doc, d.selectors)
	if err != nil {
		return models.JobDescription{}, err
	}
	return models.JobDescription{Link: link, URL: target, Text: text}, nil
}

func (d *Detailer) itemDone() {
	if d.OnItem != nil {
		d.OnItem()
	}
}
