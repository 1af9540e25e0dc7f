package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/jimezsa/jobminer/internal/config"
	"github.com/jimezsa/jobminer/internal/corpus"
	"github.com/jimezsa/jobminer/internal/export"
	"github.com/jimezsa/jobminer/internal/models"
	"github.com/jimezsa/jobminer/internal/network"
	"github.com/jimezsa/jobminer/internal/resource"
	"github.com/jimezsa/jobminer/internal/scraper"
	"github.com/jimezsa/jobminer/internal/textstats"
	"github.com/jimezsa/jobminer/internal/ui"
	"github.com/jimezsa/jobminer/internal/wordcloud"
	"github.com/pkg/browser"
)

const proxyBanDuration = 10 * time.Minute

var errNoDescriptions = errors.New("no job descriptions collected")

type MineCmd struct {
	Keywords string `arg:"" name:"keywords" help:"Search keywords, e.g. \"HR Manager\"."`
	Location string `arg:"" name:"location" help:"Job location, e.g. \"New York\"."`
	Pages    int    `arg:"" name:"pages" optional:"" default:"${default_pages}" help:"Number of listing pages to walk."`

	Country     string `help:"Indeed country code (us, uk, de, ...)."`
	BaseURL     string `name:"base-url" help:"Job board base URL; overrides --country."`
	Concurrency int    `help:"Parallel detail page fetches (default from config)."`
	Output      string `name:"output" short:"o" help:"Word cloud PNG path (default: a temp file)."`
	Open        bool   `help:"Open the word cloud image when done." default:"true" negatable:""`
	TermsOut    string `name:"terms-out" help:"Write all term weights to a file."`
	Format      string `help:"Term output format: table, csv, json, md, tsv." enum:",table,csv,json,md,tsv" default:""`
	Top         int    `help:"Print the N heaviest terms to stdout; 0 disables." default:"20"`
	SaveCorpus  string `name:"save-corpus" help:"Save collected descriptions as JSON."`
	FromCorpus  string `name:"from-corpus" help:"Skip scraping and load descriptions saved with --save-corpus."`
	Proxies     string `help:"Comma-separated proxy URLs." env:"JOBMINER_PROXIES"`
	Seed        int64  `help:"Word cloud color and placement seed." default:"1"`
}

// mineDeps holds the collaborators a run talks to outside the process.
type mineDeps struct {
	fetcher    scraper.Fetcher
	downloader resource.Downloader
	open       func(path string) error
	now        func() time.Time
}

func (m *MineCmd) Run(ctx *Context) error {
	query, err := models.NewSearchQuery(m.Keywords, m.Location, m.Pages)
	if err != nil {
		return err
	}

	proxies, err := config.LoadProxies(m.Proxies)
	if err != nil {
		return err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, proxyBanDuration)
		if err != nil {
			return err
		}
		ctx.Logger.Debug().Int("proxies", rotator.Len()).Msg("proxy rotation enabled")
	}

	client, err := network.NewClient(rotator, networkOptions(ctx.Config))
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return m.run(runCtx, ctx, query, mineDeps{
		fetcher:    scraper.NewHTTPFetcher(client),
		downloader: client,
		open:       browser.OpenFile,
		now:        time.Now,
	})
}

func (m *MineCmd) run(runCtx context.Context, ctx *Context, query models.SearchQuery, deps mineDeps) error {
	cfg := ctx.Config
	now := deps.now()

	stopPath, err := resource.Ensure(runCtx, deps.downloader, cfg.DataDirectory(), cfg.StopWordsURL, cfg.StopWordsLanguage)
	if err != nil {
		return err
	}
	defaults, err := resource.Load(stopPath)
	if err != nil {
		return fmt.Errorf("%w: %w", resource.ErrResourceMissing, err)
	}

	snapshot, failures, err := m.collect(runCtx, ctx, query, deps, now)
	if err != nil {
		return err
	}

	if strings.TrimSpace(m.SaveCorpus) != "" {
		if err := corpus.WriteSnapshot(m.SaveCorpus, snapshot); err != nil {
			return fmt.Errorf("write --save-corpus: %w", err)
		}
	}

	reportFailures(ctx, failures)
	if len(snapshot.Descriptions) == 0 {
		return errNoDescriptions
	}

	stopWords := textstats.StopWords(defaults, cfg.ExtraStopWords, query.Location)
	weights, err := textstats.NewVectorizer(stopWords).Weights(snapshot.Texts())
	if err != nil {
		return err
	}

	ctx.UI.Statusf("Generating Word Cloud...")
	opts := wordcloud.DefaultOptions()
	opts.Width = cfg.Width
	opts.Height = cfg.Height
	opts.MaxWords = cfg.MaxWords
	opts.Seed = m.Seed
	opts.Title = wordcloud.Title(query.Keyword, query.Location, now)

	img, err := wordcloud.Render(weights, opts)
	if err != nil {
		return err
	}

	imagePath := m.Output
	if strings.TrimSpace(imagePath) == "" {
		imagePath = filepath.Join(os.TempDir(), fmt.Sprintf("jobminer-%s.png", now.Format("20060102-150405")))
	}
	if err := wordcloud.SavePNG(img, imagePath); err != nil {
		return fmt.Errorf("write word cloud: %w", err)
	}
	ctx.UI.Successf("Word cloud saved to %s", imagePath)

	if m.Open && deps.open != nil {
		if err := deps.open(imagePath); err != nil {
			ctx.UI.Warnf("could not open %s: %v", imagePath, err)
		}
	}

	report := export.Report{
		Keyword:      query.Keyword,
		Location:     query.Location,
		GeneratedAt:  now,
		Links:        len(snapshot.Links),
		Descriptions: len(snapshot.Descriptions),
		Terms:        textstats.Top(weights, 0),
	}
	if err := m.writeTerms(ctx, report); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Err, "summary: links=%d descriptions=%d failures=%d image=%s\n",
		len(snapshot.Links), len(snapshot.Descriptions), len(failures), imagePath)
	return nil
}

// collect walks the listing pages and extracts each posting, or loads a
// previously saved snapshot when --from-corpus is set.
func (m *MineCmd) collect(runCtx context.Context, ctx *Context, query models.SearchQuery, deps mineDeps, now time.Time) (corpus.Snapshot, []models.Failure, error) {
	if strings.TrimSpace(m.FromCorpus) != "" {
		snapshot, err := corpus.ReadSnapshot(m.FromCorpus)
		if err != nil {
			return corpus.Snapshot{}, nil, fmt.Errorf("read --from-corpus: %w", err)
		}
		ctx.Logger.Debug().Str("path", m.FromCorpus).Int("descriptions", len(snapshot.Descriptions)).Msg("corpus loaded")
		return snapshot, nil, nil
	}

	cfg := ctx.Config
	base := resolveBaseURL(m.BaseURL, m.Country, cfg)
	selectors := scraper.DefaultSelectors()

	ctx.UI.Statusf("Getting job links in %d page(s)...", query.Pages)
	walker := scraper.NewWalker(deps.fetcher, selectors, base, ctx.Logger)
	bar := ui.NewProgress(ctx.Err, "pages", query.Pages)
	walker.OnPage = bar.Increment
	links, failures := walker.Walk(runCtx, scraper.SearchURL(base, query), query.Pages)
	bar.Done()

	ctx.UI.Statusf("Getting job details in %d post(s)...", len(links))
	detailer := scraper.NewDetailer(deps.fetcher, selectors, base, defaultInt(m.Concurrency, cfg.Concurrency), ctx.Logger)
	bar = ui.NewProgress(ctx.Err, "posts", len(links))
	detailer.OnItem = bar.Increment
	descriptions, detailFailures := detailer.Details(runCtx, links)
	bar.Done()

	return corpus.Snapshot{
		Keyword:      query.Keyword,
		Location:     query.Location,
		CollectedAt:  now,
		Links:        links,
		Descriptions: descriptions,
	}, append(failures, detailFailures...), nil
}

func (m *MineCmd) writeTerms(ctx *Context, report export.Report) error {
	if strings.TrimSpace(m.TermsOut) != "" {
		format, err := resolveFormat(ctx, m.Format, m.TermsOut)
		if err != nil {
			return err
		}
		file, err := os.Create(m.TermsOut)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := export.WriteReport(file, report, format, export.WriteOptions{}); err != nil {
			return fmt.Errorf("write --terms-out: %w", err)
		}
	}

	if m.Top <= 0 {
		return nil
	}
	format, err := resolveFormat(ctx, m.Format, "")
	if err != nil {
		return err
	}
	report.Terms = textstats.Top(weightsOf(report.Terms), m.Top)
	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	return export.WriteReport(ctx.Out, report, format, export.WriteOptions{ColorEnabled: colorEnabled})
}

func weightsOf(terms []textstats.TermWeight) map[string]float64 {
	out := make(map[string]float64, len(terms))
	for _, term := range terms {
		out[term.Term] = term.Weight
	}
	return out
}

func reportFailures(ctx *Context, failures []models.Failure) {
	if ctx == nil || ctx.UI == nil || !ctx.Verbose || len(failures) == 0 {
		return
	}

	ctx.UI.Warnf("\nSkipped:")
	for _, failure := range failures {
		ctx.UI.Warnf("  %s %s: %v", failure.Stage, failure.Target, failure.Err)
	}
}

func networkOptions(cfg config.Config) network.Options {
	opts := network.DefaultOptions()
	opts.TimeoutSeconds = cfg.TimeoutSeconds
	opts.RequestsPerSecond = cfg.RequestsPerSecond
	opts.Retries = cfg.Retries
	if cfg.RetryDelayMS > 0 {
		opts.RetryDelay = time.Duration(cfg.RetryDelayMS) * time.Millisecond
	}
	return opts
}

// resolveBaseURL picks --base-url, then the configured base_url, then the
// host for the country code.
func resolveBaseURL(flagValue string, country string, cfg config.Config) string {
	if value := firstNonEmpty(flagValue, cfg.BaseURL); value != "" {
		return strings.TrimRight(strings.TrimSpace(value), "/")
	}
	return scraper.BaseURL(firstNonEmpty(country, cfg.Country))
}

// resolveFormat picks the term output format. Files default to the format
// implied by their extension, then CSV; stdout defaults to a table on a
// terminal and CSV otherwise.
func resolveFormat(ctx *Context, flagValue string, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if flagValue != "" {
		return export.ParseFormat(flagValue)
	}

	if outputPath != "" {
		switch strings.ToLower(filepath.Ext(outputPath)) {
		case ".json":
			return export.FormatJSON, nil
		case ".md":
			return export.FormatMarkdown, nil
		case ".tsv":
			return export.FormatTSV, nil
		}
		return export.FormatCSV, nil
	}

	if ui.IsTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
