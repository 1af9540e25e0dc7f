package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/jobminer/internal/textstats"
	"github.com/muesli/termenv"
	"github.com/nao1215/markdown"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
}

// Report is the ranked term list of one run.
type Report struct {
	Keyword      string                 `json:"keyword"`
	Location     string                 `json:"location"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Links        int                    `json:"links"`
	Descriptions int                    `json:"descriptions"`
	Terms        []textstats.TermWeight `json:"terms"`
}

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "tsv":
		return FormatTSV, nil
	case "table", "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func WriteReport(w io.Writer, report Report, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeCSV(w, report.Terms, ',')
	case FormatTSV:
		return writeCSV(w, report.Terms, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, report)
	default:
		return writeTable(w, report.Terms, opts)
	}
}

func writeJSON(w io.Writer, report Report) error {
	if report.Terms == nil {
		report.Terms = []textstats.TermWeight{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeCSV(w io.Writer, terms []textstats.TermWeight, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(header()); err != nil {
		return err
	}
	for i, term := range terms {
		if err := writer.Write(row(i, term)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, terms []textstats.TermWeight, opts WriteOptions) error {
	const termColor = "#87CEEB"

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header(), "\t"))
	output := termenv.NewOutput(w)
	for i, term := range terms {
		cells := row(i, term)
		if opts.ColorEnabled {
			cells[1] = output.String(cells[1]).Foreground(output.Color(termColor)).String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, report Report) error {
	md := markdown.NewMarkdown(w)
	md.H1("Job keyword report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Keywords", report.Keyword},
			{"Location", report.Location},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05")},
			{"Job links", strconv.Itoa(report.Links)},
			{"Descriptions", strconv.Itoa(report.Descriptions)},
		},
	})
	md.PlainText("")

	if len(report.Terms) == 0 {
		md.PlainText("No terms.")
		return md.Build()
	}

	md.H2("Terms")
	md.PlainText("")
	rows := make([][]string, 0, len(report.Terms))
	for i, term := range report.Terms {
		rows = append(rows, row(i, term))
	}
	md.Table(markdown.TableSet{Header: header(), Rows: rows})
	return md.Build()
}

func header() []string {
	return []string{"rank", "term", "weight"}
}

func row(i int, term textstats.TermWeight) []string {
	return []string{
		strconv.Itoa(i + 1),
		term.Term,
		strconv.FormatFloat(term.Weight, 'f', 4, 64),
	}
}
