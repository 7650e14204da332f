package source

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// Published scrapes a sheet shared through "File > Publish to web" as HTML.
// It needs no credentials and is read-only.
type Published struct {
	URL            string
	UserAgent      string
	RequestTimeout time.Duration
}

func NewPublished(pageURL string) *Published {
	return &Published{
		URL:            strings.TrimSpace(pageURL),
		UserAgent:      "deal-portal/1.0 (+published-sheet reader)",
		RequestTimeout: 30 * time.Second,
	}
}

func (p *Published) Name() string { return "published-sheet" }

func (p *Published) ReadTable(ctx context.Context) (*Table, error) {
	if p.URL == "" {
		return nil, &ConfigError{Key: "GOOGLE_SHEET_URL", Hint: "no published sheet URL configured; set GOOGLE_SHEET_URL to the pubhtml link"}
	}

	c := colly.NewCollector(
		colly.UserAgent(p.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(p.RequestTimeout)

	var (
		table    Table
		seen     bool
		fetchErr error
	)

	c.OnHTML("table", func(e *colly.HTMLElement) {
		if seen {
			return
		}
		seen = true
		e.DOM.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td").Not(".freezebar-cell")
			if cells.Length() == 0 {
				return
			}
			row := cells.Map(func(_ int, td *goquery.Selection) string {
				return strings.TrimSpace(td.Text())
			})
			if table.Headers == nil {
				if isBlankRow(row) {
					return
				}
				table.Headers = row
				return
			}
			table.Rows = append(table.Rows, row)
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= http.StatusBadRequest {
			fetchErr = &APIError{StatusCode: r.StatusCode, Status: http.StatusText(r.StatusCode), Message: err.Error()}
			return
		}
		fetchErr = err
	})

	if err := c.Visit(p.URL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(fetchErr, ctxErr) {
			return nil, errors.Join(ctxErr, fetchErr)
		}
		return nil, fetchErr
	}

	// The published grid pads the end with empty rows.
	for len(table.Rows) > 0 && isBlankRow(table.Rows[len(table.Rows)-1]) {
		table.Rows = table.Rows[:len(table.Rows)-1]
	}
	return &table, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
