package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/david/deal-portal/internal/metrics"
	"github.com/david/deal-portal/internal/query"
	"github.com/david/deal-portal/internal/view"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html").
	Funcs(template.FuncMap{"money": view.FormatCurrency}).
	ParseFS(templateFS, "templates/dashboard.html"))

type dashboardPage struct {
	Error string
	Hint  string

	Search    string
	Industry  string
	Status    string
	MinAmount string
	MaxAmount string

	Options    query.FilterOptions
	Slider     *query.AmountRange
	Summary    metrics.Summary
	Industries []metrics.Aggregation
	Cards      []view.Card

	Total     int
	Dropped   int
	FetchedAt string
}

func selected(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return query.All
	}
	return v
}

func (s *Server) handleDashboard(c echo.Context) error {
	page := dashboardPage{
		Search:    c.QueryParam("q"),
		Industry:  selected(c.QueryParam("industry")),
		Status:    selected(c.QueryParam("status")),
		MinAmount: strings.TrimSpace(c.QueryParam("min_amount")),
		MaxAmount: strings.TrimSpace(c.QueryParam("max_amount")),
	}

	p, err := parsePredicates(c)
	if err != nil {
		page.Error = err.Error()
		return s.render(c, http.StatusBadRequest, page)
	}

	snap, err := s.snapshot(c.Request().Context())
	if err != nil {
		status, body := describeError(err)
		s.logFailure(c, status, body.Kind, err)
		page.Error = body.Error
		page.Hint = body.Hint
		return s.render(c, status, page)
	}

	deals := query.Filter(snap.Deals, p)
	page.Options = query.Options(snap.Deals)
	if page.Options.Amount != nil {
		r := view.SliderRange(*page.Options.Amount)
		page.Slider = &r
	}
	page.Summary = metrics.Summarize(deals)
	page.Industries = metrics.Breakdown(page.Summary.ByIndustry)
	page.Cards = view.Cards(deals)
	page.Total = len(snap.Deals)
	page.Dropped = snap.Dropped
	page.FetchedAt = humanize.Time(snap.FetchedAt)

	return s.render(c, http.StatusOK, page)
}

func (s *Server) render(c echo.Context, status int, page dashboardPage) error {
	var buf bytes.Buffer
	if err := s.dashboard.Execute(&buf, page); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}
