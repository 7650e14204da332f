package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/david/deal-portal/internal/metrics"
	"github.com/david/deal-portal/internal/query"
	"github.com/david/deal-portal/internal/view"
)

type dealsResponse struct {
	Deals     any       `json:"deals"`
	Total     int       `json:"total"`
	Matched   int       `json:"matched"`
	Dropped   int       `json:"dropped"`
	FetchedAt time.Time `json:"fetched_at"`
}

type statsResponse struct {
	metrics.Summary
	Industries []metrics.Aggregation `json:"industries"`
	Statuses   []metrics.Aggregation `json:"statuses"`
}

type filtersResponse struct {
	query.FilterOptions
	SliderRange *query.AmountRange `json:"slider_range,omitempty"`
}

// parsePredicates reads q, industry, status, min_amount and max_amount.
// A single amount bound leaves the other side open.
func parsePredicates(c echo.Context) (query.Predicates, error) {
	p := query.Predicates{
		Search:   c.QueryParam("q"),
		Industry: strings.TrimSpace(c.QueryParam("industry")),
		Status:   strings.TrimSpace(c.QueryParam("status")),
	}

	minStr := strings.TrimSpace(c.QueryParam("min_amount"))
	maxStr := strings.TrimSpace(c.QueryParam("max_amount"))
	if minStr == "" && maxStr == "" {
		return p, nil
	}

	r := query.AmountRange{Low: math.Inf(-1), High: math.Inf(1)}
	if minStr != "" {
		v, err := strconv.ParseFloat(minStr, 64)
		if err != nil || math.IsNaN(v) {
			return p, fmt.Errorf("invalid min_amount %q", minStr)
		}
		r.Low = v
	}
	if maxStr != "" {
		v, err := strconv.ParseFloat(maxStr, 64)
		if err != nil || math.IsNaN(v) {
			return p, fmt.Errorf("invalid max_amount %q", maxStr)
		}
		r.High = v
	}
	if r.Low > r.High {
		return p, fmt.Errorf("min_amount must not exceed max_amount")
	}
	p.Amount = &r
	return p, nil
}

func wantsCards(c echo.Context) bool {
	return c.QueryParam("view") == "cards"
}

func (s *Server) handleListDeals(c echo.Context) error {
	p, err := parsePredicates(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	snap, err := s.snapshot(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, err)
	}

	deals := query.Filter(snap.Deals, p)
	resp := dealsResponse{
		Deals:     deals,
		Total:     len(snap.Deals),
		Matched:   len(deals),
		Dropped:   snap.Dropped,
		FetchedAt: snap.FetchedAt,
	}
	if wantsCards(c) {
		resp.Deals = view.Cards(deals)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetDeal(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid deal id"})
	}
	snap, err := s.snapshot(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, err)
	}
	deal, ok := snap.Deals.ByID(id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if wantsCards(c) {
		return c.JSON(http.StatusOK, view.NewCard(deal))
	}
	return c.JSON(http.StatusOK, deal)
}

func (s *Server) handleGetStats(c echo.Context) error {
	p, err := parsePredicates(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	snap, err := s.snapshot(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, err)
	}

	summary := metrics.Summarize(query.Filter(snap.Deals, p))
	return c.JSON(http.StatusOK, statsResponse{
		Summary:    summary,
		Industries: metrics.Breakdown(summary.ByIndustry),
		Statuses:   metrics.Breakdown(summary.ByStatus),
	})
}

func (s *Server) handleGetFilters(c echo.Context) error {
	snap, err := s.snapshot(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, err)
	}
	resp := filtersResponse{FilterOptions: query.Options(snap.Deals)}
	if resp.Amount != nil {
		r := view.SliderRange(*resp.Amount)
		resp.SliderRange = &r
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetSheet(c echo.Context) error {
	info, err := s.Repo.Info(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleRefresh(c echo.Context) error {
	snap, err := s.reload(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":    "Deals refreshed",
		"deals":      len(snap.Deals),
		"dropped":    snap.Dropped,
		"fetched_at": snap.FetchedAt,
	})
}
