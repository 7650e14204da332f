// Package view holds the display rules shared by the dashboard and the CLIs.
package view

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/david/deal-portal/internal/models"
	"github.com/david/deal-portal/internal/query"
)

const (
	colorOpen         = "#28a745"
	colorDueDiligence = "#ffc107"
	colorClosed       = "#dc3545"
	colorUnknown      = "#6c757d"

	dueDateLayout = "January 02, 2006"

	// RangeWidening is added to the upper bound of a degenerate amount slider.
	RangeWidening = 1_000_000
)

// FormatCurrency renders whole dollars with thousands separators, e.g. "$1,234".
func FormatCurrency(v float64) string {
	v = math.Round(v)
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	if v >= math.MaxInt64 {
		return sign + "$" + humanize.BigComma(decimal.NewFromFloat(v).BigInt())
	}
	return sign + "$" + humanize.Comma(int64(v))
}

// StatusColor is the badge colour for a status; unknown statuses are grey.
func StatusColor(s models.DealStatus) string {
	switch s {
	case models.StatusOpen:
		return colorOpen
	case models.StatusDueDiligence:
		return colorDueDiligence
	case models.StatusClosed:
		return colorClosed
	}
	return colorUnknown
}

// StatusClass is the CSS class for a status badge, e.g. "status-due-diligence".
func StatusClass(s models.DealStatus) string {
	if !s.Known() {
		return "status-unknown"
	}
	return "status-" + strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

// ProgressFraction is the filled share of a progress bar, clamped to [0, 1].
func ProgressFraction(d models.Deal) float64 {
	return min(max(d.Progress()/100, 0), 1)
}

// ShowProgress hides the bar for closed deals.
func ShowProgress(d models.Deal) bool {
	return d.Status != models.StatusClosed
}

// CanExpressInterest is true only while a deal is open.
func CanExpressInterest(d models.Deal) bool {
	return d.Status == models.StatusOpen
}

// DueDateDisplay formats parsed dates long-form and shows raw text as given.
func DueDateDisplay(d models.DueDate) string {
	if date, ok := d.Date(); ok {
		return date.In(time.UTC).Format(dueDateLayout)
	}
	if raw, ok := d.Raw(); ok {
		return raw
	}
	return ""
}

// SliderRange widens a single-point amount range so a slider has room to move.
// Filtering itself never widens ranges.
func SliderRange(r query.AmountRange) query.AmountRange {
	if r.Low == r.High {
		r.High += RangeWidening
	}
	return r
}
