// Package query selects deals matching a set of predicates.
package query

import (
	"sort"
	"strings"

	"github.com/david/deal-portal/internal/models"
)

// All is the "no constraint" value for industry and status selectors.
const All = "All"

// AmountRange bounds target_amount, both ends inclusive.
type AmountRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (r AmountRange) Contains(v float64) bool {
	return r.Low <= v && v <= r.High
}

// Predicates are ANDed together. Zero values impose no constraint.
type Predicates struct {
	Search   string
	Industry string
	Status   string
	Amount   *AmountRange
}

// IsZero reports whether no predicate is set.
func (p Predicates) IsZero() bool {
	return strings.TrimSpace(p.Search) == "" &&
		isUnset(p.Industry) &&
		isUnset(p.Status) &&
		p.Amount == nil
}

func isUnset(v string) bool {
	return v == "" || v == All
}

// Filter returns the deals satisfying every predicate, in their original
// order. The result never aliases the input.
func Filter(deals models.DealCollection, p Predicates) models.DealCollection {
	search := strings.ToLower(strings.TrimSpace(p.Search))

	out := make(models.DealCollection, 0, len(deals))
	for _, d := range deals {
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Title), search) &&
			!strings.Contains(strings.ToLower(d.Description), search) {
			continue
		}
		if !isUnset(p.Industry) && d.Industry != p.Industry {
			continue
		}
		if !isUnset(p.Status) && string(d.Status) != p.Status {
			continue
		}
		if p.Amount != nil && !p.Amount.Contains(d.TargetAmount) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// DefaultAmountRange spans the smallest to the largest target amount. The
// boolean is false for an empty collection. A single-valued collection yields
// a degenerate range, which Filter accepts as is.
func DefaultAmountRange(deals models.DealCollection) (AmountRange, bool) {
	if len(deals) == 0 {
		return AmountRange{}, false
	}
	r := AmountRange{Low: deals[0].TargetAmount, High: deals[0].TargetAmount}
	for _, d := range deals[1:] {
		r.Low = min(r.Low, d.TargetAmount)
		r.High = max(r.High, d.TargetAmount)
	}
	return r, true
}

// FilterOptions are the choices offered by selector controls.
type FilterOptions struct {
	Industries []string     `json:"industries"`
	Statuses   []string     `json:"statuses"`
	Amount     *AmountRange `json:"amount_range,omitempty"`
}

// Options lists All followed by the sorted distinct non-blank industries
// and statuses, plus the default amount range.
func Options(deals models.DealCollection) FilterOptions {
	opts := FilterOptions{
		Industries: withAll(distinct(deals, func(d models.Deal) string { return d.Industry })),
		Statuses:   withAll(distinct(deals, func(d models.Deal) string { return string(d.Status) })),
	}
	if r, ok := DefaultAmountRange(deals); ok {
		opts.Amount = &r
	}
	return opts
}

func distinct(deals models.DealCollection, key func(models.Deal) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range deals {
		v := key(d)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func withAll(values []string) []string {
	return append([]string{All}, values...)
}
