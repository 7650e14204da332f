// Package metrics computes summary statistics over a deal collection.
// Every function is pure and safe for concurrent use.
package metrics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/david/deal-portal/internal/models"
)

type Summary struct {
	Count              int            `json:"count"`
	TotalTarget        float64        `json:"total_target"`
	TotalRaised        float64        `json:"total_raised"`
	AverageProgressPct float64        `json:"average_progress_pct"`
	OpenCount          int            `json:"open_count"`
	ByIndustry         map[string]int `json:"by_industry"`
	ByStatus           map[string]int `json:"by_status"`
}

// Summarize aggregates deals. An empty collection yields zeros and empty
// (non-nil) breakdowns. Categories only appear when they occur.
func Summarize(deals models.DealCollection) Summary {
	s := Summary{
		Count:      len(deals),
		ByIndustry: make(map[string]int),
		ByStatus:   make(map[string]int),
	}
	if len(deals) == 0 {
		return s
	}

	// Accumulate in decimal; float64 sums depend on row order.
	target, raised, progress := decimal.Zero, decimal.Zero, decimal.Zero
	for _, d := range deals {
		target = target.Add(toDecimal(d.TargetAmount))
		raised = raised.Add(toDecimal(d.RaisedAmount))
		progress = progress.Add(toDecimal(d.Progress()))
		if d.Status == models.StatusOpen {
			s.OpenCount++
		}
		s.ByIndustry[d.Industry]++
		s.ByStatus[string(d.Status)]++
	}

	s.TotalTarget = target.InexactFloat64()
	s.TotalRaised = raised.InexactFloat64()
	s.AverageProgressPct = progress.Div(decimal.NewFromInt(int64(len(deals)))).InexactFloat64()
	return s
}

// toDecimal treats NaN and infinities as zero; NewFromFloat panics on them.
func toDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Aggregation is one bucket of a breakdown.
type Aggregation struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Breakdown orders counts by frequency, most common first, ties by value.
func Breakdown(counts map[string]int) []Aggregation {
	out := make([]Aggregation, 0, len(counts))
	for v, n := range counts {
		out = append(out, Aggregation{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
