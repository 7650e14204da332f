package ingest

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/david/deal-portal/internal/models"
)

// dueDateLayouts are tried in order. Month-first numeric dates come before
// day-first ones, so 03/04/2026 reads as March 4 and 15/03/2026 still parses.
var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"2/1/2006",
	"1-2-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Monday, January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-2006",
}

// parseDueDate never fails: text that matches no known layout comes back as
// a RawDate so it can still be shown.
func parseDueDate(text string) models.DueDate {
	text = normalizeSpace(text)
	if text == "" {
		return models.DueDate{}
	}
	if d, ok := parseCalendarDate(text); ok {
		return models.ParsedDate(d)
	}
	return models.RawDate(text)
}

func parseCalendarDate(text string) (civil.Date, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return civil.DateOf(t), true
		}
	}
	// Sheets sometimes lower-cases month names on export.
	if titled := titleMonth(text); titled != text {
		for _, layout := range dueDateLayouts {
			if t, err := time.Parse(layout, titled); err == nil {
				return civil.DateOf(t), true
			}
		}
	}
	return civil.Date{}, false
}

func titleMonth(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if len(w) > 1 && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
