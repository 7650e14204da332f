package ingest

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/david/deal-portal/internal/models"
)

// FirstDataRow is the sheet row holding the first deal; row 1 is the header.
const FirstDataRow = 2

var dealNamespace = uuid.MustParse("8f0e4c52-6a1d-5b7e-9c3a-2d4f6b8e0a17")

// RowsFromTable zips a header row with data rows. Short rows are padded with
// empty cells, blank headers are skipped and a repeated header keeps its
// first column.
func RowsFromTable(headers []string, rows [][]string) []RawRow {
	out := make([]RawRow, 0, len(rows))
	for _, cells := range rows {
		row := make(RawRow, len(headers))
		for i, h := range headers {
			if strings.TrimSpace(h) == "" {
				continue
			}
			if _, dup := row[h]; dup {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		out = append(out, row)
	}
	return out
}

// Normalize converts raw rows into deals. Rows whose title is blank are
// dropped and counted; every other defect is defaulted.
func Normalize(rows []RawRow) Result {
	res := Result{Deals: make(models.DealCollection, 0, len(rows))}
	for i, raw := range rows {
		deal, ok := FromRaw(raw, FirstDataRow+i)
		if !ok {
			res.Dropped++
			continue
		}
		res.Deals = append(res.Deals, deal)
	}
	return res
}

// NormalizeTable is Normalize over a header row plus data rows.
func NormalizeTable(headers []string, rows [][]string) Result {
	return Normalize(RowsFromTable(headers, rows))
}

// FromRaw converts a single row. The boolean is false when the row has no title.
func FromRaw(raw RawRow, row int) (models.Deal, bool) {
	fields := canonicalize(raw)

	title := cleanText(fields[FieldTitle])
	if title == "" {
		return models.Deal{}, false
	}

	deal := models.Deal{
		ID:            DealID(row, title),
		Row:           row,
		Title:         title,
		Description:   strings.TrimSpace(fields[FieldDescription]),
		Industry:      cleanText(fields[FieldIndustry]),
		TargetAmount:  coerceAmount(fields[FieldTargetAmount]),
		RaisedAmount:  coerceAmount(fields[FieldRaisedAmount]),
		Status:        models.DealStatus(cleanText(fields[FieldStatus])),
		MinInvestment: coerceAmount(fields[FieldMinInvestment]),
		DueDate:       parseDueDate(fields[FieldDueDate]),
		DocumentsLink: strings.TrimSpace(fields[FieldDocumentsLink]),
		ImageURL:      strings.TrimSpace(fields[FieldImageURL]),
	}
	return deal, true
}

// DealID derives a stable identifier from the sheet row and title, so the
// same sheet contents always yield the same ids.
func DealID(row int, title string) uuid.UUID {
	return uuid.NewSHA1(dealNamespace, []byte(strconv.Itoa(row)+"\x00"+title))
}

// canonicalize folds raw headers onto canonical fields. When two headers alias
// the same field the first non-empty value wins, visiting keys in sorted order
// so the choice does not depend on map iteration.
func canonicalize(raw RawRow) map[Field]string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[Field]string, len(Fields))
	for _, k := range keys {
		f, ok := CanonicalField(k)
		if !ok {
			continue
		}
		if strings.TrimSpace(out[f]) != "" {
			continue
		}
		out[f] = raw[k]
	}
	return out
}
