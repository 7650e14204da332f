package ingest

import (
	"strings"
)

// headerAliases maps folded header text onto canonical fields. Anything not
// listed here is ignored.
var headerAliases = map[string]Field{
	"title":             FieldTitle,
	"description":       FieldDescription,
	"industry":          FieldIndustry,
	"targetamount":      FieldTargetAmount,
	"raisedamount":      FieldRaisedAmount,
	"status":            FieldStatus,
	"mininvestment":     FieldMinInvestment,
	"minimuminvestment": FieldMinInvestment,
	"duedate":           FieldDueDate,
	"documentslink":     FieldDocumentsLink,
	"documentsurl":      FieldDocumentsLink,
	"imageurl":          FieldImageURL,
}

// displayHeaders is the header text written to a sheet that has none yet.
var displayHeaders = map[Field]string{
	FieldTitle:         "Title",
	FieldDescription:   "Description",
	FieldIndustry:      "Industry",
	FieldTargetAmount:  "Target Amount",
	FieldRaisedAmount:  "Raised Amount",
	FieldStatus:        "Status",
	FieldMinInvestment: "Min Investment",
	FieldDueDate:       "Due Date",
	FieldDocumentsLink: "Documents Link",
	FieldImageURL:      "Image URL",
}

// CanonicalField resolves header text to a canonical field.
func CanonicalField(header string) (Field, bool) {
	f, ok := headerAliases[foldHeader(header)]
	return f, ok
}

// DisplayHeader is the human-readable header for a canonical field.
func DisplayHeader(f Field) string {
	return displayHeaders[f]
}

// DefaultHeaders returns the header row for a sheet created from scratch.
func DefaultHeaders() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = displayHeaders[f]
	}
	return out
}

// HeaderIndex maps each canonical field to the first column carrying it.
func HeaderIndex(headers []string) map[Field]int {
	idx := make(map[Field]int, len(Fields))
	for i, h := range headers {
		f, ok := CanonicalField(h)
		if !ok {
			continue
		}
		if _, seen := idx[f]; !seen {
			idx[f] = i
		}
	}
	return idx
}

// ResolveColumn finds the 0-based column for name, matching the exact header
// text first and then any header that aliases to the same canonical field.
func ResolveColumn(headers []string, name string) (int, bool) {
	for i, h := range headers {
		if h == name {
			return i, true
		}
	}
	for i, h := range headers {
		if strings.TrimSpace(h) == strings.TrimSpace(name) {
			return i, true
		}
	}
	f, ok := CanonicalField(name)
	if !ok {
		return 0, false
	}
	i, ok := HeaderIndex(headers)[f]
	return i, ok
}
