package ingest

import (
	"strings"
)

// normalizeSpace collapses multiple spaces into one and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanText normalizes whitespace (alias for normalizeSpace)
func cleanText(s string) string {
	return normalizeSpace(s)
}

var headerNoise = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "", "\t", "", "\u00a0", "", "\ufeff", "")

// foldHeader reduces a header to its compact lower-case form so that
// "Target Amount", "target_amount" and "TargetAmount" compare equal.
func foldHeader(h string) string {
	return headerNoise.Replace(strings.ToLower(strings.TrimSpace(h)))
}
