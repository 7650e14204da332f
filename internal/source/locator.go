package source

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	sheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	sheetKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SpreadsheetID accepts either a sheet URL or a bare key.
func SpreadsheetID(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", &ConfigError{Key: "GOOGLE_SHEET_URL", Hint: "no sheet configured; set GOOGLE_SHEET_URL to the sheet URL or key"}
	}

	if strings.HasPrefix(locator, "https://") || strings.HasPrefix(locator, "http://") {
		u, err := url.Parse(locator)
		if err != nil {
			return "", &ConfigError{Key: "GOOGLE_SHEET_URL", Hint: "sheet URL is not a valid URL"}
		}
		m := sheetURLPattern.FindStringSubmatch(u.Path)
		if m == nil {
			return "", &ConfigError{Key: "GOOGLE_SHEET_URL", Hint: "sheet URL does not contain /spreadsheets/d/<key>"}
		}
		return m[1], nil
	}

	if !sheetKeyPattern.MatchString(locator) {
		return "", &ConfigError{Key: "GOOGLE_SHEET_URL", Hint: "sheet key contains invalid characters"}
	}
	return locator, nil
}

// columnName converts a 0-based column index to A1 letters (0 -> A, 26 -> AA).
func columnName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

// quoteTab quotes a tab title for use in an A1 range.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
