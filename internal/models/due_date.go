package models

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
)

type dueDateKind uint8

const (
	dueDateAbsent dueDateKind = iota
	dueDateParsed
	dueDateRaw
)

// DueDate is a best-effort parsed date. It is either absent, a calendar date
// (ParsedDate), or text that could not be parsed (RawDate) kept for display.
type DueDate struct {
	kind dueDateKind
	date civil.Date
	raw  string
}

func ParsedDate(d civil.Date) DueDate {
	return DueDate{kind: dueDateParsed, date: d}
}

func RawDate(text string) DueDate {
	if text == "" {
		return DueDate{}
	}
	return DueDate{kind: dueDateRaw, raw: text}
}

// IsZero reports whether no due date was given.
func (d DueDate) IsZero() bool { return d.kind == dueDateAbsent }

// Date returns the calendar date when parsing succeeded.
func (d DueDate) Date() (civil.Date, bool) {
	return d.date, d.kind == dueDateParsed
}

// Raw returns the unparsed text when parsing failed.
func (d DueDate) Raw() (string, bool) {
	return d.raw, d.kind == dueDateRaw
}

// String renders ISO dates for parsed values and the original text otherwise.
// It is also the form written back to the sheet.
func (d DueDate) String() string {
	switch d.kind {
	case dueDateParsed:
		return d.date.String()
	case dueDateRaw:
		return d.raw
	}
	return ""
}

type dueDateJSON struct {
	Kind string `json:"kind"`
	Date string `json:"date,omitempty"`
	Text string `json:"text,omitempty"`
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case dueDateParsed:
		return json.Marshal(dueDateJSON{Kind: "parsed", Date: d.date.String()})
	case dueDateRaw:
		return json.Marshal(dueDateJSON{Kind: "raw", Text: d.raw})
	}
	return []byte("null"), nil
}

func (d *DueDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DueDate{}
		return nil
	}
	var v dueDateJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v.Kind {
	case "parsed":
		date, err := civil.ParseDate(v.Date)
		if err != nil {
			return fmt.Errorf("due date: %w", err)
		}
		*d = ParsedDate(date)
	case "raw":
		*d = RawDate(v.Text)
	default:
		return fmt.Errorf("due date: unknown kind %q", v.Kind)
	}
	return nil
}
