package source

import (
	"fmt"
	"strings"
	"time"
)

const (
	KindSheets    = "sheets"
	KindPublished = "published"
	KindCSV       = "csv"
)

type Options struct {
	Kind    string
	Locator string
	Timeout time.Duration
}

// Open builds the Reader selected by opts.Kind. Sheets sources share conn,
// which the caller builds once per process.
func Open(opts Options, conn *Connector) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindSheets:
		if conn == nil {
			return nil, fmt.Errorf("sheets source requires a connector")
		}
		return NewSheets(conn), nil
	case KindPublished:
		p := NewPublished(opts.Locator)
		if opts.Timeout > 0 {
			p.RequestTimeout = opts.Timeout
		}
		return p, nil
	case KindCSV:
		return NewCSVFile(strings.TrimSpace(opts.Locator)), nil
	default:
		return nil, &ConfigError{
			Key:  "DEAL_SOURCE",
			Hint: fmt.Sprintf("unknown source kind %q; expected sheets, published or csv", opts.Kind),
		}
	}
}
