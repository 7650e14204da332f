// Package source reads and writes the tabular store that deals live in.
// The first row of every table is the header row.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Table is a header row plus data rows, as stored.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Reader returns the full current contents of a source.
type Reader interface {
	Name() string
	ReadTable(ctx context.Context) (*Table, error)
}

// Writer is implemented by sources that accept write-back. Rows are 1-based
// sheet rows and columns are 0-based header positions.
type Writer interface {
	Headers(ctx context.Context) ([]string, error)
	AppendRows(ctx context.Context, rows [][]string) error
	UpdateCells(ctx context.Context, row int, cells map[int]string) error
}

// Describer reports metadata about the underlying sheet.
type Describer interface {
	Describe(ctx context.Context) (*Info, error)
}

type Info struct {
	Title       string `json:"title"`
	Tab         string `json:"tab"`
	RowCount    int    `json:"row_count"`
	ColumnCount int    `json:"col_count"`
	URL         string `json:"url"`
}

var (
	ErrReadOnly     = errors.New("source is read-only")
	ErrUnauthorized = errors.New("source rejected credentials")
	ErrUnsupported  = errors.New("operation not supported by source")
)

// ConfigError reports a missing or malformed setting.
type ConfigError struct {
	Key  string
	Hint string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Hint)
}

// APIError is a non-success response from a remote source.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote returned %d", e.StatusCode)
	}
	return fmt.Sprintf("remote returned %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match authentication failures.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}
