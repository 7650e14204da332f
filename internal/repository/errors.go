package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/david/deal-portal/internal/source"
)

var (
	ErrInvalidRow     = errors.New("row must be a data row (2 or greater)")
	ErrEmptyTitle     = errors.New("deal title is required")
	ErrDuplicateField = errors.New("fields name the same column")
)

// ConfigurationError means the source locator or credentials are missing or
// malformed. Hint tells the operator what to set.
type ConfigurationError struct {
	Key  string
	Hint string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Key, e.Hint)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConnectivityError is a network, authentication or timeout failure talking
// to the source. Callers may retry by refreshing.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: cannot reach deal source: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// SchemaMismatchError is returned when an update names a column the sheet
// no longer has.
type SchemaMismatchError struct {
	Field   string
	Headers []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("column %q not found in sheet headers [%s]", e.Field, strings.Join(e.Headers, ", "))
}

type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// classify maps a source failure onto the repository taxonomy. Reads only
// ever fail with configuration or connectivity errors; writes fall back to
// WriteError for remote failures that are not connectivity problems.
func classify(ctx context.Context, op string, write bool, err error) error {
	if err == nil {
		return nil
	}

	var (
		cfgErr  *source.ConfigError
		netErr  net.Error
		connErr *ConnectivityError
		wErr    *WriteError
		schErr  *SchemaMismatchError
		confErr *ConfigurationError
	)
	switch {
	case errors.As(err, &connErr), errors.As(err, &wErr), errors.As(err, &schErr), errors.As(err, &confErr):
		return err
	case errors.As(err, &cfgErr):
		return &ConfigurationError{Key: cfgErr.Key, Hint: cfgErr.Hint, Err: err}
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, source.ErrUnauthorized),
		errors.As(err, &netErr):
		return &ConnectivityError{Op: op, Err: err}
	case ctx.Err() != nil:
		return &ConnectivityError{Op: op, Err: errors.Join(ctx.Err(), err)}
	case write:
		return &WriteError{Op: op, Err: err}
	default:
		return &ConnectivityError{Op: op, Err: err}
	}
}
