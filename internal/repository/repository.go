// Package repository fetches deals from a source and writes changes back.
// It holds no data between calls: every fetch re-reads the source.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/david/deal-portal/internal/ingest"
	"github.com/david/deal-portal/internal/models"
	"github.com/david/deal-portal/internal/source"
)

const DefaultTimeout = 30 * time.Second

type Repository struct {
	src     source.Reader
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Repository)

// WithTimeout bounds every source round-trip. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(src source.Reader, opts ...Option) *Repository {
	r := &Repository{src: src, timeout: DefaultTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot is the result of one fetch.
type Snapshot struct {
	Deals     models.DealCollection `json:"deals"`
	Dropped   int                   `json:"dropped"`
	FetchedAt time.Time             `json:"fetched_at"`
}

// Load reads the whole source and normalizes it. A reachable source with no
// data rows yields an empty snapshot, not an error.
func (r *Repository) Load(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	table, err := r.src.ReadTable(ctx)
	if err != nil {
		return nil, classify(ctx, "fetch", false, err)
	}

	res := ingest.NormalizeTable(table.Headers, table.Rows)
	if res.Dropped > 0 {
		r.logger.Debug("Dropped rows without a title", "source", r.src.Name(), "dropped", res.Dropped)
	}
	r.logger.Info("Fetched deals",
		"source", r.src.Name(),
		"rows", len(table.Rows),
		"deals", len(res.Deals),
		"dropped", res.Dropped,
		"elapsed", time.Since(start))

	return &Snapshot{Deals: res.Deals, Dropped: res.Dropped, FetchedAt: time.Now().UTC()}, nil
}

func (r *Repository) Fetch(ctx context.Context) (models.DealCollection, error) {
	snap, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Deals, nil
}

// Append adds deal as a new row, laid out to match the sheet's current
// headers. An empty sheet gets the default header row first. A blank status
// is written as Open.
func (r *Repository) Append(ctx context.Context, deal models.Deal) error {
	const op = "append"
	w, err := r.writer(op)
	if err != nil {
		return err
	}
	if strings.TrimSpace(deal.Title) == "" {
		return &WriteError{Op: op, Err: ErrEmptyTitle}
	}
	if strings.TrimSpace(string(deal.Status)) == "" {
		deal.Status = models.DefaultAppendStatus
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	headers, err := w.Headers(ctx)
	if err != nil {
		return classify(ctx, op, true, err)
	}

	var rows [][]string
	if isBlank(headers) {
		headers = ingest.DefaultHeaders()
		rows = append(rows, headers)
	}
	rows = append(rows, rowValues(headers, deal))

	if err := w.AppendRows(ctx, rows); err != nil {
		return classify(ctx, op, true, err)
	}
	r.logger.Info("Appended deal", "source", r.src.Name(), "title", deal.Title, "header_written", len(rows) == 2)
	return nil
}

// Update overwrites cells of one sheet row. Field names may be header text
// or canonical field names; columns are resolved against the headers as
// they are now, and every name is checked before anything is written.
func (r *Repository) Update(ctx context.Context, row int, fields map[string]string) error {
	const op = "update"
	w, err := r.writer(op)
	if err != nil {
		return err
	}
	if row < ingest.FirstDataRow {
		return &WriteError{Op: op, Err: fmt.Errorf("%w: got %d", ErrInvalidRow, row)}
	}
	if len(fields) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	headers, err := w.Headers(ctx)
	if err != nil {
		return classify(ctx, op, true, err)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	cells := make(map[int]string, len(fields))
	claimed := make(map[int]string, len(fields))
	for _, name := range names {
		col, ok := ingest.ResolveColumn(headers, name)
		if !ok {
			return &SchemaMismatchError{Field: name, Headers: headers}
		}
		if prev, dup := claimed[col]; dup {
			return &WriteError{Op: op, Err: fmt.Errorf("%w: %q and %q both name column %q", ErrDuplicateField, prev, name, headers[col])}
		}
		claimed[col] = name
		cells[col] = fields[name]
	}

	if err := w.UpdateCells(ctx, row, cells); err != nil {
		return classify(ctx, op, true, err)
	}
	r.logger.Info("Updated deal row", "source", r.src.Name(), "row", row, "fields", names)
	return nil
}

// Info describes the underlying sheet. Sources that cannot describe
// themselves return an error wrapping source.ErrUnsupported.
func (r *Repository) Info(ctx context.Context) (*source.Info, error) {
	d, ok := r.src.(source.Describer)
	if !ok {
		return nil, fmt.Errorf("%s: %w", r.src.Name(), source.ErrUnsupported)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := d.Describe(ctx)
	if err != nil {
		return nil, classify(ctx, "info", false, err)
	}
	return info, nil
}

// SourceName identifies the backing source in logs and API responses.
func (r *Repository) SourceName() string { return r.src.Name() }

func (r *Repository) writer(op string) (source.Writer, error) {
	w, ok := r.src.(source.Writer)
	if !ok {
		return nil, &WriteError{Op: op, Err: fmt.Errorf("%s: %w", r.src.Name(), source.ErrReadOnly)}
	}
	return w, nil
}

func rowValues(headers []string, deal models.Deal) []string {
	values := map[ingest.Field]string{
		ingest.FieldTitle:         deal.Title,
		ingest.FieldDescription:   deal.Description,
		ingest.FieldIndustry:      deal.Industry,
		ingest.FieldTargetAmount:  ingest.FormatAmount(deal.TargetAmount),
		ingest.FieldRaisedAmount:  ingest.FormatAmount(deal.RaisedAmount),
		ingest.FieldStatus:        string(deal.Status),
		ingest.FieldMinInvestment: ingest.FormatAmount(deal.MinInvestment),
		ingest.FieldDueDate:       deal.DueDate.String(),
		ingest.FieldDocumentsLink: deal.DocumentsLink,
		ingest.FieldImageURL:      deal.ImageURL,
	}

	out := make([]string, len(headers))
	for f, col := range ingest.HeaderIndex(headers) {
		out[col] = values[f]
	}
	return out
}

func isBlank(headers []string) bool {
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			return false
		}
	}
	return true
}
