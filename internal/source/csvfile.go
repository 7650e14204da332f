package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CSVFile keeps deals in a local CSV file with a header row. It supports
// the same write-back operations as a spreadsheet.
type CSVFile struct {
	Path string

	mu sync.Mutex
}

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

func (f *CSVFile) Name() string { return "csv-file" }

func (f *CSVFile) ReadTable(ctx context.Context) (*Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

func (f *CSVFile) Headers(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll(ctx)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (f *CSVFile) AppendRows(ctx context.Context, rows [][]string) error {
	if err := f.checkPath(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Path, err)
	}
	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		file.Close()
		return fmt.Errorf("appending to %s: %w", f.Path, err)
	}
	return file.Close()
}

// UpdateCells rewrites the file through a temporary copy so a failed write
// leaves the original untouched.
func (f *CSVFile) UpdateCells(ctx context.Context, row int, cells map[int]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll(ctx)
	if err != nil {
		return err
	}
	if row < 1 || row > len(records) {
		return fmt.Errorf("row %d out of range (file has %d rows)", row, len(records))
	}

	rec := records[row-1]
	for col, v := range cells {
		for len(rec) <= col {
			rec = append(rec, "")
		}
		rec[col] = v
	}
	records[row-1] = rec

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".deals-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

func (f *CSVFile) Describe(ctx context.Context) (*Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll(ctx)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(f.Path)
	if err != nil {
		abs = f.Path
	}
	info := &Info{Title: filepath.Base(f.Path), RowCount: len(records), URL: "file://" + abs}
	for _, rec := range records {
		info.ColumnCount = max(info.ColumnCount, len(rec))
	}
	return info, nil
}

func (f *CSVFile) checkPath() error {
	if f.Path == "" {
		return &ConfigError{Key: "GOOGLE_SHEET_URL", Hint: "no CSV path configured; set GOOGLE_SHEET_URL to the file path when DEAL_SOURCE=csv"}
	}
	return nil
}

// readAll returns no records for a missing file, matching an empty sheet.
func (f *CSVFile) readAll(ctx context.Context) ([][]string, error) {
	if err := f.checkPath(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Path, err)
		}
		records = append(records, rec)
	}
	// Spreadsheet exports often start with a byte-order mark.
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}
