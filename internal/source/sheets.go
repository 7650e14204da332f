package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Sheets reads and writes one tab of a Google spreadsheet through the v4
// REST API. All calls share the Connector's connection.
type Sheets struct {
	conn *Connector
}

func NewSheets(conn *Connector) *Sheets {
	return &Sheets{conn: conn}
}

func (s *Sheets) Name() string { return "google-sheets" }

type valueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

func (s *Sheets) readRange(ctx context.Context, c *sheetConn, a1 string) ([][]string, error) {
	q := url.Values{}
	q.Set("majorDimension", "ROWS")
	q.Set("valueRenderOption", "FORMATTED_VALUE")
	endpoint := c.spreadsheetURL() + "/values/" + url.PathEscape(a1) + "?" + q.Encode()

	var vr valueRange
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &vr); err != nil {
		return nil, err
	}
	out := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = cells
	}
	return out, nil
}

func (s *Sheets) ReadTable(ctx context.Context) (*Table, error) {
	c, err := s.conn.connect(ctx)
	if err != nil {
		return nil, err
	}
	values, err := s.readRange(ctx, c, quoteTab(c.tab))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return &Table{}, nil
	}
	return &Table{Headers: values[0], Rows: values[1:]}, nil
}

func (s *Sheets) Headers(ctx context.Context) ([]string, error) {
	c, err := s.conn.connect(ctx)
	if err != nil {
		return nil, err
	}
	values, err := s.readRange(ctx, c, quoteTab(c.tab)+"!1:1")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

func (s *Sheets) AppendRows(ctx context.Context, rows [][]string) error {
	c, err := s.conn.connect(ctx)
	if err != nil {
		return err
	}
	q := url.Values{}
	q.Set("valueInputOption", "USER_ENTERED")
	q.Set("insertDataOption", "INSERT_ROWS")
	endpoint := c.spreadsheetURL() + "/values/" + url.PathEscape(quoteTab(c.tab)) + ":append?" + q.Encode()

	return c.do(ctx, http.MethodPost, endpoint, valueRange{Values: toValues(rows)}, nil)
}

// UpdateCells writes every cell in one batchUpdate call, so either all of
// them change or none do.
func (s *Sheets) UpdateCells(ctx context.Context, row int, cells map[int]string) error {
	c, err := s.conn.connect(ctx)
	if err != nil {
		return err
	}

	cols := make([]int, 0, len(cells))
	for col := range cells {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	data := make([]valueRange, 0, len(cols))
	for _, col := range cols {
		data = append(data, valueRange{
			Range:  fmt.Sprintf("%s!%s%d", quoteTab(c.tab), columnName(col), row),
			Values: [][]any{{cells[col]}},
		})
	}
	body := struct {
		ValueInputOption string       `json:"valueInputOption"`
		Data             []valueRange `json:"data"`
	}{ValueInputOption: "USER_ENTERED", Data: data}

	return c.do(ctx, http.MethodPost, c.spreadsheetURL()+"/values:batchUpdate", body, nil)
}

// Describe re-reads spreadsheet metadata so row counts are current.
func (s *Sheets) Describe(ctx context.Context) (*Info, error) {
	c, err := s.conn.connect(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := c.metadata(ctx)
	if err != nil {
		return nil, err
	}
	info := &Info{Title: meta.Properties.Title, Tab: c.tab, URL: meta.SpreadsheetURL}
	for _, sh := range meta.Sheets {
		if sh.Properties.Title == c.tab {
			info.RowCount = sh.Properties.GridProperties.RowCount
			info.ColumnCount = sh.Properties.GridProperties.ColumnCount
		}
	}
	return info, nil
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = escapeFormula(v)
		}
		out[i] = cells
	}
	return out
}

// escapeFormula stops USER_ENTERED input from being evaluated as a formula.
// A leading quote makes Sheets store the cell as text and is not displayed.
func escapeFormula(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return v
	}
	switch trimmed[0] {
	case '=', '+', '-', '@':
		return "'" + v
	}
	return v
}
