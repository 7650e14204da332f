package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const fakeKey = "abc123"

type fakeSheets struct {
	mu sync.Mutex

	tabs      []map[string]any
	values    [][]any
	failMeta  int // number of metadata calls to fail with 500
	status    int // forced status for every call when non-zero
	metaCalls int

	appended [][]any
	updates  []valueRange
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{
		tabs: []map[string]any{
			{"sheetId": 7, "title": "Archive", "index": 1, "gridProperties": map[string]int{"rowCount": 10, "columnCount": 3}},
			{"sheetId": 0, "title": "Deals", "index": 0, "gridProperties": map[string]int{"rowCount": 1000, "columnCount": 26}},
		},
		values: [][]any{
			{"Title", "Target Amount", "Status"},
			{"Solar Farm", 1000, "Open"},
			{"Wind", "2,000", "Closed"},
		},
	}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		writeAPIError(w, f.status, "PERMISSION_DENIED", "caller does not have permission")
		return
	}

	prefix := "/v4/spreadsheets/" + fakeKey
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == prefix:
		f.metaCalls++
		if f.failMeta > 0 {
			f.failMeta--
			writeAPIError(w, http.StatusInternalServerError, "INTERNAL", "backend error")
			return
		}
		sheets := make([]map[string]any, len(f.tabs))
		for i, p := range f.tabs {
			sheets[i] = map[string]any{"properties": p}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetUrl": "https://docs.google.com/spreadsheets/d/" + fakeKey + "/edit",
			"properties":     map[string]string{"title": "Deal Flow"},
			"sheets":         sheets,
		})
	case r.Method == http.MethodGet && strings.HasPrefix(path, prefix+"/values/"):
		rng := strings.TrimPrefix(path, prefix+"/values/")
		values := f.values
		if strings.HasSuffix(rng, "!1:1") && len(values) > 0 {
			values = values[:1]
		}
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "majorDimension": "ROWS", "values": values})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var body valueRange
		json.NewDecoder(r.Body).Decode(&body)
		f.appended = append(f.appended, body.Values...)
		f.values = append(f.values, body.Values...)
		w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && path == prefix+"/values:batchUpdate":
		var body struct {
			Data []valueRange `json:"data"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.updates = append(f.updates, body.Data...)
		w.Write([]byte(`{}`))
	default:
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "unexpected "+r.Method+" "+path)
	}
}

func writeAPIError(w http.ResponseWriter, code int, status, msg string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg, "status": status},
	})
}

func newTestConnector(t *testing.T, f *fakeSheets, tab string) *Connector {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewConnector(SheetsConfig{
		Locator:    "https://docs.google.com/spreadsheets/d/" + fakeKey + "/edit#gid=0",
		Tab:        tab,
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	}, nil)
}

func TestSheets_ReadTable(t *testing.T) {
	s := NewSheets(newTestConnector(t, newFakeSheets(), ""))

	table, err := s.ReadTable(context.Background())
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(table.Headers) != 3 || table.Headers[1] != "Target Amount" {
		t.Errorf("unexpected headers %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][1] != "1000" || table.Rows[1][1] != "2,000" {
		t.Errorf("unexpected cell values %v", table.Rows)
	}
}

func TestSheets_EmptySheet(t *testing.T) {
	f := newFakeSheets()
	f.values = nil
	s := NewSheets(newTestConnector(t, f, ""))

	table, err := s.ReadTable(context.Background())
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(table.Headers) != 0 || len(table.Rows) != 0 {
		t.Errorf("expected empty table, got %+v", table)
	}
}

func TestConnector_TabSelection(t *testing.T) {
	tests := []struct {
		name    string
		tab     string
		want    string
		wantKey string
	}{
		{"first tab by index", "", "Deals", ""},
		{"named tab", "Archive", "Archive", ""},
		{"unknown tab", "Missing", "", "GOOGLE_SHEET_TAB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newTestConnector(t, newFakeSheets(), tt.tab)
			c, err := conn.connect(context.Background())
			if tt.wantKey != "" {
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) || cfgErr.Key != tt.wantKey {
					t.Fatalf("expected ConfigError for %s, got %v", tt.wantKey, err)
				}
				if !strings.Contains(cfgErr.Hint, "Deals") {
					t.Errorf("hint should list available tabs, got %q", cfgErr.Hint)
				}
				return
			}
			if err != nil {
				t.Fatalf("connect failed: %v", err)
			}
			if c.tab != tt.want {
				t.Errorf("expected tab %q, got %q", tt.want, c.tab)
			}
		})
	}
}

func TestConnector_ConcurrentConnectConverges(t *testing.T) {
	f := newFakeSheets()
	conn := newTestConnector(t, f, "")
	s := NewSheets(conn)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ReadTable(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent read failed: %v", err)
	}

	if conn.dials != 1 {
		t.Errorf("expected a single connection, got %d", conn.dials)
	}
	if f.metaCalls != 1 {
		t.Errorf("expected one metadata lookup, got %d", f.metaCalls)
	}
}

func TestConnector_FailureNotCached(t *testing.T) {
	f := newFakeSheets()
	f.failMeta = 1
	s := NewSheets(newTestConnector(t, f, ""))

	if _, err := s.ReadTable(context.Background()); err == nil {
		t.Fatal("expected first read to fail")
	}
	if _, err := s.ReadTable(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestConnector_Unauthorized(t *testing.T) {
	f := newFakeSheets()
	f.status = http.StatusForbidden
	s := NewSheets(newTestConnector(t, f, ""))

	_, err := s.ReadTable(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != "PERMISSION_DENIED" {
		t.Errorf("expected API status to be decoded, got %v", err)
	}
}

func TestConnector_MissingConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SheetsConfig
		wantKey string
	}{
		{"no locator", SheetsConfig{}, "GOOGLE_SHEET_URL"},
		{"no credentials", SheetsConfig{Locator: fakeKey}, "GCP_SERVICE_ACCOUNT"},
		{"bad credentials", SheetsConfig{Locator: fakeKey, CredentialsJSON: []byte("not json")}, "GCP_SERVICE_ACCOUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSheets(NewConnector(tt.cfg, nil)).ReadTable(context.Background())
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Key != tt.wantKey {
				t.Fatalf("expected ConfigError for %s, got %v", tt.wantKey, err)
			}
		})
	}
}

func TestSheets_AppendAndUpdate(t *testing.T) {
	f := newFakeSheets()
	s := NewSheets(newTestConnector(t, f, "Deals"))
	ctx := context.Background()

	headers, err := s.Headers(ctx)
	if err != nil || len(headers) != 3 {
		t.Fatalf("Headers: %v %v", headers, err)
	}

	if err := s.AppendRows(ctx, [][]string{{"Hydro", "500", "Open"}}); err != nil {
		t.Fatalf("AppendRows failed: %v", err)
	}
	if len(f.appended) != 1 || f.appended[0][0] != "Hydro" {
		t.Errorf("unexpected appended rows %v", f.appended)
	}

	if err := s.UpdateCells(ctx, 3, map[int]string{2: "Due Diligence", 0: "Wind II"}); err != nil {
		t.Fatalf("UpdateCells failed: %v", err)
	}
	if len(f.updates) != 2 {
		t.Fatalf("expected one batch with 2 ranges, got %v", f.updates)
	}
	if f.updates[0].Range != "'Deals'!A3" || f.updates[1].Range != "'Deals'!C3" {
		t.Errorf("unexpected ranges %q %q", f.updates[0].Range, f.updates[1].Range)
	}
	if f.updates[1].Values[0][0] != "Due Diligence" {
		t.Errorf("unexpected value %v", f.updates[1].Values)
	}
}

func TestSheets_Describe(t *testing.T) {
	s := NewSheets(newTestConnector(t, newFakeSheets(), ""))
	info, err := s.Describe(context.Background())
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Title != "Deal Flow" || info.Tab != "Deals" || info.RowCount != 1000 || info.ColumnCount != 26 {
		t.Errorf("unexpected info %+v", info)
	}
	if !strings.Contains(info.URL, fakeKey) {
		t.Errorf("expected url to reference the sheet, got %q", info.URL)
	}
}

func TestEscapeFormula(t *testing.T) {
	tests := map[string]string{
		"=IMPORTXML(A1)": "'=IMPORTXML(A1)",
		" +1":            "' +1",
		"@user":          "'@user",
		"Solar":          "Solar",
		"2025-08-15":     "2025-08-15",
		"":               "",
	}
	for in, want := range tests {
		if got := escapeFormula(in); got != want {
			t.Errorf("escapeFormula(%q) = %q, want %q", in, got, want)
		}
	}
}
