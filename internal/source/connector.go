package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultSheetsBaseURL = "https://sheets.googleapis.com"

var sheetsScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.readonly",
}

type SheetsConfig struct {
	Locator string // sheet URL or key
	Tab     string // empty selects the first tab

	// CredentialsJSON is a service-account key, passed through untouched to
	// the oauth2 library.
	CredentialsJSON []byte

	// BaseURL and HTTPClient override the API endpoint and the authorised
	// client; a non-nil HTTPClient skips credential handling.
	BaseURL    string
	HTTPClient *http.Client
}

// Connector owns the process-wide Sheets connection. It is built once at
// startup and handed to every source that needs it. The connection is made
// on first use; concurrent first callers share a single connection and a
// failed attempt is retried on the next call.
type Connector struct {
	cfg    SheetsConfig
	logger *slog.Logger

	mu   sync.Mutex
	conn *sheetConn
	// dials counts successful connections; tests use it to check convergence.
	dials int
}

type sheetConn struct {
	client        *http.Client
	baseURL       string
	spreadsheetID string
	tab           string
}

func NewConnector(cfg SheetsConfig, logger *slog.Logger) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSheetsBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{cfg: cfg, logger: logger}
}

func (c *Connector) connect(ctx context.Context) (*sheetConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	id, err := SpreadsheetID(c.cfg.Locator)
	if err != nil {
		return nil, err
	}

	client, err := c.httpClient()
	if err != nil {
		return nil, err
	}

	conn := &sheetConn{client: client, baseURL: c.cfg.BaseURL, spreadsheetID: id}
	meta, err := conn.metadata(ctx)
	if err != nil {
		return nil, err
	}
	tab, err := pickTab(meta, c.cfg.Tab)
	if err != nil {
		return nil, err
	}
	conn.tab = tab

	c.conn = conn
	c.dials++
	c.logger.Info("Connected to spreadsheet", "spreadsheet", meta.Properties.Title, "tab", tab)
	return conn, nil
}

func (c *Connector) httpClient() (*http.Client, error) {
	if c.cfg.HTTPClient != nil {
		return c.cfg.HTTPClient, nil
	}
	if len(c.cfg.CredentialsJSON) == 0 {
		return nil, &ConfigError{
			Key:  "GCP_SERVICE_ACCOUNT",
			Hint: "no Google credentials found; set GCP_SERVICE_ACCOUNT to the service-account JSON or GOOGLE_APPLICATION_CREDENTIALS to its path",
		}
	}
	// Token refreshes outlive any single request, so they get their own context.
	creds, err := google.CredentialsFromJSON(context.Background(), c.cfg.CredentialsJSON, sheetsScopes...)
	if err != nil {
		return nil, &ConfigError{Key: "GCP_SERVICE_ACCOUNT", Hint: fmt.Sprintf("invalid service-account JSON: %v", err)}
	}
	return oauth2.NewClient(context.Background(), creds.TokenSource), nil
}

type spreadsheetMeta struct {
	SpreadsheetURL string `json:"spreadsheetUrl"`
	Properties     struct {
		Title string `json:"title"`
	} `json:"properties"`
	Sheets []struct {
		Properties struct {
			SheetID        int    `json:"sheetId"`
			Title          string `json:"title"`
			Index          int    `json:"index"`
			GridProperties struct {
				RowCount    int `json:"rowCount"`
				ColumnCount int `json:"columnCount"`
			} `json:"gridProperties"`
		} `json:"properties"`
	} `json:"sheets"`
}

func pickTab(meta *spreadsheetMeta, want string) (string, error) {
	if len(meta.Sheets) == 0 {
		return "", &ConfigError{Key: "GOOGLE_SHEET_URL", Hint: "spreadsheet has no tabs"}
	}
	if want == "" {
		first := meta.Sheets[0].Properties
		for _, s := range meta.Sheets[1:] {
			if s.Properties.Index < first.Index {
				first = s.Properties
			}
		}
		return first.Title, nil
	}
	var titles []string
	for _, s := range meta.Sheets {
		if s.Properties.Title == want {
			return want, nil
		}
		titles = append(titles, s.Properties.Title)
	}
	return "", &ConfigError{
		Key:  "GOOGLE_SHEET_TAB",
		Hint: fmt.Sprintf("tab %q not found; available tabs: %s", want, strings.Join(titles, ", ")),
	}
}

func (c *sheetConn) spreadsheetURL() string {
	return c.baseURL + "/v4/spreadsheets/" + url.PathEscape(c.spreadsheetID)
}

func (c *sheetConn) metadata(ctx context.Context) (*spreadsheetMeta, error) {
	q := url.Values{}
	q.Set("fields", "spreadsheetUrl,properties.title,sheets.properties")
	var meta spreadsheetMeta
	if err := c.do(ctx, http.MethodGet, c.spreadsheetURL()+"?"+q.Encode(), nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *sheetConn) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheets request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Error.Message
		if payload.Error.Status != "" {
			apiErr.Status = payload.Error.Status
		}
	}
	return apiErr
}
