package db

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/david/deal-portal/internal/config"
	"github.com/david/deal-portal/internal/repository"
	"github.com/david/deal-portal/internal/source"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestConnect(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "deals.csv")
	if err := os.WriteFile(csvPath, []byte("Title,Target Amount\nA,100\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		kind    string
		locator string
		want    string
		wantErr bool
	}{
		{"csv", "csv", csvPath, "csv-file", false},
		{"published", "published", "https://docs.google.com/spreadsheets/d/e/key/pubhtml", "published-sheet", false},
		{"sheets without locator", "sheets", "", "google-sheets", false},
		{"unknown kind", "ftp", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Source.Kind = tt.kind
			cfg.Source.Locator = tt.locator

			repo, err := Connect(cfg, quiet)
			if tt.wantErr {
				var cfgErr *source.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected a config error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Connect failed: %v", err)
			}
			if repo.SourceName() != tt.want {
				t.Errorf("expected source %q, got %q", tt.want, repo.SourceName())
			}
		})
	}
}

func TestConnect_CSVFetch(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "deals.csv")
	if err := os.WriteFile(csvPath, []byte("Title,Target Amount\nA,100\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.Source.Kind = source.KindCSV
	cfg.Source.Locator = csvPath

	repo, err := Connect(cfg, quiet)
	if err != nil {
		t.Fatal(err)
	}
	deals, err := repo.Fetch(context.Background())
	if err != nil || len(deals) != 1 || deals[0].TargetAmount != 100 {
		t.Errorf("unexpected fetch %v %v", deals, err)
	}
}

func TestConnect_SheetsMissingLocatorSurfacesOnFetch(t *testing.T) {
	cfg := &config.Config{}
	cfg.Source.Kind = source.KindSheets

	repo, err := Connect(cfg, quiet)
	if err != nil {
		t.Fatal(err)
	}
	_, err = repo.Fetch(context.Background())
	var cfgErr *repository.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestConnect_UnreadableCredentials(t *testing.T) {
	cfg := &config.Config{}
	cfg.Source.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	if _, err := Connect(cfg, quiet); err == nil {
		t.Error("expected an error for an unreadable credentials file")
	}
}
