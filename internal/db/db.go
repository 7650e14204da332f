// Package db opens the deal repository described by the loaded config.
package db

import (
	"fmt"
	"log/slog"

	"github.com/david/deal-portal/internal/config"
	"github.com/david/deal-portal/internal/repository"
	"github.com/david/deal-portal/internal/source"
)

// Connect builds the configured source and wraps it in a repository. No
// network call is made; a missing locator or credentials surface on the
// first fetch.
func Connect(cfg *config.Config, logger *slog.Logger) (*repository.Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var conn *source.Connector
	if cfg.Source.Kind == "" || cfg.Source.Kind == source.KindSheets {
		creds, err := cfg.Credentials()
		if err != nil {
			return nil, fmt.Errorf("error reading credentials: %w", err)
		}
		conn = source.NewConnector(source.SheetsConfig{
			Locator:         cfg.Source.Locator,
			Tab:             cfg.Source.Tab,
			CredentialsJSON: creds,
			BaseURL:         cfg.Source.BaseURL,
		}, logger)
	}

	src, err := source.Open(source.Options{
		Kind:    cfg.Source.Kind,
		Locator: cfg.Source.Locator,
		Timeout: cfg.Source.Timeout,
	}, conn)
	if err != nil {
		return nil, fmt.Errorf("error opening deal source: %w", err)
	}

	logger.Info("Deal source configured", "source", src.Name(), "kind", cfg.Source.Kind)
	return repository.New(src,
		repository.WithTimeout(cfg.Source.Timeout),
		repository.WithLogger(logger),
	), nil
}
