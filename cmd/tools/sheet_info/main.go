package main

import (
	"context"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/deal-portal/internal/config"
	"github.com/david/deal-portal/internal/db"
	"github.com/david/deal-portal/internal/logger"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	repo, err := db.Connect(cfg, logger.New(os.Stderr, level))
	if err != nil {
		log.Fatal(err)
	}

	info, err := repo.Info(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendRows([]table.Row{
		{"Source", repo.SourceName()},
		{"Title", info.Title},
		{"Tab", info.Tab},
		{"Rows", info.RowCount},
		{"Columns", info.ColumnCount},
		{"URL", info.URL},
	})
	t.Render()
}
