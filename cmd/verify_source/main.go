package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/david/deal-portal/internal/config"
	"github.com/david/deal-portal/internal/db"
	"github.com/david/deal-portal/internal/logger"
	"github.com/david/deal-portal/internal/metrics"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	repo, err := db.Connect(cfg, logger.New(os.Stderr, level))
	if err != nil {
		log.Fatalf("Unable to open deal source: %v", err)
	}

	snap, err := repo.Load(context.Background())
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}

	s := metrics.Summarize(snap.Deals)
	var withDocs, withDueDate int
	for _, d := range snap.Deals {
		if d.HasDocuments() {
			withDocs++
		}
		if !d.DueDate.IsZero() {
			withDueDate++
		}
	}

	fmt.Printf("Source: %s\n", repo.SourceName())
	fmt.Printf("Total deals: %d\n", s.Count)
	fmt.Printf("Skipped rows: %d\n", snap.Dropped)
	fmt.Printf("Open: %d\n", s.OpenCount)
	fmt.Printf("With Documents: %d\n", withDocs)
	fmt.Printf("With Due Date: %d\n", withDueDate)
	for _, b := range metrics.Breakdown(s.ByStatus) {
		status := b.Value
		if status == "" {
			status = "(blank)"
		}
		fmt.Printf("Status %s: %d\n", status, b.Count)
	}
}
