package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/david/deal-portal/internal/config"
	"github.com/david/deal-portal/internal/db"
	"github.com/david/deal-portal/internal/ingest"
	"github.com/david/deal-portal/internal/logger"
	"github.com/david/deal-portal/internal/models"
)

func main() {
	title := flag.String("title", "", "Deal title (required)")
	description := flag.String("description", "", "Deal description")
	industry := flag.String("industry", "", "Industry")
	target := flag.String("target", "", "Target amount, e.g. 1500000 or $1,500,000")
	raised := flag.String("raised", "", "Amount raised so far")
	status := flag.String("status", string(models.DefaultAppendStatus), "Open, Due Diligence or Closed")
	minInvestment := flag.String("min-investment", "", "Minimum investment")
	dueDate := flag.String("due", "", "Due date, e.g. 2025-03-31")
	docs := flag.String("docs", "", "Documents link")
	image := flag.String("image", "", "Image URL")
	flag.Parse()

	if *title == "" {
		log.Fatal("Please provide a deal title using -title flag")
	}

	// Values go through the same normalization as rows read back from the sheet.
	values := map[ingest.Field]string{
		ingest.FieldTitle:         *title,
		ingest.FieldDescription:   *description,
		ingest.FieldIndustry:      *industry,
		ingest.FieldTargetAmount:  *target,
		ingest.FieldRaisedAmount:  *raised,
		ingest.FieldStatus:        *status,
		ingest.FieldMinInvestment: *minInvestment,
		ingest.FieldDueDate:       *dueDate,
		ingest.FieldDocumentsLink: *docs,
		ingest.FieldImageURL:      *image,
	}
	raw := make(ingest.RawRow, len(values))
	for f, v := range values {
		raw[ingest.DisplayHeader(f)] = v
	}
	deal, ok := ingest.FromRaw(raw, 0)
	if !ok {
		log.Fatal("Deal title must not be blank")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	repo, err := db.Connect(cfg, logger.New(os.Stderr, level))
	if err != nil {
		log.Fatal(err)
	}

	if err := repo.Append(context.Background(), deal); err != nil {
		log.Fatalf("Append failed: %v", err)
	}
	log.Printf("Added deal %q to %s", deal.Title, repo.SourceName())
}
