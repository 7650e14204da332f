package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/deal-portal/internal/config"
	"github.com/david/deal-portal/internal/db"
	"github.com/david/deal-portal/internal/logger"
	"github.com/david/deal-portal/internal/metrics"
	"github.com/david/deal-portal/internal/query"
	"github.com/david/deal-portal/internal/view"
)

func main() {
	search := flag.String("q", "", "Search title and description")
	industry := flag.String("industry", query.All, "Industry to show")
	status := flag.String("status", query.All, "Status to show")
	minAmount := flag.Float64("min", math.Inf(-1), "Minimum target amount")
	maxAmount := flag.Float64("max", math.Inf(1), "Maximum target amount")
	flag.Parse()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	repo, err := db.Connect(cfg, logger.New(os.Stderr, level))
	if err != nil {
		log.Fatal(err)
	}

	snap, err := repo.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	p := query.Predicates{Search: *search, Industry: *industry, Status: *status}
	if !math.IsInf(*minAmount, -1) || !math.IsInf(*maxAmount, 1) {
		if *minAmount > *maxAmount {
			log.Fatal("-min must not exceed -max")
		}
		p.Amount = &query.AmountRange{Low: *minAmount, High: *maxAmount}
	}
	deals := query.Filter(snap.Deals, p)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Row", "Title", "Industry", "Status", "Target", "Raised", "Progress", "Due"})
	for _, d := range deals {
		t.AppendRow(table.Row{
			d.Row, d.Title, d.Industry, d.Status,
			view.FormatCurrency(d.TargetAmount), view.FormatCurrency(d.RaisedAmount),
			fmt.Sprintf("%.1f%%", d.Progress()), view.DueDateDisplay(d.DueDate),
		})
	}

	s := metrics.Summarize(deals)
	t.AppendFooter(table.Row{
		"", fmt.Sprintf("%d deals (%d open)", s.Count, s.OpenCount), "", "",
		view.FormatCurrency(s.TotalTarget), view.FormatCurrency(s.TotalRaised),
		fmt.Sprintf("%.1f%%", s.AverageProgressPct), "",
	})
	t.Render()

	if snap.Dropped > 0 {
		log.Printf("%d rows without a title were skipped", snap.Dropped)
	}
}
