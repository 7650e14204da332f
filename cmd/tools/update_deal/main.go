package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/david/deal-portal/internal/config"
	"github.com/david/deal-portal/internal/db"
	"github.com/david/deal-portal/internal/logger"
)

func main() {
	row := flag.Int("row", 0, "Sheet row to update (the header is row 1)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -row N field=value [field=value...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *row < 2 {
		log.Fatal("Please provide a data row (2 or greater) using -row flag")
	}
	fields := make(map[string]string, flag.NArg())
	for _, arg := range flag.Args() {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			log.Fatalf("Invalid assignment %q, expected field=value", arg)
		}
		fields[strings.TrimSpace(name)] = value
	}
	if len(fields) == 0 {
		flag.Usage()
		os.Exit(1)
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

	if err := repo.Update(context.Background(), *row, fields); err != nil {
		log.Fatalf("Update failed: %v", err)
	}
	log.Printf("Updated %d field(s) on row %d", len(fields), *row)
}
