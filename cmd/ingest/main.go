package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/ingest"
	"github.com/bu-planner/backend/pkg/logger"
)

func main() {
	var (
		input      = flag.String("input", "data/registrar_export.csv", "registrar CSV export to convert")
		output     = flag.String("output", "data/processed_courses.json", "processed catalog JSON to write")
		bulletin   = flag.String("bulletin", "", "bulletin base URL for scraping missing descriptions (empty disables scraping)")
		timeoutSec = flag.Int("timeout", 10, "bulletin request timeout in seconds")
		logLevel   = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	if err := logger.Init(*logLevel, "console", "stdout"); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var scraper *ingest.BulletinScraper
	if *bulletin != "" {
		scraper = ingest.NewBulletinScraper(*bulletin, time.Duration(*timeoutSec)*time.Second)
	}

	f, err := os.Open(*input)
	if err != nil {
		logger.Fatal("Failed to open registrar export", zap.Error(err))
	}
	defer f.Close()

	converter := ingest.NewConverter(scraper)
	courses, err := converter.Convert(f)
	if err != nil {
		logger.Fatal("Conversion failed", zap.Error(err))
	}

	if err := ingest.WriteJSON(*output, courses); err != nil {
		logger.Fatal("Failed to write catalog", zap.Error(err))
	}

	logger.Info("Catalog written",
		zap.String("output", *output),
		zap.Int("courses", len(courses)))
}
