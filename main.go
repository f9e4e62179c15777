package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"avito-parser/classifier"
	"avito-parser/config"
	"avito-parser/metrics"
	"avito-parser/models"
	"avito-parser/scraper/avito"
	"avito-parser/services"
	"avito-parser/storage"
	"avito-parser/utils"
)

func main() {
	skipParse := flag.Bool("skip-parse", false, "reuse the raw ads table instead of parsing HTML")
	flag.Parse()

	cfg := config.Load()
	logger := utils.NewLogger(utils.LoggerOptions{Level: cfg.LogLevel, File: cfg.LogFile}).
		With("run_id", uuid.NewString())
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *skipParse); err != nil {
		logger.Error("%v", err)
		logger.Sync()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger, skipParse bool) error {
	logger.Info("=== Avito parser starting ===")
	logger.Info("Config: pages: %d | batch size: %d | batch delay: %s | retries: %d",
		len(cfg.HTMLFiles), cfg.BatchSize, cfg.BatchDelay, cfg.MaxRetries)

	recorder := metrics.NewRecorder()

	// Stage 1: extraction
	ads, err := loadAds(ctx, cfg, logger, skipParse)
	if err != nil {
		return err
	}
	recorder.RecordAdsParsed(len(ads))
	if len(ads) == 0 {
		logger.Warn("No ads extracted, nothing to enrich. Exiting.")
		return nil
	}

	// Stage 2: enrichment
	if err := cfg.Validate(); err != nil {
		return err
	}
	client, err := classifier.New(classifier.Config{
		Endpoint: cfg.APIURL,
		APIKey:   cfg.APIKey,
		Source:   cfg.APISource,
		Timeout:  cfg.APITimeout,
	}, classifier.WithObserver(recorder))
	if err != nil {
		return err
	}

	enricher := services.NewEnricher(client, services.EnricherConfig{MaxRetries: cfg.MaxRetries}, logger.With("stage", "enrich"))
	enriched, stats, err := enricher.Enrich(ctx, ads, cfg.BatchSize, cfg.BatchDelay)
	recorder.RecordEnrichment(stats)
	if err != nil {
		if errors.Is(err, services.ErrAuthentication) {
			logger.Error("Check TOP505_API_KEY: the classification API rejected it")
		}
		return err
	}

	if err := storage.WriteEnriched(cfg.AdsEnrichedPath, enriched); err != nil {
		return err
	}
	logger.Info("Saved %d enriched ads to %s", len(enriched), cfg.AdsEnrichedPath)

	// Stage 3: coverage
	analyzer := services.NewCoverageAnalyzer(logger.With("stage", "coverage"))
	missing, err := analyzer.FindMissingCoverage(cfg.AdsEnrichedPath, cfg.CatalogPath, cfg.MissingCoveragePath)
	if err != nil {
		return err
	}
	report, err := analyzer.GenerateCoverageReport(cfg.AdsEnrichedPath, cfg.CatalogPath)
	if err != nil {
		return err
	}
	recorder.RecordCoverage(report)

	services.NewReportPrinter(os.Stdout).Print(stats, report, missing)

	if cfg.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("Failed to write metrics to %s: %v", cfg.MetricsTextfile, err)
		} else {
			logger.Info("Metrics written to %s", cfg.MetricsTextfile)
		}
	}

	logger.Info("=== Pipeline complete ===")
	logger.Info("  Raw ads         → %s", cfg.AdsRawPath)
	logger.Info("  Enriched ads    → %s", cfg.AdsEnrichedPath)
	logger.Info("  Missing coverage → %s", cfg.MissingCoveragePath)
	return nil
}

func loadAds(ctx context.Context, cfg *config.Config, logger *utils.Logger, skipParse bool) ([]*models.AdRecord, error) {
	if skipParse {
		ads, err := storage.ReadAds(cfg.AdsRawPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded %d ads from %s", len(ads), cfg.AdsRawPath)
		return ads, nil
	}

	var loader avito.Loader = avito.FileLoader{}
	if cfg.ExtractRender {
		loader = avito.NewBrowserLoader(cfg.ChromeBin, logger)
	}
	parser := avito.New(loader, logger.With("stage", "extract"))
	parser.Workers = cfg.ExtractWorkers

	ads := parser.ParseFiles(ctx, cfg.HTMLFiles)
	if err := storage.WriteAds(cfg.AdsRawPath, ads); err != nil {
		return nil, err
	}
	logger.Info("Saved %d raw ads to %s", len(ads), cfg.AdsRawPath)
	return ads, nil
}
