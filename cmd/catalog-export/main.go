package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hamrosewa/internal/backend"
	"hamrosewa/internal/catalog"
	"hamrosewa/internal/config"
	"hamrosewa/internal/export"
	"hamrosewa/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	var (
		configPath = flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "path to config file")
		query      = flag.String("q", "", "text search over title and descriptions")
		location   = flag.String("location", "", "location substring")
		category   = flag.String("category", "", "category id; a top-level id selects its subcategories")
		sortMode   = flag.String("sort", string(catalog.SortFeatured), "featured, popular, price-low, price-high, rating or name")
		outDir     = flag.String("out", "", "output directory (defaults to exports.path)")
	)
	flag.Parse()

	mode, err := catalog.ParseSortMode(*sortMode)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(baseLogger, "catalog-export")

	dir := cfg.Exports.Path
	if *outDir != "" {
		dir = *outDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second, logger)
	exporter := export.NewCatalogExporter(client, dir, logger)

	path, rows, err := exporter.Export(ctx, catalog.Filter{
		Query:      *query,
		Location:   *location,
		CategoryID: *category,
		Sort:       mode,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d services)\n", path, rows)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
