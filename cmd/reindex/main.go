package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
	"boxoffice/internal/search"
)

// indexer is the part of the search client the job uses
type indexer interface {
	IndexSale(ctx context.Context, sale *models.Sale) error
	DeleteAll(ctx context.Context) error
}

func main() {
	var keep bool
	pflag.BoolVar(&keep, "keep", false, "do not clear the index before reindexing")
	pflag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if !cfg.Elasticsearch.Enabled {
		logger.Fatal("Elasticsearch is disabled, set ELASTICSEARCH_ENABLED=true")
	}

	ctx := context.Background()

	slog.Info("Connecting to database")
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	sales := repository.NewSaleRepository(db)
	if err := reindex(ctx, sales, es, !keep); err != nil {
		logger.Fatal("Reindex failed", "error", err)
	}
}

func reindex(ctx context.Context, sales *repository.SaleRepository, index indexer, clear bool) error {
	start := time.Now()

	// Step 1: Clear existing documents
	if clear {
		slog.Info("Clearing sales index")
		if err := index.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	}

	// Step 2: Read every sale from PostgreSQL
	all, err := sales.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sales: %w", err)
	}
	slog.Info("Loaded sales from database", "count", len(all))

	// Step 3: Index one by one; a failed document does not stop the job
	failed := 0
	for i := range all {
		if err := index.IndexSale(ctx, &all[i]); err != nil {
			failed++
			slog.Error("Failed to index sale", "sale_id", all[i].ID, "error", err)
		}
	}

	elapsed := time.Since(start)
	slog.Info("Reindex completed",
		"sales", len(all),
		"failed", failed,
		"duration", elapsed.String())

	if failed > 0 {
		return fmt.Errorf("%d of %d sales were not indexed", failed, len(all))
	}
	return nil
}
