package loadtest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nandira/taksir/pkg/logger"
)

// Run executes the complete estimate load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting taksir load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("items", config.NumItems),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	client, err := newHTTPClient(config.Timeout)
	if err != nil {
		return err
	}

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate line items
	items, err := generateItems(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("item generation failed: %w", err)
	}

	// Step 3: Submit items concurrently
	if err := submitItems(ctx, client, config, items, stats); err != nil {
		return fmt.Errorf("item submission failed: %w", err)
	}

	// Step 4: Fetch the page back and count the ledger
	rows, err := countResultRows(ctx, client, config)
	if err != nil {
		return fmt.Errorf("page verification failed: %w", err)
	}
	stats.RowsOnPage = rows

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	printSummary(stats)

	if stats.ItemsSuccessful > 0 && stats.RowsOnPage < stats.ItemsSuccessful {
		return fmt.Errorf("page shows %d rows, expected at least %d",
			stats.RowsOnPage, stats.ItemsSuccessful)
	}
	return nil
}

func printSummary(stats *Stats) {
	log.Printf(`load test completed in %s:
   Generated:  %d
   Submitted:  %d
   Successful: %d
   Rejected:   %d
   Failed:     %d
   Page rows:  %d
`, stats.Duration.Round(time.Millisecond),
		stats.ItemsGenerated, stats.ItemsSubmitted, stats.ItemsSuccessful,
		stats.ItemsRejected, stats.ItemsFailed, stats.RowsOnPage)
}
