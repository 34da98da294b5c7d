package loadtest

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/nandira/taksir/pkg/logger"
)

// Sample vocabularies for generated submissions. These deliberately mix
// values the encoders know with unseen ones so the sentinel path gets
// exercised too.
var (
	cities = []string{
		"jakarta", "bandung", "surabaya", "semarang", "medan", "kota-baru",
	}
	locations = []string{
		"tengah kota", "pinggir kota", "pedesaan",
	}
	constructionTypes = []string{
		"gedung", "jalan", "jembatan", "irigasi",
	}
	workTypes = []string{
		"struktur", "arsitektur", "mekanikal", "elektrikal",
	}
	workDescriptions = []string{
		"kolom beton", "pasangan bata", "pengecatan dinding",
		"instalasi listrik", "galian tanah",
	}
	units = []string{"m", "m2", "m3", "unit", "titik"}
)

const (
	maxVolume    = 500.0
	maxUnitPrice = 2_000_000.0
)

// generateItems builds random line items for submission.
func generateItems(ctx context.Context, config *Config, stats *Stats) ([]LineItem, error) {
	logger.Get().Info(ctx, "generating line items", logger.Int("count", config.NumItems))

	items := make([]LineItem, 0, config.NumItems)
	for i := 0; i < config.NumItems; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("generation cancelled: %w", ctx.Err())
		default:
		}
		items = append(items, LineItem{
			City:             pick(cities),
			Location:         pick(locations),
			ConstructionType: pick(constructionTypes),
			WorkType:         pick(workTypes),
			WorkDescription:  pick(workDescriptions),
			Volume:           1 + rand.Float64()*maxVolume,
			Unit:             pick(units),
			UnitPrice:        1000 + rand.Float64()*maxUnitPrice,
		})
	}

	stats.ItemsGenerated = len(items)
	return items, nil
}

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}
