package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"droscher.com/WineLovers/pkg/catalog"
)

const seedBatchSize = 500

// SaveSnapshot upserts every table of the snapshot in one transaction, reference tables first.
// Existing rows with the same id are overwritten.
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *catalog.Snapshot) error {
	tables := []struct {
		name string
		rows any
		size int
	}{
		{"wine_types", snapshot.Types, len(snapshot.Types)},
		{"wine_acidities", snapshot.Acidities, len(snapshot.Acidities)},
		{"countries", snapshot.Countries, len(snapshot.Countries)},
		{"regions", snapshot.Regions, len(snapshot.Regions)},
		{"wineries", snapshot.Wineries, len(snapshot.Wineries)},
		{"grapes", snapshot.Grapes, len(snapshot.Grapes)},
		{"dishes", snapshot.Dishes, len(snapshot.Dishes)},
		{"wines", snapshot.Wines, len(snapshot.Wines)},
		{"ratings", snapshot.Ratings, len(snapshot.Ratings)},
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if table.size == 0 {
				continue
			}

			result := tx.Clauses(clause.OnConflict{UpdateAll: true}).
				Omit(clause.Associations).
				CreateInBatches(table.rows, seedBatchSize)
			if result.Error != nil {
				return result.Error
			}

			r.Logger.Info("Seeded table", zap.String("table", table.name), zap.Int("rows", table.size))
		}

		return nil
	})
	if err != nil {
		return r.storeError("save snapshot", err)
	}

	return nil
}
