package repository

import (
	"context"

	"droscher.com/WineLovers/pkg/model"
)

var trigramIndexes = []string{ //nolint:gochecknoglobals // read only
	"CREATE INDEX IF NOT EXISTS idx_wines_name_trgm ON wines USING gin (name gin_trgm_ops)",
	"CREATE INDEX IF NOT EXISTS idx_wines_description_trgm ON wines USING gin (description gin_trgm_ops)",
	"CREATE INDEX IF NOT EXISTS idx_wines_grape_ids ON wines USING gin (grape_ids)",
}

// Migrate creates the catalog schema together with the pg_trgm extension and the indexes the
// text and grape predicates use.
func (r *Repository) Migrate(ctx context.Context) error {
	db := r.DB.WithContext(ctx)

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		return err
	}

	err := db.AutoMigrate(
		&model.WineType{}, &model.WineAcidity{},
		&model.Country{}, &model.Region{}, &model.Winery{},
		&model.Grape{}, &model.Dish{},
		&model.Wine{}, &model.Rating{})
	if err != nil {
		return err
	}

	for _, index := range trigramIndexes {
		if err := db.Exec(index).Error; err != nil {
			return err
		}
	}

	return nil
}
