package catalog

import (
	"droscher.com/WineLovers/pkg/model"
)

// Snapshot is a complete, immutable copy of the catalog. Ids are assigned by the importer and
// are stable for the lifetime of the snapshot.
type Snapshot struct {
	Types     []*model.WineType
	Acidities []*model.WineAcidity
	Countries []*model.Country
	Regions   []*model.Region
	Wineries  []*model.Winery
	Grapes    []*model.Grape
	Dishes    []*model.Dish
	Wines     []*model.Wine
	Ratings   []*model.Rating
}

// Counts is used for logging import progress.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"types":     len(s.Types),
		"acidities": len(s.Acidities),
		"countries": len(s.Countries),
		"regions":   len(s.Regions),
		"wineries":  len(s.Wineries),
		"grapes":    len(s.Grapes),
		"dishes":    len(s.Dishes),
		"wines":     len(s.Wines),
		"ratings":   len(s.Ratings),
	}
}
