package search

import (
	"context"
	"slices"

	"droscher.com/WineLovers/pkg/model"
)

// Hydrator fills the grapes and paired dishes of a page of wines with one lookup per table,
// whatever the page size.
type Hydrator struct {
	reference ReferenceStore
}

func NewHydrator(reference ReferenceStore) *Hydrator {
	return &Hydrator{reference: reference}
}

// Hydrate sets Grapes and PairedDishes on every wine, in the order of the wine's id arrays.
// Ids missing from the reference tables are skipped.
func (h *Hydrator) Hydrate(ctx context.Context, wines []*model.Wine) error {
	if len(wines) == 0 {
		return nil
	}

	var grapeIDs, dishIDs []uint

	for _, wine := range wines {
		grapeIDs = appendIDs(grapeIDs, wine.GrapeIDs)
		dishIDs = appendIDs(dishIDs, wine.PairWithIDs)
	}

	grapesByID := make(map[uint]model.Grape)

	if ids := uniqueIDs(grapeIDs); len(ids) > 0 {
		grapes, err := h.reference.GrapesByIDs(ctx, ids)
		if err != nil {
			return err
		}

		for _, grape := range grapes {
			grapesByID[grape.ID] = *grape
		}
	}

	dishesByID := make(map[uint]model.Dish)

	if ids := uniqueIDs(dishIDs); len(ids) > 0 {
		dishes, err := h.reference.DishesByIDs(ctx, ids)
		if err != nil {
			return err
		}

		for _, dish := range dishes {
			dishesByID[dish.ID] = *dish
		}
	}

	for _, wine := range wines {
		wine.Grapes = make([]model.Grape, 0, len(wine.GrapeIDs))

		for _, id := range wine.GrapeIDs {
			if grape, ok := grapesByID[uint(id)]; ok {
				wine.Grapes = append(wine.Grapes, grape)
			}
		}

		wine.PairedDishes = make([]model.Dish, 0, len(wine.PairWithIDs))

		for _, id := range wine.PairWithIDs {
			if dish, ok := dishesByID[uint(id)]; ok {
				wine.PairedDishes = append(wine.PairedDishes, dish)
			}
		}
	}

	return nil
}

func appendIDs(ids []uint, values []int64) []uint {
	for _, value := range values {
		if value > 0 {
			ids = append(ids, uint(value))
		}
	}

	return ids
}

func uniqueIDs(ids []uint) []uint {
	slices.Sort(ids)

	return slices.Compact(ids)
}
