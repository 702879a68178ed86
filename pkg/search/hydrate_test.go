package search_test

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"droscher.com/WineLovers/pkg/model"
	"droscher.com/WineLovers/pkg/search"
)

// referenceTables serves grapes and dishes from memory and counts lookups.
type referenceTables struct {
	search.ReferenceStore
	grapes       map[uint]*model.Grape
	dishes       map[uint]*model.Dish
	grapeLookups int
	dishLookups  int
	requested    []uint
	err          error
}

func (r *referenceTables) GrapesByIDs(_ context.Context, ids []uint) ([]*model.Grape, error) {
	r.grapeLookups++
	r.requested = ids

	var grapes []*model.Grape

	for _, id := range ids {
		if grape, ok := r.grapes[id]; ok {
			grapes = append(grapes, grape)
		}
	}

	return grapes, r.err
}

func (r *referenceTables) DishesByIDs(_ context.Context, ids []uint) ([]*model.Dish, error) {
	r.dishLookups++

	var dishes []*model.Dish

	for _, id := range ids {
		if dish, ok := r.dishes[id]; ok {
			dishes = append(dishes, dish)
		}
	}

	return dishes, nil
}

func newReferenceTables(grapeCount, dishCount int) *referenceTables {
	tables := &referenceTables{grapes: map[uint]*model.Grape{}, dishes: map[uint]*model.Dish{}}

	for id := 1; id <= grapeCount; id++ {
		tables.grapes[uint(id)] = &model.Grape{Model: gorm.Model{ID: uint(id)}}
	}

	for id := 1; id <= dishCount; id++ {
		tables.dishes[uint(id)] = &model.Dish{Model: gorm.Model{ID: uint(id)}}
	}

	return tables
}

func TestHydrate_BatchesLookups(t *testing.T) {
	tables := newReferenceTables(200, 10)
	wines := make([]*model.Wine, 50)

	for i := range wines {
		grapes := make(pq.Int64Array, 0, 4)
		for j := 0; j < 4; j++ {
			grapes = append(grapes, int64(i*4+j+1))
		}

		wines[i] = &model.Wine{GrapeIDs: grapes, PairWithIDs: pq.Int64Array{int64(i%10 + 1)}}
	}

	err := search.NewHydrator(tables).Hydrate(context.Background(), wines)
	require.NoError(t, err)

	assert.Equal(t, 1, tables.grapeLookups)
	assert.Equal(t, 1, tables.dishLookups)
	assert.Len(t, tables.requested, 200)

	for i, wine := range wines {
		require.Len(t, wine.Grapes, 4)
		assert.Equal(t, uint(i*4+1), wine.Grapes[0].ID)
		require.Len(t, wine.PairedDishes, 1)
		assert.Equal(t, uint(i%10+1), wine.PairedDishes[0].ID)
	}
}

func TestHydrate_KeepsOrderAndSkipsMissingIDs(t *testing.T) {
	tables := newReferenceTables(3, 0)
	wine := &model.Wine{GrapeIDs: pq.Int64Array{3, 99, 1, 3}}

	err := search.NewHydrator(tables).Hydrate(context.Background(), []*model.Wine{wine})
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 3, 99}, tables.requested)
	require.Len(t, wine.Grapes, 3)
	assert.Equal(t, uint(3), wine.Grapes[0].ID)
	assert.Equal(t, uint(1), wine.Grapes[1].ID)
	assert.NotNil(t, wine.PairedDishes)
	assert.Empty(t, wine.PairedDishes)
	assert.Zero(t, tables.dishLookups)
}

func TestHydrate_EmptyPageIsNoop(t *testing.T) {
	tables := newReferenceTables(1, 1)

	require.NoError(t, search.NewHydrator(tables).Hydrate(context.Background(), nil))
	assert.Zero(t, tables.grapeLookups)
	assert.Zero(t, tables.dishLookups)
}

func TestHydrate_PropagatesStoreErrors(t *testing.T) {
	tables := newReferenceTables(1, 1)
	tables.err = search.ErrStoreUnavailable

	err := search.NewHydrator(tables).Hydrate(context.Background(), []*model.Wine{{GrapeIDs: pq.Int64Array{1}}})
	require.ErrorIs(t, err, search.ErrStoreUnavailable)
}
