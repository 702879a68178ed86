package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
	"go.openly.dev/pointy"

	"droscher.com/WineLovers/pkg/search"
)

type ReferenceTestSuite struct {
	RepositorySuite
}

func TestReferenceTestSuite(t *testing.T) {
	suite.Run(t, new(ReferenceTestSuite))
}

func (suite *ReferenceTestSuite) TestOptions_ListsFullTable() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT countries.id, countries.name, countries.code FROM "countries" WHERE "countries"."deleted_at" IS NULL ORDER BY countries.name, countries.id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code"}).
			AddRow(uint(1), "France", "FR").AddRow(uint(2), "Italy", "IT"))

	options, err := suite.repository.Options(context.Background(), search.FacetCountry, search.Scope{All: true})
	suite.Require().NoError(err)
	suite.Equal([]search.Option{{ID: 1, Name: "France", Code: "FR"}, {ID: 2, Name: "Italy", Code: "IT"}}, options)
}

func (suite *ReferenceTestSuite) TestOptions_RestrictsRegionsToIDsAndCountry() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT regions.id, regions.name, regions.country_id AS parent_id FROM "regions" WHERE regions.id IN ($1,$2) AND regions.country_id = $3 AND "regions"."deleted_at" IS NULL ORDER BY regions.name, regions.id`)).
		WithArgs(uint(1001), uint(1002), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "parent_id"}).AddRow(uint(1001), "Bordeaux", uint(1)))

	options, err := suite.repository.Options(context.Background(), search.FacetRegion,
		search.Scope{IDs: []uint{1001, 1002}, CountryID: pointy.Uint(1)})
	suite.Require().NoError(err)
	suite.Equal([]search.Option{{ID: 1001, Name: "Bordeaux", ParentID: 1}}, options)
}

func (suite *ReferenceTestSuite) TestOptions_JoinsRegionsForWineryCountry() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT wineries.id, wineries.name, wineries.region_id AS parent_id FROM "wineries" INNER JOIN regions ON regions.id = wineries.region_id WHERE regions.country_id = $1 AND "wineries"."deleted_at" IS NULL ORDER BY wineries.name, wineries.id`)).
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "parent_id"}).AddRow(uint(5001), "Chateau Alpha", uint(1001)))

	options, err := suite.repository.Options(context.Background(), search.FacetWinery, search.Scope{All: true, CountryID: pointy.Uint(1)})
	suite.Require().NoError(err)
	suite.Equal([]search.Option{{ID: 5001, Name: "Chateau Alpha", ParentID: 1001}}, options)
}

func (suite *ReferenceTestSuite) TestOptions_EmptyScopeSkipsQuery() {
	options, err := suite.repository.Options(context.Background(), search.FacetGrape, search.Scope{})
	suite.Require().NoError(err)
	suite.NotNil(options)
	suite.Empty(options)
}

func (suite *ReferenceTestSuite) TestOptions_RejectsRangeFacet() {
	_, err := suite.repository.Options(context.Background(), search.FacetVintage, search.Scope{All: true})
	suite.Require().ErrorIs(err, search.ErrUnknownFacet)
}

func (suite *ReferenceTestSuite) TestWineryIDsInRegion() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "wineries" WHERE region_id = $1 AND "wineries"."deleted_at" IS NULL ORDER BY id`)).
		WithArgs(uint(1001)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint(5001)).AddRow(uint(5003)))

	ids, err := suite.repository.WineryIDsInRegion(context.Background(), 1001)
	suite.Require().NoError(err)
	suite.Equal([]uint{5001, 5003}, ids)
}

func (suite *ReferenceTestSuite) TestRegionIDsForWineries() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT "region_id" FROM "wineries" WHERE id IN ($1,$2) AND "wineries"."deleted_at" IS NULL ORDER BY region_id`)).
		WithArgs(uint(5001), uint(6001)).
		WillReturnRows(sqlmock.NewRows([]string{"region_id"}).AddRow(uint(1001)).AddRow(uint(2001)))

	ids, err := suite.repository.RegionIDsForWineries(context.Background(), []uint{5001, 6001})
	suite.Require().NoError(err)
	suite.Equal([]uint{1001, 2001}, ids)

	ids, err = suite.repository.RegionIDsForWineries(context.Background(), nil)
	suite.Require().NoError(err)
	suite.Empty(ids)
}

func (suite *ReferenceTestSuite) TestGrapesByIDs() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "grapes" WHERE id IN ($1,$2) AND "grapes"."deleted_at" IS NULL ORDER BY id`)).
		WithArgs(uint(1), uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(uint(1), "Merlot").AddRow(uint(3), "Syrah"))

	grapes, err := suite.repository.GrapesByIDs(context.Background(), []uint{1, 3})
	suite.Require().NoError(err)
	suite.Require().Len(grapes, 2)
	suite.Equal("Syrah", grapes[1].Name)
}

func (suite *ReferenceTestSuite) TestDishesByIDs_WrapsErrors() {
	suite.mock.ExpectQuery(`^SELECT \* FROM "dishes"`).WillReturnError(context.DeadlineExceeded)

	dishes, err := suite.repository.DishesByIDs(context.Background(), []uint{1})
	suite.Require().ErrorIs(err, search.ErrStoreUnavailable)
	suite.Require().ErrorIs(err, context.DeadlineExceeded)
	suite.Nil(dishes)
}
