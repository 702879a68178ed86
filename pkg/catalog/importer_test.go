package catalog_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"droscher.com/WineLovers/pkg/catalog"
)

const wineHeader = "WineID,WineName,Type,Elaborate,Grapes,Harmonize,ABV,Acidity,Code,Country,RegionID,RegionName,WineryID,WineryName,Website,Vintages\n"

type ImporterTestSuite struct {
	suite.Suite
	importer *catalog.Importer
}

func TestImporterTestSuite(t *testing.T) {
	suite.Run(t, new(ImporterTestSuite))
}

func (suite *ImporterTestSuite) SetupTest() {
	suite.importer = catalog.NewImporter(zaptest.NewLogger(suite.T()))
}

func (suite *ImporterTestSuite) importFixture(name string, load func(file *os.File) error) error {
	file, err := os.Open(name)
	suite.Require().NoError(err)

	defer file.Close()

	return load(file)
}

func (suite *ImporterTestSuite) TestImportWines_BuildsSnapshot() {
	err := suite.importFixture("testdata/wines.csv", func(file *os.File) error { return suite.importer.ImportWines(file) })
	suite.Require().NoError(err)

	snapshot := suite.importer.Snapshot()
	suite.Len(snapshot.Wines, 5)
	suite.Len(snapshot.Types, 2)
	suite.Len(snapshot.Acidities, 3)
	suite.Len(snapshot.Countries, 3)
	suite.Len(snapshot.Regions, 5)
	suite.Len(snapshot.Wineries, 4)
	suite.Len(snapshot.Grapes, 3)
	suite.Len(snapshot.Dishes, 6)

	wine := snapshot.Wines[0]
	suite.Equal(uint(100001), wine.ID)
	suite.Equal("Cabernet Reserve", wine.Name)
	suite.Equal("Varietal/100%", wine.Description)
	suite.InDelta(13.5, wine.ABV, 0.001)
	suite.Equal(uint(1), wine.TypeID)
	suite.Equal(uint(1), wine.AcidityID)
	suite.Equal(uint(1), wine.CountryID)
	suite.Equal([]int64{1}, []int64(wine.GrapeIDs))
	suite.Equal([]int64{1, 2}, []int64(wine.PairWithIDs))
	suite.Equal([]string{"2019", "2015", "N.V."}, []string(wine.Vintages))
	suite.Require().NotNil(wine.WineryID)
	suite.Equal(uint(5001), *wine.WineryID)

	suite.Equal([]int64{2, 1}, []int64(snapshot.Wines[1].GrapeIDs))
	suite.Nil(snapshot.Wines[4].WineryID)

	suite.Equal("FR", snapshot.Countries[0].Code)
	suite.Equal("France", snapshot.Countries[0].Name)
	suite.Equal("Cabernet Sauvignon", snapshot.Grapes[0].Name)

	suite.Equal(uint(5001), snapshot.Wineries[0].ID)
	suite.Equal(uint(1001), snapshot.Wineries[0].RegionID)
	suite.Require().NotNil(snapshot.Wineries[0].Website)
	suite.Equal("http://www.chateau-alpha.fr", *snapshot.Wineries[0].Website)
	suite.Nil(snapshot.Wineries[1].Website)
}

func (suite *ImporterTestSuite) TestImportWines_SkipsMalformedRows() {
	data := wineHeader +
		"1,Good Wine,Red,Varietal/100%,\"[\"\"Nuits d'Or\"\", 'Pinot Noir']\",[],12.0,High-ish,FR,France,10,Bourgogne,20,Domaine,,[2019]\n" +
		"2,Bad ABV,Red,Varietal/100%,[],[],strong,High,FR,France,10,Bourgogne,20,Domaine,,[2019]\n" +
		"3,,Red,Varietal/100%,[],[],12.0,High,FR,France,10,Bourgogne,20,Domaine,,[2019]\n" +
		"1,Duplicate,Red,Varietal/100%,[],[],12.0,High,FR,France,10,Bourgogne,20,Domaine,,[2019]\n"

	err := suite.importer.ImportWines(strings.NewReader(data))
	suite.Require().ErrorIs(err, catalog.ErrMalformedRow)
	suite.Len(multierr.Errors(err), 3)
	suite.Contains(err.Error(), "line 3")

	snapshot := suite.importer.Snapshot()
	suite.Require().Len(snapshot.Wines, 1)
	suite.Equal("Good Wine", snapshot.Wines[0].Name)
	suite.Require().Len(snapshot.Grapes, 2)
	suite.Equal("Nuits d'Or", snapshot.Grapes[0].Name)
	suite.Equal("Pinot Noir", snapshot.Grapes[1].Name)
	suite.Empty(snapshot.Wines[0].PairWithIDs)
	suite.Require().Len(snapshot.Acidities, 1)
	suite.Equal("High", snapshot.Acidities[0].Name)
}

func (suite *ImporterTestSuite) TestImportWines_RejectsMissingColumns() {
	err := suite.importer.ImportWines(strings.NewReader("WineID,WineName\n1,Wine\n"))
	suite.Require().ErrorIs(err, catalog.ErrMalformedFile)
	suite.NotErrorIs(err, catalog.ErrMalformedRow)
	suite.Empty(suite.importer.Snapshot().Wines)
}

func (suite *ImporterTestSuite) TestImportRatings_KeepsRatingsOfImportedWines() {
	err := suite.importFixture("testdata/wines.csv", func(file *os.File) error { return suite.importer.ImportWines(file) })
	suite.Require().NoError(err)

	err = suite.importFixture("testdata/ratings.csv", func(file *os.File) error { return suite.importer.ImportRatings(file) })
	suite.Require().ErrorIs(err, catalog.ErrMalformedRow)
	suite.Len(multierr.Errors(err), 1)

	ratings := suite.importer.Snapshot().Ratings
	suite.Require().Len(ratings, 4)
	suite.Equal(uint(100001), ratings[0].WineID)
	suite.Equal(uint(10), ratings[0].UserID)
	suite.InDelta(4.0, ratings[0].Value, 0.001)
	suite.Equal(2021, ratings[0].Date.Year())
	suite.Equal(2020, ratings[3].Date.Year())
}
