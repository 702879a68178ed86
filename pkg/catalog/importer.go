package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"droscher.com/WineLovers/pkg/model"
)

var (
	ErrMalformedFile = errors.New("malformed catalog file")
	ErrMalformedRow  = errors.New("malformed catalog row")
)

var wineColumns = []string{ //nolint:gochecknoglobals // read only
	"WineID", "WineName", "Type", "Elaborate", "Grapes", "Harmonize", "ABV", "Acidity", "Code", "Country",
	"RegionID", "RegionName", "WineryID", "WineryName", "Website", "Vintages",
}

var ratingColumns = []string{"RatingID", "UserID", "WineID", "Rating", "Date"} //nolint:gochecknoglobals // read only

var (
	quotedItem  = regexp.MustCompile(`'([^']*)'|"([^"]*)"`) //nolint:gochecknoglobals // compiled once
	vintageItem = regexp.MustCompile(`\d{4}|'N\.V\.'`)      //nolint:gochecknoglobals // compiled once
)

// Importer builds a Snapshot from X-Wines style CSV files. Rows that cannot be parsed are
// skipped; their errors are collected and returned alongside the snapshot.
type Importer struct {
	logger   *zap.Logger
	snapshot *Snapshot

	types     map[string]*model.WineType
	acidities map[string]*model.WineAcidity
	countries map[string]*model.Country
	regions   map[uint]*model.Region
	wineries  map[uint]*model.Winery
	grapes    map[string]*model.Grape
	dishes    map[string]*model.Dish
	wines     map[uint]*model.Wine
}

func NewImporter(logger *zap.Logger) *Importer {
	return &Importer{
		logger:    logger,
		snapshot:  &Snapshot{},
		types:     map[string]*model.WineType{},
		acidities: map[string]*model.WineAcidity{},
		countries: map[string]*model.Country{},
		regions:   map[uint]*model.Region{},
		wineries:  map[uint]*model.Winery{},
		grapes:    map[string]*model.Grape{},
		dishes:    map[string]*model.Dish{},
		wines:     map[uint]*model.Wine{},
	}
}

func (i *Importer) Snapshot() *Snapshot {
	return i.snapshot
}

// ImportWines reads the wines file. Types, acidities, grapes and dishes get sequential ids in
// the order they are first seen, countries are keyed by their code, and regions, wineries and
// wines keep the ids of the file.
func (i *Importer) ImportWines(reader io.Reader) error {
	var rowErrors error

	imported := 0

	err := readRows(reader, wineColumns, func(line int, row map[string]string) {
		if err := i.addWine(row); err != nil {
			rowErrors = multierr.Append(rowErrors, fmt.Errorf("line %d: %w", line, err))

			return
		}

		imported++
	})
	if err != nil {
		return err
	}

	i.logger.Info("Imported wines", zap.Int("wines", imported), zap.Int("failed", len(multierr.Errors(rowErrors))))

	return rowErrors
}

// ImportRatings reads the ratings file. Ratings of wines that were not imported are skipped.
func (i *Importer) ImportRatings(reader io.Reader) error {
	var rowErrors error

	imported, skipped := 0, 0

	err := readRows(reader, ratingColumns, func(line int, row map[string]string) {
		rating, err := parseRating(row)
		if err != nil {
			rowErrors = multierr.Append(rowErrors, fmt.Errorf("line %d: %w", line, err))

			return
		}

		if _, ok := i.wines[rating.WineID]; !ok {
			skipped++

			return
		}

		i.snapshot.Ratings = append(i.snapshot.Ratings, rating)
		imported++
	})
	if err != nil {
		return err
	}

	i.logger.Info("Imported ratings", zap.Int("ratings", imported), zap.Int("skipped", skipped),
		zap.Int("failed", len(multierr.Errors(rowErrors))))

	return rowErrors
}

func readRows(reader io.Reader, columns []string, handle func(line int, row map[string]string)) error {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		return fmt.Errorf("%w: reading header: %w", ErrMalformedFile, err)
	}

	index := make(map[string]int, len(header))
	for position, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = position
	}

	for _, column := range columns {
		if _, ok := index[column]; !ok {
			return fmt.Errorf("%w: missing column %q", ErrMalformedFile, column)
		}
	}

	for line := 2; ; line++ {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			var parseError *csv.ParseError
			if !errors.As(err, &parseError) {
				return err
			}

			handle(line, nil)

			continue
		}

		row := make(map[string]string, len(columns))

		for _, column := range columns {
			if position := index[column]; position < len(record) {
				row[column] = strings.TrimSpace(record[position])
			}
		}

		handle(line, row)
	}
}

//nolint:cyclop,funlen // one step per column
func (i *Importer) addWine(row map[string]string) error {
	if row == nil {
		return fmt.Errorf("%w: unreadable record", ErrMalformedRow)
	}

	wineID, err := parseID(row, "WineID")
	if err != nil {
		return err
	}

	if wineID == 0 {
		return fmt.Errorf("%w: WineID must be positive", ErrMalformedRow)
	}

	if _, ok := i.wines[wineID]; ok {
		return fmt.Errorf("%w: duplicate WineID %d", ErrMalformedRow, wineID)
	}

	if row["WineName"] == "" {
		return fmt.Errorf("%w: WineName is empty", ErrMalformedRow)
	}

	abv := 0.0
	if row["ABV"] != "" {
		if abv, err = strconv.ParseFloat(row["ABV"], 64); err != nil {
			return fmt.Errorf("%w: ABV %q: %w", ErrMalformedRow, row["ABV"], err)
		}
	}

	regionID, err := parseID(row, "RegionID")
	if err != nil {
		return err
	}

	wineryID, err := parseID(row, "WineryID")
	if err != nil {
		return err
	}

	if row["Code"] == "" {
		return fmt.Errorf("%w: country Code is empty", ErrMalformedRow)
	}

	country := i.country(row["Code"], row["Country"])
	wine := &model.Wine{
		Model:       gorm.Model{ID: wineID},
		Name:        row["WineName"],
		TypeID:      i.wineType(row["Type"]).ID,
		Description: row["Elaborate"],
		ABV:         abv,
		AcidityID:   i.acidity(row["Acidity"]).ID,
		CountryID:   country.ID,
		Vintages:    parseVintages(row["Vintages"]),
	}

	for _, name := range parseList(row["Grapes"]) {
		wine.GrapeIDs = append(wine.GrapeIDs, int64(i.grape(name).ID))
	}

	for _, name := range parseList(row["Harmonize"]) {
		wine.PairWithIDs = append(wine.PairWithIDs, int64(i.dish(name).ID))
	}

	if wineryID > 0 {
		if regionID == 0 {
			return fmt.Errorf("%w: winery %d has no region", ErrMalformedRow, wineryID)
		}

		region := i.region(regionID, row["RegionName"], country.ID)
		winery := i.winery(wineryID, row["WineryName"], row["Website"], region.ID)
		wine.WineryID = &winery.ID
	} else if regionID > 0 {
		i.region(regionID, row["RegionName"], country.ID)
	}

	i.wines[wineID] = wine
	i.snapshot.Wines = append(i.snapshot.Wines, wine)

	return nil
}

func parseRating(row map[string]string) (*model.Rating, error) {
	if row == nil {
		return nil, fmt.Errorf("%w: unreadable record", ErrMalformedRow)
	}

	ratingID, err := parseID(row, "RatingID")
	if err != nil {
		return nil, err
	}

	userID, err := parseID(row, "UserID")
	if err != nil {
		return nil, err
	}

	wineID, err := parseID(row, "WineID")
	if err != nil {
		return nil, err
	}

	value, err := strconv.ParseFloat(row["Rating"], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: Rating %q: %w", ErrMalformedRow, row["Rating"], err)
	}

	rating := &model.Rating{Model: gorm.Model{ID: ratingID}, UserID: userID, WineID: wineID, Value: value}

	if date, err := time.Parse(time.DateTime, row["Date"]); err == nil {
		rating.Date = date.UTC()
	} else if date, err := time.Parse(time.DateOnly, row["Date"]); err == nil {
		rating.Date = date.UTC()
	}

	return rating, nil
}

func parseID(row map[string]string, column string) (uint, error) {
	if row[column] == "" {
		return 0, nil
	}

	id, err := strconv.ParseUint(row[column], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrMalformedRow, column, row[column], err)
	}

	return uint(id), nil
}

// parseList reads a list written as ['a', 'b'] or ["a's", 'b'].
func parseList(value string) []string {
	var items []string

	for _, match := range quotedItem.FindAllStringSubmatch(value, -1) {
		item := strings.TrimSpace(match[1] + match[2])
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}

// parseVintages keeps four digit years and the non-vintage marker N.V.
func parseVintages(value string) []string {
	matches := vintageItem.FindAllString(value, -1)
	vintages := make([]string, 0, len(matches))

	for _, match := range matches {
		vintages = append(vintages, strings.Trim(match, "'"))
	}

	return vintages
}

func (i *Importer) wineType(name string) *model.WineType {
	if wineType, ok := i.types[name]; ok {
		return wineType
	}

	wineType := &model.WineType{Model: gorm.Model{ID: uint(len(i.types) + 1)}, Name: name}
	i.types[name] = wineType
	i.snapshot.Types = append(i.snapshot.Types, wineType)

	return wineType
}

// acidity keys on the level before any qualifier, so "High-ish" and "High" are one acidity.
func (i *Importer) acidity(name string) *model.WineAcidity {
	name, _, _ = strings.Cut(name, "-")

	if acidity, ok := i.acidities[name]; ok {
		return acidity
	}

	acidity := &model.WineAcidity{Model: gorm.Model{ID: uint(len(i.acidities) + 1)}, Name: name}
	i.acidities[name] = acidity
	i.snapshot.Acidities = append(i.snapshot.Acidities, acidity)

	return acidity
}

func (i *Importer) country(code, name string) *model.Country {
	if country, ok := i.countries[code]; ok {
		return country
	}

	country := &model.Country{Model: gorm.Model{ID: uint(len(i.countries) + 1)}, Code: code, Name: name}
	i.countries[code] = country
	i.snapshot.Countries = append(i.snapshot.Countries, country)

	return country
}

func (i *Importer) region(id uint, name string, countryID uint) *model.Region {
	if region, ok := i.regions[id]; ok {
		return region
	}

	region := &model.Region{Model: gorm.Model{ID: id}, Name: name, CountryID: countryID}
	i.regions[id] = region
	i.snapshot.Regions = append(i.snapshot.Regions, region)

	return region
}

func (i *Importer) winery(id uint, name, website string, regionID uint) *model.Winery {
	if winery, ok := i.wineries[id]; ok {
		return winery
	}

	winery := &model.Winery{Model: gorm.Model{ID: id}, Name: name, RegionID: regionID}
	if website != "" {
		winery.Website = &website
	}

	i.wineries[id] = winery
	i.snapshot.Wineries = append(i.snapshot.Wineries, winery)

	return winery
}

func (i *Importer) grape(name string) *model.Grape {
	if grape, ok := i.grapes[name]; ok {
		return grape
	}

	grape := &model.Grape{Model: gorm.Model{ID: uint(len(i.grapes) + 1)}, Name: name}
	i.grapes[name] = grape
	i.snapshot.Grapes = append(i.snapshot.Grapes, grape)

	return grape
}

func (i *Importer) dish(name string) *model.Dish {
	if dish, ok := i.dishes[name]; ok {
		return dish
	}

	dish := &model.Dish{Model: gorm.Model{ID: uint(len(i.dishes) + 1)}, Name: name}
	i.dishes[name] = dish
	i.snapshot.Dishes = append(i.snapshot.Dishes, dish)

	return dish
}
