package repository

import (
	"strings"

	"gorm.io/gorm"

	"droscher.com/WineLovers/pkg/search"
)

var fieldColumns = map[search.Field]string{ //nolint:gochecknoglobals // read only
	search.FieldType:    "wines.type_id",
	search.FieldCountry: "wines.country_id",
	search.FieldAcidity: "wines.acidity_id",
	search.FieldWinery:  "wines.winery_id",
	search.FieldGrapes:  "wines.grape_ids",
	search.FieldABV:     "wines.abv",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`) //nolint:gochecknoglobals // read only

// applyPredicates adds one parameterized WHERE condition per predicate.
func applyPredicates(query *gorm.DB, predicates []search.Predicate) *gorm.DB {
	for _, predicate := range predicates {
		switch predicate := predicate.(type) {
		case search.Equals:
			query = query.Where(fieldColumns[predicate.Field]+" = ?", predicate.Value)
		case search.In:
			if len(predicate.Values) == 0 {
				query = query.Where("FALSE")

				continue
			}

			query = query.Where(fieldColumns[predicate.Field]+" IN ?", predicate.Values)
		case search.Contains:
			query = query.Where("? = ANY("+fieldColumns[predicate.Field]+")", predicate.Value)
		case search.Between:
			if predicate.Min != nil {
				query = query.Where(fieldColumns[predicate.Field]+" >= ?", *predicate.Min)
			}

			if predicate.Max != nil {
				query = query.Where(fieldColumns[predicate.Field]+" <= ?", *predicate.Max)
			}
		case search.TextMatch:
			condition, args := admission(predicate)
			query = query.Where(condition, args...)
		}
	}

	return query
}

// exactHit is the SQL form of TextMatch.ExactHit.
func exactHit(match search.TextMatch) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	for _, token := range match.Tokens {
		pattern := "%" + likeEscaper.Replace(token) + "%"

		conditions = append(conditions, "wines.name ILIKE ?")
		args = append(args, pattern)

		if !match.NameOnly {
			conditions = append(conditions, "wines.description ILIKE ?")
			args = append(args, pattern)
		}
	}

	if len(conditions) == 0 {
		return "FALSE", nil
	}

	return "(" + strings.Join(conditions, " OR ") + ")", args
}

// admission is the SQL form of TextMatch.Admits.
func admission(match search.TextMatch) (string, []any) {
	hit, args := exactHit(match)
	conditions := []string{hit, "similarity(wines.name, ?) > ?"}
	args = append(args, match.Query, match.NameThreshold)

	if !match.NameOnly {
		conditions = append(conditions, "similarity(wines.description, ?) > ?")
		args = append(args, match.Query, match.DescriptionThreshold)
	}

	return "(" + strings.Join(conditions, " OR ") + ")", args
}
