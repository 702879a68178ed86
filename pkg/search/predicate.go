package search

import (
	"strings"
)

// Field is a wine attribute a store can filter or project on.
type Field int

const (
	FieldType Field = iota
	FieldCountry
	FieldAcidity
	FieldWinery
	FieldGrapes
	FieldABV
)

// Predicate is a condition a store evaluates against wines. Stores translate predicates into
// their own query language and must never splice predicate values into query text.
type Predicate interface {
	predicate()
}

type Equals struct {
	Field Field
	Value uint
}

// In matches wines whose field holds one of Values. An empty Values matches nothing.
type In struct {
	Field  Field
	Values []uint
}

type Between struct {
	Field Field
	Min   *float64
	Max   *float64
}

// Contains matches wines whose array field holds Value.
type Contains struct {
	Field Field
	Value uint
}

func (Equals) predicate()    {}
func (In) predicate()        {}
func (Between) predicate()   {}
func (Contains) predicate()  {}
func (TextMatch) predicate() {}

var tokenSeparators = " -_," //nolint:gochecknoglobals // read only

// Tokenize splits a free-text query on spaces, hyphens, underscores and commas, dropping empty
// tokens.
func Tokenize(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return strings.ContainsRune(tokenSeparators, r)
	})
}

// TextMatch admits a wine when any query token is a case-insensitive substring of its name or
// description, or when the fuzzy similarity of the whole query to the name or the description
// exceeds the respective threshold. NameOnly restricts both tests to the name.
type TextMatch struct {
	Query                string
	Tokens               []string
	NameThreshold        float64
	DescriptionThreshold float64
	NameOnly             bool
}

func NewTextMatch(query string, nameThreshold, descriptionThreshold float64) TextMatch {
	return TextMatch{
		Query:                query,
		Tokens:               Tokenize(query),
		NameThreshold:        nameThreshold,
		DescriptionThreshold: descriptionThreshold,
	}
}

func (t TextMatch) ExactHit(name, description string) bool {
	name = strings.ToLower(name)
	description = strings.ToLower(description)

	for _, token := range t.Tokens {
		token = strings.ToLower(token)

		if strings.Contains(name, token) {
			return true
		}

		if !t.NameOnly && strings.Contains(description, token) {
			return true
		}
	}

	return false
}

func (t TextMatch) Admits(exactHit bool, nameSimilarity, descriptionSimilarity float64) bool {
	if exactHit || nameSimilarity > t.NameThreshold {
		return true
	}

	return !t.NameOnly && descriptionSimilarity > t.DescriptionThreshold
}

// Score is 1 for an exact hit and the name similarity otherwise, so a literal substring match
// always outranks a fuzzy one.
func (t TextMatch) Score(exactHit bool, nameSimilarity float64) float64 {
	if exactHit {
		return 1.0
	}

	return nameSimilarity
}
