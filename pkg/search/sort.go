package search

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type SortOption int

const (
	SortRelevance SortOption = iota
	SortNameAsc
	SortNameDesc
	SortRatingDesc
	SortRatingAsc
	SortPriceAsc
	SortPriceDesc
)

var sortNames = map[SortOption]string{ //nolint:gochecknoglobals // read only
	SortRelevance:  "relevance",
	SortNameAsc:    "name_asc",
	SortNameDesc:   "name_desc",
	SortRatingDesc: "rating_desc",
	SortRatingAsc:  "rating_asc",
	SortPriceAsc:   "price_asc",
	SortPriceDesc:  "price_desc",
}

func (s SortOption) String() string {
	if name, ok := sortNames[s]; ok {
		return name
	}

	return fmt.Sprintf("SortOption(%d)", int(s))
}

// ParseSort accepts both "rating_desc" and "RatingDesc" spellings. An empty name is relevance.
func ParseSort(name string) (SortOption, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	if normalized == "" {
		return SortRelevance, nil
	}

	for option, optionName := range sortNames {
		if strings.ReplaceAll(optionName, "_", "") == normalized {
			return option, nil
		}
	}

	return SortRelevance, fmt.Errorf("%w: %q", ErrUnsupportedSort, name)
}

// Comparator orders two results, returning a negative number when a comes first.
type Comparator func(a, b *Result) int

var comparators = map[SortOption]Comparator{ //nolint:gochecknoglobals // read only
	SortRelevance:  byNameAsc,
	SortNameAsc:    byNameAsc,
	SortNameDesc:   byNameDesc,
	SortRatingDesc: byRatingDesc,
	SortRatingAsc:  byRatingAsc,
}

// Comparator returns the ordering of the sort option. Price sorts have no backing field and are
// rejected.
func (s SortOption) Comparator() (Comparator, error) {
	comparator, ok := comparators[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSort, s)
	}

	return comparator, nil
}

func byNameAsc(a, b *Result) int {
	return cmpOr(cmp.Compare(a.Wine.Name, b.Wine.Name), cmp.Compare(a.Wine.ID, b.Wine.ID))
}

func byNameDesc(a, b *Result) int {
	return cmpOr(cmp.Compare(b.Wine.Name, a.Wine.Name), cmp.Compare(a.Wine.ID, b.Wine.ID))
}

// Unrated wines go last in both rating orders.
func byRatingDesc(a, b *Result) int {
	return cmpOr(compareRated(a, b), compareRatings(b, a), byNameAsc(a, b))
}

func byRatingAsc(a, b *Result) int {
	return cmpOr(compareRated(a, b), compareRatings(a, b), byNameAsc(a, b))
}

func compareRated(a, b *Result) int {
	switch {
	case a.Rating != nil && b.Rating == nil:
		return -1
	case a.Rating == nil && b.Rating != nil:
		return 1
	default:
		return 0
	}
}

func compareRatings(a, b *Result) int {
	if a.Rating == nil || b.Rating == nil {
		return 0
	}

	return cmp.Compare(*a.Rating, *b.Rating)
}

// ByScore puts higher scores first and orders equal scores with then.
func ByScore(then Comparator) Comparator {
	return func(a, b *Result) int {
		return cmpOr(cmp.Compare(b.Score, a.Score), then(a, b))
	}
}

// SortResults orders results in place the way order describes.
func SortResults(results []*Result, order Order) error {
	comparator, err := order.Sort.Comparator()
	if err != nil {
		return err
	}

	if order.ByScore {
		comparator = ByScore(comparator)
	}

	slices.SortStableFunc(results, comparator)

	return nil
}

// cmpOr is cmp.Or from Go 1.22: it returns the first of its arguments that is not the zero value.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
