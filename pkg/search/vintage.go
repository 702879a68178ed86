package search

import (
	"strconv"
	"strings"

	"droscher.com/WineLovers/pkg/model"
)

// ParseVintage reads a vintage label as a year. Labels such as "N.V." are not years.
func ParseVintage(label string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil || year <= 0 {
		return 0, false
	}

	return year, true
}

// VintageBounds is the earliest and latest year among labels, or nil when none parses.
func VintageBounds(labels []string) *Range {
	var bounds *Range

	for _, label := range labels {
		year, ok := ParseVintage(label)
		if !ok {
			continue
		}

		if bounds == nil {
			bounds = &Range{Min: float64(year), Max: float64(year)}

			continue
		}

		bounds.Min = min(bounds.Min, float64(year))
		bounds.Max = max(bounds.Max, float64(year))
	}

	return bounds
}

// Refinement is a filter that stores cannot evaluate and that is applied to fetched wines.
type Refinement interface {
	Keep(wine *model.Wine) bool
}

// VintageRange keeps wines having at least one vintage year within the bounds. Wines without
// a parseable vintage never match.
type VintageRange struct {
	Min *float64
	Max *float64
}

func (v VintageRange) Keep(wine *model.Wine) bool {
	for _, label := range wine.Vintages {
		year, ok := ParseVintage(label)
		if !ok {
			continue
		}

		if v.Min != nil && float64(year) < *v.Min {
			continue
		}

		if v.Max != nil && float64(year) > *v.Max {
			continue
		}

		return true
	}

	return false
}
