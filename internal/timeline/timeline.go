// Package timeline groups survey observations by calendar date.
package timeline

import (
	"slices"
	"strings"

	"echosurvey/internal/survey"
)

// Grouper holds an ordered set of observations and the distinct dates they
// span.
type Grouper struct {
	names []survey.Name
	dates []string
}

// Group indexes names by their date component. Input order does not matter;
// names are held in timestamp order.
func Group(names []survey.Name) *Grouper {
	sorted := slices.Clone(names)
	survey.SortByTimestamp(sorted)

	dates := make([]string, 0, len(sorted))
	for _, name := range sorted {
		dates = append(dates, name.Date)
	}
	slices.Sort(dates)
	dates = slices.Compact(dates)

	return &Grouper{names: sorted, dates: dates}
}

// Dates returns the distinct dates in ascending order.
func (g *Grouper) Dates() []string {
	return slices.Clone(g.dates)
}

// Files returns every name whose timestamp contains date, in timestamp order.
// A date with no files yields an empty slice.
//
// Matching is by substring: a date token that also occurs inside another
// observation's prefix or time component matches that observation too.
func (g *Grouper) Files(date string) []survey.Name {
	if date == "" {
		return nil
	}
	var files []survey.Name
	for _, name := range g.names {
		if strings.Contains(name.Timestamp, date) {
			files = append(files, name)
		}
	}
	return files
}

// Len reports the number of indexed observations.
func (g *Grouper) Len() int {
	return len(g.names)
}
