// internal/recommend/filter.go
package recommend

import (
	"fmt"
	"net/url"
)

// Filter is a discover query. Every slot is always rendered, empty or not,
// in the order genre, person, year, then the optional sort key.
type Filter struct {
	GenreID  string
	PersonID string
	Year     string
	SortBy   string
}

func (f Filter) String() string {
	if f.SortBy != "" {
		return BuildSortedFilter(f.GenreID, f.PersonID, f.Year, f.SortBy)
	}
	return BuildFilter(f.GenreID, f.PersonID, f.Year)
}

// Base renders the filter without its sort key.
func (f Filter) Base() string {
	return BuildFilter(f.GenreID, f.PersonID, f.Year)
}

func BuildFilter(genreID, personID, year string) string {
	return fmt.Sprintf("?with_genres=%s&with_people=%s&primary_release_year=%s",
		url.QueryEscape(genreID), url.QueryEscape(personID), url.QueryEscape(year))
}

func BuildSortedFilter(genreID, personID, year, sortBy string) string {
	return BuildFilter(genreID, personID, year) + "&sort_by=" + url.QueryEscape(sortBy)
}
