// internal/catalog/repository.go
package catalog

import (
	"context"
	"net/url"
)

const (
	GenresPath   = "/genre/movie/list"
	PersonPath   = "/search/person"
	DiscoverPath = "/discover/movie"
)

// Repository names the catalog resources the recommender reads.
type Repository struct {
	gateway Gateway
}

func NewRepository(gateway Gateway) *Repository {
	return &Repository{gateway: gateway}
}

// Genres returns the catalog's genre list.
func (r *Repository) Genres(ctx context.Context) (string, error) {
	return r.gateway.Fetch(ctx, GenresPath)
}

// Person searches people by name.
func (r *Repository) Person(ctx context.Context, name string) (string, error) {
	return r.gateway.Fetch(ctx, PersonPath+"?query="+url.QueryEscape(name))
}

// Movies runs a discover query. filter is a pre-built "?..." query string.
func (r *Repository) Movies(ctx context.Context, filter string) (string, error) {
	return r.gateway.Fetch(ctx, DiscoverPath+filter)
}

// SortedMovies runs a discover query with an explicit sort key appended.
func (r *Repository) SortedMovies(ctx context.Context, filter, sortBy string) (string, error) {
	return r.gateway.Fetch(ctx, DiscoverPath+filter+"&sort_by="+url.QueryEscape(sortBy))
}
