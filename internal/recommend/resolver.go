// internal/recommend/resolver.go
package recommend

import (
	"context"
	"regexp"
	"strings"

	"cinema-sage/internal/common/metrics"

	"golang.org/x/sync/errgroup"
)

const knownForMarker = `"known_for"`

// Catalog is the set of catalog reads the pipeline performs.
type Catalog interface {
	Genres(ctx context.Context) (string, error)
	Person(ctx context.Context, name string) (string, error)
	Movies(ctx context.Context, filter string) (string, error)
	SortedMovies(ctx context.Context, filter, sortBy string) (string, error)
}

// Resolver turns genre and person labels into catalog ids.
type Resolver struct {
	catalog Catalog
	id      *regexp.Regexp
	logger  Logger
}

func NewResolver(catalog Catalog, log Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		id:      regexp.MustCompile(`"id"\s*:\s*(\d+)`),
		logger:  log,
	}
}

// GenreID finds the id of the genre whose name equals label, ignoring case.
func (r *Resolver) GenreID(label, genreCatalogText string) string {
	if label == "" {
		return ""
	}
	pattern, err := regexp.Compile(`(?i)"id"\s*:\s*(\d+)\s*,\s*"name"\s*:\s*"` + regexp.QuoteMeta(label) + `"`)
	if err != nil {
		return ""
	}
	m := pattern.FindStringSubmatch(genreCatalogText)
	if m == nil {
		return ""
	}
	return m[1]
}

// PersonID returns the first id that occurs before the last "known_for"
// marker, i.e. the id of the top search hit.
func (r *Resolver) PersonID(personCatalogText string) string {
	last := strings.LastIndex(personCatalogText, knownForMarker)
	if last < 0 {
		return ""
	}
	m := r.id.FindStringSubmatch(personCatalogText[:last])
	if m == nil {
		return ""
	}
	return m[1]
}

// Resolve looks up both identifiers concurrently. A label that is empty is
// not looked up, and a failed lookup resolves to "".
func (r *Resolver) Resolve(ctx context.Context, params Params) Identifiers {
	var ids Identifiers

	var g errgroup.Group
	g.SetLimit(2)

	if params.Genre != "" {
		g.Go(func() error {
			body, err := r.catalog.Genres(ctx)
			if err != nil {
				r.lookupFailed("genre", params.Genre, err)
				return nil
			}
			ids.GenreID = r.GenreID(params.Genre, body)
			return nil
		})
	}

	if params.Person != "" {
		g.Go(func() error {
			body, err := r.catalog.Person(ctx, params.Person)
			if err != nil {
				r.lookupFailed("person", params.Person, err)
				return nil
			}
			ids.PersonID = r.PersonID(body)
			return nil
		})
	}

	_ = g.Wait()
	return ids
}

func (r *Resolver) lookupFailed(lookup, label string, err error) {
	metrics.CatalogLookupFailures.WithLabelValues(lookup).Inc()
	r.logger.Warn("identifier lookup failed, continuing without it", map[string]interface{}{
		"lookup": lookup,
		"label":  label,
		"error":  err,
	})
}
