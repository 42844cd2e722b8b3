// internal/recommend/pipeline.go
package recommend

import (
	"context"
	"time"

	"cinema-sage/internal/catalog"
	"cinema-sage/internal/common/errors"
	"cinema-sage/internal/common/metrics"

	"github.com/google/uuid"
)

const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// RequestRecorder receives one observation per pipeline run.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, duration time.Duration, outcome string)
}

type PipelineOptions struct {
	Extractor *Extractor
	Catalog   Catalog
	Renderer  *Renderer
	SortBy    string
	Logger    Logger
	Recorder  RequestRecorder
}

// Pipeline turns a free-text request into a reply: extract, resolve, filter,
// discover, render.
type Pipeline struct {
	extractor *Extractor
	resolver  *Resolver
	catalog   Catalog
	renderer  *Renderer
	sortBy    string
	logger    Logger
	recorder  RequestRecorder
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.Extractor == nil {
		opts.Extractor = NewExtractor(DefaultExtractorConfig())
	}
	if opts.Renderer == nil {
		opts.Renderer = NewRenderer(nil)
	}
	return &Pipeline{
		extractor: opts.Extractor,
		resolver:  NewResolver(opts.Catalog, opts.Logger),
		catalog:   opts.Catalog,
		renderer:  opts.Renderer,
		sortBy:    opts.SortBy,
		logger:    opts.Logger,
		recorder:  opts.Recorder,
	}
}

// HandleRequest returns the reply for text.
func (p *Pipeline) HandleRequest(ctx context.Context, text string) (string, error) {
	result, err := p.Run(ctx, text)
	if err != nil {
		return "", err
	}
	return result.Reply, nil
}

// Run executes the pipeline once. Only a failed discover fetch is an error;
// failed identifier lookups just leave their slot empty.
func (p *Pipeline) Run(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	result := &Result{RequestID: uuid.NewString()}
	log := p.logger.With(map[string]interface{}{"requestId": result.RequestID})

	result.Params = p.extractor.Extract(text)
	log.Debug("extracted request fields", map[string]interface{}{
		"genre":  result.Params.Genre,
		"person": result.Params.Person,
		"year":   result.Params.Year,
	})

	result.Identifiers = p.resolver.Resolve(ctx, result.Params)

	filter := Filter{
		GenreID:  result.Identifiers.GenreID,
		PersonID: result.Identifiers.PersonID,
		Year:     result.Params.Year,
		SortBy:   p.sortBy,
	}
	result.Filter = filter.String()

	body, err := p.discover(ctx, filter)
	if err != nil {
		p.observe(ctx, start, OutcomeFailed)
		log.Warn("discover fetch failed", map[string]interface{}{
			"filter": result.Filter,
			"error":  err,
		})
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewCatalogUnavailableError(catalog.DiscoverPath, err)
	}

	result.Title = p.extractor.Title(body)
	result.Reply = p.renderer.Render(result.Title)

	outcome := OutcomeNotFound
	if result.Found() {
		outcome = OutcomeFound
	}
	p.observe(ctx, start, outcome)

	log.Info("request handled", map[string]interface{}{
		"genre":    result.Params.Genre,
		"person":   result.Params.Person,
		"year":     result.Params.Year,
		"genreId":  result.Identifiers.GenreID,
		"personId": result.Identifiers.PersonID,
		"title":    result.Title,
		"outcome":  outcome,
		"duration": time.Since(start).String(),
	})

	return result, nil
}

func (p *Pipeline) discover(ctx context.Context, filter Filter) (string, error) {
	if filter.SortBy != "" {
		return p.catalog.SortedMovies(ctx, filter.Base(), filter.SortBy)
	}
	return p.catalog.Movies(ctx, filter.String())
}

func (p *Pipeline) observe(ctx context.Context, start time.Time, outcome string) {
	elapsed := time.Since(start)
	metrics.RequestsTotal.WithLabelValues(outcome).Inc()
	metrics.RequestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if p.recorder != nil {
		p.recorder.RecordRequest(ctx, elapsed, outcome)
	}
}
