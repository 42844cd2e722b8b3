// Package catalog talks to the movie catalog (The Movie Database v3 API).
// Responses are returned as raw text; callers pattern-match what they need.
package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinema-sage/internal/common/errors"
	httpclient "cinema-sage/internal/common/http"
	"cinema-sage/internal/common/metrics"
)

// Gateway fetches a catalog resource. query is a path plus optional query
// string relative to the API root, e.g. "/discover/movie?with_genres=28".
type Gateway interface {
	Fetch(ctx context.Context, query string) (string, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, query string) (string, error)

func (f GatewayFunc) Fetch(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// HTTPGateway issues GET requests against the catalog API and injects the api key.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *httpclient.Client
	logger  Logger
}

func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration, log Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpclient.NewClient(timeout),
		logger:  log,
	}
}

// Fetch returns the body of a 2xx response. Any other status, transport
// failure or deadline is reported as a StandardError.
func (g *HTTPGateway) Fetch(ctx context.Context, query string) (string, error) {
	endpoint := endpointOf(query)

	target, err := g.buildURL(query)
	if err != nil {
		return "", errors.NewInvalidRequestError(fmt.Sprintf("catalog query %q: %v", query, err))
	}

	start := time.Now()
	resp, err := g.client.Get(ctx, target, map[string]string{"Accept": "application/json"})
	metrics.CatalogLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(endpoint, "error").Inc()
		if stderrors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", errors.NewCatalogTimeoutError(endpoint)
		}
		return "", errors.NewCatalogUnavailableError(endpoint, err)
	}
	defer resp.Body.Close()

	metrics.CatalogRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewCatalogUnavailableError(endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Warn("catalog returned non-success status", map[string]interface{}{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		})
		return "", errors.NewCatalogStatusError(endpoint, resp.StatusCode)
	}

	g.logger.Debug("catalog fetch ok", map[string]interface{}{
		"endpoint": endpoint,
		"bytes":    len(body),
	})
	return string(body), nil
}

// buildURL joins query onto the base URL and appends api_key last. The
// caller's query is sent byte for byte; the catalog matches on parameter
// order.
func (g *HTTPGateway) buildURL(query string) (string, error) {
	target := g.baseURL + "/" + strings.TrimLeft(query, "/")
	if _, err := url.Parse(target); err != nil {
		return "", err
	}
	sep := "?"
	if strings.Contains(query, "?") {
		sep = "&"
	}
	return target + sep + "api_key=" + url.QueryEscape(g.apiKey), nil
}

// endpointOf strips the query string so metric labels stay low-cardinality.
func endpointOf(query string) string {
	if i := strings.IndexByte(query, '?'); i >= 0 {
		query = query[:i]
	}
	if query == "" {
		return "/"
	}
	return query
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return stderrors.As(err, &t) && t.Timeout()
}
