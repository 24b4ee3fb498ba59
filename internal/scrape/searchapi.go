// Package scrape holds one adapter per data source. Adapters absorb
// per-query fetch failures: a failed query is logged as a warning and
// contributes zero records, it never aborts the run or produces a
// partial record.
package scrape

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/demod-llc/nixtune/models"
	"github.com/demod-llc/nixtune/pkg/fetcher"
)

// DefaultSearchBaseURL is the official search.nixos.org backend.
const DefaultSearchBaseURL = "https://search.nixos.org/backend"

// SearchAPI queries the search.nixos.org backend for packages, options,
// and flakes.
type SearchAPI struct {
	fetcher *fetcher.Fetcher
	baseURL string
	channel string
	logger  *slog.Logger
}

func NewSearchAPI(f *fetcher.Fetcher, channel string, logger *slog.Logger) *SearchAPI {
	return &SearchAPI{
		fetcher: f,
		baseURL: DefaultSearchBaseURL,
		channel: channel,
		logger:  logger,
	}
}

// WithBaseURL overrides the backend URL; tests point it at a local server.
func (s *SearchAPI) WithBaseURL(baseURL string) *SearchAPI {
	s.baseURL = baseURL
	return s
}

type searchResponse[T any] struct {
	Results []T `json:"results"`
}

// Packages runs each package query and returns up to maxPerQuery records
// per query. each, when non-nil, is called once per finished query.
func (s *SearchAPI) Packages(queries []string, maxPerQuery int, each func()) []models.PackageRecord {
	return search[models.PackageRecord](s, "packages", queries, maxPerQuery, each)
}

// Options runs each option query and returns up to maxPerQuery records
// per query.
func (s *SearchAPI) Options(queries []string, maxPerQuery int, each func()) []models.OptionRecord {
	return search[models.OptionRecord](s, "options", queries, maxPerQuery, each)
}

// Flakes runs each flake query and returns up to maxPerQuery records per
// query.
func (s *SearchAPI) Flakes(queries []string, maxPerQuery int, each func()) []models.FlakeRecord {
	return search[models.FlakeRecord](s, "flakes", queries, maxPerQuery, each)
}

func search[T any](s *SearchAPI, searchType string, queries []string, maxPerQuery int, each func()) []T {
	var out []T
	for _, query := range queries {
		results, err := fetchSearch[T](s, searchType, query)
		if err != nil {
			s.logger.Warn("search query failed",
				"search_type", searchType, "query", query, "error", err)
		} else {
			if len(results) > maxPerQuery {
				results = results[:maxPerQuery]
			}
			out = append(out, results...)
		}
		if each != nil {
			each()
		}
	}
	return out
}

func fetchSearch[T any](s *SearchAPI, searchType, query string) ([]T, error) {
	params := url.Values{
		"channel": {s.channel},
		"query":   {query},
	}

	var resp searchResponse[T]
	endpoint := fmt.Sprintf("%s/%s", s.baseURL, searchType)
	if err := s.fetcher.GetJSON(endpoint, params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
