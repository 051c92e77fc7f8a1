package search

import (
	"context"
	"errors"
	"strings"

	"littlelibrary/internal/platform/openlibrary"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup yields no catalog entry.
var ErrNotFound = errors.New("no matching book in catalog")

// Result is a normalized catalog entry. Nil fields are absent.
type Result struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	ISBN            *string `json:"isbn,omitempty"`
	PublicationYear *int    `json:"publicationYear,omitempty"`
	Publisher       *string `json:"publisher,omitempty"`
	CoverURL        *string `json:"coverUrl,omitempty"`
}

// Catalog is the outbound search dependency.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) (*openlibrary.SearchResponse, error)
}

type Service struct {
	catalog      Catalog
	coverBaseURL string
	logger       *zap.Logger
}

func NewService(catalog Catalog, coverBaseURL string, logger *zap.Logger) *Service {
	return &Service{
		catalog:      catalog,
		coverBaseURL: strings.TrimRight(coverBaseURL, "/"),
		logger:       logger,
	}
}

// Search returns normalized results in catalog order. Upstream failures are
// logged and reported as an empty result, never as an error.
func (s *Service) Search(ctx context.Context, query string, limit int) []Result {
	if strings.TrimSpace(query) == "" {
		return []Result{}
	}

	s.logger.Info("searching catalog", zap.String("query", query), zap.Int("limit", limit))
	res, err := s.catalog.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error("catalog search failed", zap.String("query", query), zap.Error(err))
		return []Result{}
	}
	if res == nil || res.Docs == nil {
		return []Result{}
	}

	results := make([]Result, 0, len(res.Docs))
	for _, doc := range res.Docs {
		results = append(results, Normalize(doc, s.coverBaseURL))
	}
	s.logger.Info("catalog search done", zap.String("query", query), zap.Int("results", len(results)))
	return results
}

// FindByISBN returns the first catalog match for isbn.
func (s *Service) FindByISBN(ctx context.Context, isbn string) (Result, error) {
	results := s.Search(ctx, isbn, 1)
	if len(results) == 0 {
		return Result{}, ErrNotFound
	}
	return results[0], nil
}

// Health probes the catalog directly so that upstream failures surface.
func (s *Service) Health(ctx context.Context) error {
	_, err := s.catalog.Search(ctx, "test", 1)
	return err
}
