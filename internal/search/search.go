// Package search implements the global search across requirements, orders and supplier search results.
package search

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"pharmadash/internal/model"
	"pharmadash/internal/query"
	"pharmadash/internal/service"
)

// DefaultKinds are the collections covered by the global search.
var DefaultKinds = []model.Kind{model.KindRequirement, model.KindOrder, model.KindSearchResult}

// Group holds the hits of one kind.
type Group struct {
	Kind  model.Kind     `json:"kind"`
	Items []model.Record `json:"items"`
	Total int            `json:"total"`
}

// Result is the answer to a global search.
type Result struct {
	Term   string  `json:"term"`
	Total  int     `json:"total"`
	Groups []Group `json:"groups"`
}

// Service answers global searches.
type Service struct {
	records   service.RecordService
	debouncer *Debouncer
	kinds     []model.Kind
	perKind   int
	logger    *zap.Logger
}

// NewService creates a Service returning at most perKind hits per kind (0 for all).
func NewService(records service.RecordService, debouncer *Debouncer, perKind int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records:   records,
		debouncer: debouncer,
		kinds:     DefaultKinds,
		perKind:   perKind,
		logger:    logger,
	}
}

// Search runs a debounced global search for sessionID. A blank term yields no hits.
func (s *Service) Search(ctx context.Context, sessionID, term string, locale language.Tag) (*Result, error) {
	res, err := Debounce(ctx, s.debouncer, sessionID, func(ctx context.Context) (*Result, error) {
		return s.run(ctx, term, locale)
	})
	if err != nil && !errors.Is(err, ErrSuperseded) {
		s.logger.Warn("global search failed", zap.String("term", term), zap.Error(err))
	}
	return res, err
}

func (s *Service) run(ctx context.Context, term string, locale language.Tag) (*Result, error) {
	term = strings.TrimSpace(term)
	out := &Result{Term: term, Groups: make([]Group, 0, len(s.kinds))}

	for _, kind := range s.kinds {
		g := Group{Kind: kind, Items: []model.Record{}}
		if term != "" {
			r, err := s.records.Query(ctx, kind, query.Query{
				Search: term,
				Page:   query.Page{Limit: s.perKind},
				Locale: locale,
			})
			if err != nil {
				return nil, err
			}
			g.Items, g.Total = r.Items, r.Total
		}
		out.Total += g.Total
		out.Groups = append(out.Groups, g)
	}
	return out, nil
}
