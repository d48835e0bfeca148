package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docvault/internal/analysis"
	"docvault/internal/cache"
	"docvault/internal/logger"
	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/pricing"
	"docvault/internal/repository"
)

// SearchResult is the answer to a natural-language search.
type SearchResult struct {
	Topic               string
	Documents           []model.Document
	MatchingDocumentIDs []string
	RequiredDocuments   []model.RequiredDocumentStatus
	SearchTerms         []string
	Degraded            bool
}

// SearchService interprets a query against the corpus and resolves matching documents.
type SearchService interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// InterpretationCache is an optional store of previous interpretations.
type InterpretationCache interface {
	Get(ctx context.Context, key string) (*analysis.Interpretation, bool, error)
	Set(ctx context.Context, key string, in *analysis.Interpretation) error
}

// SearchConfig carries the optional collaborators of the search service.
type SearchConfig struct {
	Cache   InterpretationCache
	Pricing pricing.Table
	Metrics *metrics.Pipeline
	Logger  zerolog.Logger
}

type searchService struct {
	repo        repository.DocumentRepository
	interpreter analysis.Client
	cache       InterpretationCache
	costs       costRecorder
	metrics     *metrics.Pipeline
	log         zerolog.Logger
}

func NewSearchService(repo repository.DocumentRepository, costs repository.CostRepository, interpreter analysis.Client, cfg SearchConfig) SearchService {
	if cfg.Pricing.Models == nil {
		cfg.Pricing = pricing.Default()
	}
	log := cfg.Logger.With().Str("component", "search").Logger()
	return &searchService{
		repo:        repo,
		interpreter: interpreter,
		cache:       cfg.Cache,
		costs:       costRecorder{repo: costs, prices: cfg.Pricing, metrics: cfg.Metrics, log: log},
		metrics:     cfg.Metrics,
		log:         log,
	}
}

// Search never surfaces interpreter failures; it falls back to local term matching instead.
// A blank query yields an empty result without calling the interpreter. Only a failure to
// read the corpus is returned as an error.
func (s *searchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &SearchResult{
			Documents:           []model.Document{},
			MatchingDocumentIDs: []string{},
			RequiredDocuments:   []model.RequiredDocumentStatus{},
			SearchTerms:         []string{},
		}, nil
	}

	ctx, span := tracer.Start(ctx, "search")
	defer span.End()

	snapshot, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load corpus: %v", ErrPersistence, err)
	}

	in, degraded := s.interpret(ctx, query, snapshot)
	matches := ResolveMatches(snapshot, in)

	span.SetAttributes(
		attribute.Int("corpus_size", len(snapshot)),
		attribute.Int("matches", len(matches)),
		attribute.Bool("degraded", degraded),
	)

	return &SearchResult{
		Topic:               in.Topic,
		Documents:           matches,
		MatchingDocumentIDs: in.MatchingDocumentIDs,
		RequiredDocuments:   EnrichRequired(in.RequiredDocuments, matches),
		SearchTerms:         in.SearchTerms,
		Degraded:            degraded,
	}, nil
}

func (s *searchService) interpret(ctx context.Context, query string, snapshot []model.Document) (*analysis.Interpretation, bool) {
	corpus := make([]model.DocumentSummary, 0, len(snapshot))
	for _, d := range snapshot {
		corpus = append(corpus, d.Summary())
	}

	var key string
	if s.cache != nil {
		key = cache.Key(query, corpus)
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Msg("interpretation cache read failed")
		}
		if ok {
			s.metrics.CacheHit()
			return normalizeInterpretation(cached, query), false
		}
	}

	ictx, span := tracer.Start(ctx, "search.interpret", trace.WithAttributes(attribute.Int("corpus_size", len(corpus))))
	start := time.Now()
	in, err := s.interpreter.InterpretQuery(ictx, query, corpus)
	if err == nil && in == nil {
		err = analysis.ErrMalformedResponse
	}
	s.metrics.ObserveAnalysis(string(model.OperationSearch), err, time.Since(start))
	span.End()

	if err != nil {
		s.metrics.SearchDegraded()
		s.log.Warn().Err(err).Str("request_id", logger.RequestID(ctx)).Msg("query interpretation failed, using local terms")
		return FallbackInterpretation(query), true
	}
	in = normalizeInterpretation(in, query)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, in); err != nil {
			s.log.Warn().Err(err).Msg("interpretation cache write failed")
		}
	}

	s.costs.record(ctx, model.OperationSearch, nil, in.Usage, map[string]any{
		"query":        query,
		"matching_ids": len(in.MatchingDocumentIDs),
		"search_terms": len(in.SearchTerms),
	})
	return in, false
}

func normalizeInterpretation(in *analysis.Interpretation, query string) *analysis.Interpretation {
	if in.Topic == "" {
		in.Topic = query
	}
	if in.SearchTerms == nil {
		in.SearchTerms = []string{}
	}
	if in.MatchingDocumentIDs == nil {
		in.MatchingDocumentIDs = []string{}
	}
	if in.RequiredDocuments == nil {
		in.RequiredDocuments = []model.RequiredDocument{}
	}
	return in
}
