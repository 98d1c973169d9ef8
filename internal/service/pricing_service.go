package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"dynamic-pricing-service/internal/config"
	"dynamic-pricing-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "service").Logger()

// ErrInvalidParams is returned when request parameters are out of range.
var ErrInvalidParams = errors.New("invalid pricing parameters")

// Recommender computes recommendations.
type Recommender interface {
	Recommend(ctx context.Context, sku string, params entity.PricingParams) (*entity.PricingRecommendation, error)
	RecommendBatch(ctx context.Context, skus []string, params entity.PricingParams) ([]*entity.PricingRecommendation, error)
}

// PerformerRanker ranks products by quantity sold.
type PerformerRanker interface {
	WorstPerformers(ctx context.Context, limit int) ([]entity.PerformerRank, error)
}

// RecommendationCache stores recommendations per SKU and parameter set. Get returns nil on a miss.
type RecommendationCache interface {
	Get(ctx context.Context, sku string, params entity.PricingParams) (*entity.PricingRecommendation, error)
	Set(ctx context.Context, rec *entity.PricingRecommendation, params entity.PricingParams) error
	Invalidate(ctx context.Context, sku string) error
}

// MessageWriter publishes kafka messages.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PricingService handles caching and event publishing around the pricing engine.
type PricingService struct {
	engine   Recommender
	ranker   PerformerRanker
	cache    RecommendationCache
	writer   MessageWriter
	defaults config.PricingConfig
	now      func() time.Time
}

// NewPricingService creates a new instance of PricingService. cache and writer may be nil.
func NewPricingService(engine Recommender, ranker PerformerRanker, cache RecommendationCache, writer MessageWriter, defaults config.PricingConfig) *PricingService {
	return &PricingService{
		engine:   engine,
		ranker:   ranker,
		cache:    cache,
		writer:   writer,
		defaults: defaults,
		now:      time.Now,
	}
}

// ResolveParams applies the configured defaults to a request and validates the result.
func (s *PricingService) ResolveParams(o entity.PricingOverrides) (entity.PricingParams, error) {
	p := entity.PricingParams{
		ClearanceDays:     s.defaults.ClearanceDays,
		MarginFloor:       s.defaults.MarginFloor,
		LookbackDays:      s.defaults.LookbackDays,
		CandidateLowerPct: s.defaults.CandidateLowerPct,
		CandidateUpperPct: s.defaults.CandidateUpperPct,
		CandidateSteps:    s.defaults.CandidateSteps,
	}
	if o.ClearanceDays != nil {
		p.ClearanceDays = *o.ClearanceDays
	}
	if o.MarginFloor != nil {
		p.MarginFloor = *o.MarginFloor
	}
	if o.LookbackDays != nil {
		p.LookbackDays = *o.LookbackDays
	}
	if o.CandidateLowerPct != nil {
		p.CandidateLowerPct = *o.CandidateLowerPct
	}
	if o.CandidateUpperPct != nil {
		p.CandidateUpperPct = *o.CandidateUpperPct
	}
	if o.CandidateSteps != nil {
		p.CandidateSteps = *o.CandidateSteps
	}

	switch {
	case p.ClearanceDays <= 0:
		return p, fmt.Errorf("%w: clearance_days must be positive", ErrInvalidParams)
	case p.MarginFloor < 0:
		return p, fmt.Errorf("%w: margin_floor must not be negative", ErrInvalidParams)
	case p.LookbackDays < 0:
		return p, fmt.Errorf("%w: lookback_days must not be negative", ErrInvalidParams)
	case p.CandidateLowerPct <= 0 || p.CandidateUpperPct < p.CandidateLowerPct:
		return p, fmt.Errorf("%w: candidate range must satisfy 0 < lower <= upper", ErrInvalidParams)
	case p.CandidateSteps <= 0:
		return p, fmt.Errorf("%w: candidate_steps must be positive", ErrInvalidParams)
	}
	return p, nil
}

// Recommend returns the recommendation for one SKU, reading through the cache.
func (s *PricingService) Recommend(ctx context.Context, sku string, params entity.PricingParams) (*entity.PricingRecommendation, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, sku, params)
		if err != nil {
			logger.Warn().Err(err).Msgf("Cache read failed for SKU %s", sku)
		} else if cached != nil {
			return cached, nil
		}
	}

	rec, err := s.engine.Recommend(ctx, sku, params)
	if err != nil {
		logger.Error().Err(err).Msgf("Error pricing SKU %s", sku)
		return nil, fmt.Errorf("could not price SKU %s: %w", sku, err)
	}

	s.remember(ctx, rec, params)
	s.publish(ctx, rec)
	return rec, nil
}

// RecommendBatch prices several SKUs. Results keep the input order with empty SKUs skipped.
func (s *PricingService) RecommendBatch(ctx context.Context, skus []string, params entity.PricingParams) ([]*entity.PricingRecommendation, error) {
	recs, err := s.engine.RecommendBatch(ctx, skus, params)
	if err != nil {
		return nil, fmt.Errorf("could not price batch: %w", err)
	}

	for _, rec := range recs {
		s.remember(ctx, rec, params)
	}
	s.publish(ctx, recs...)
	return recs, nil
}

// RecommendWorstPerformers prices the limit slowest-selling products, slowest first.
func (s *PricingService) RecommendWorstPerformers(ctx context.Context, limit int, params entity.PricingParams) ([]*entity.PricingRecommendation, error) {
	if limit <= 0 {
		limit = s.defaults.WorstPerformers
	}

	ranks, err := s.ranker.WorstPerformers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not rank products: %w", err)
	}

	skus := make([]string, len(ranks))
	for i, r := range ranks {
		skus[i] = r.SKU
	}
	return s.RecommendBatch(ctx, skus, params)
}

// InvalidateSKU drops the cached recommendations of a SKU after its ledger changed.
func (s *PricingService) InvalidateSKU(ctx context.Context, sku string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, sku); err != nil {
		return fmt.Errorf("could not invalidate SKU %s: %w", sku, err)
	}
	return nil
}

// remember caches a recommendation. Error results are not cached.
func (s *PricingService) remember(ctx context.Context, rec *entity.PricingRecommendation, params entity.PricingParams) {
	if s.cache == nil || rec.Status == entity.StatusError {
		return
	}
	if err := s.cache.Set(ctx, rec, params); err != nil {
		logger.Warn().Err(err).Msgf("Cache write failed for SKU %s", rec.SKU)
	}
}

// publish emits one event per recommendation. Failures are logged, the caller still gets its result.
func (s *PricingService) publish(ctx context.Context, recs ...*entity.PricingRecommendation) {
	if s.writer == nil || len(recs) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(recs))
	for _, rec := range recs {
		msg, err := s.recommendationMessage(rec)
		if err != nil {
			logger.Error().Err(err).Msgf("Error encoding recommendation for SKU %s", rec.SKU)
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return
	}

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %d recommendation events", len(msgs))
	}
}

func (s *PricingService) recommendationMessage(rec *entity.PricingRecommendation) (kafka.Message, error) {
	value, err := json.Marshal(entity.RecommendationEvent{
		EventID:        uuid.NewString(),
		GeneratedAt:    s.now().UTC(),
		Recommendation: rec,
	})
	if err != nil {
		return kafka.Message{}, err
	}

	// pricing.success.SKU-1 or pricing.no_stock.SKU-1
	return kafka.Message{
		Key:   []byte(fmt.Sprintf("pricing.%s.%s", rec.Status, rec.SKU)),
		Value: value,
	}, nil
}
