package pricing

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"dynamic-pricing-service/internal/entity"
)

// RecommendBatch prices every non-empty SKU concurrently and returns the recommendations
// in input order. A ledger failure on one SKU is reported as an error status for that SKU;
// only cancellation of ctx fails the batch.
func (e *Engine) RecommendBatch(ctx context.Context, skus []string, params entity.PricingParams) ([]*entity.PricingRecommendation, error) {
	targets := make([]string, 0, len(skus))
	for _, sku := range skus {
		if strings.TrimSpace(sku) != "" {
			targets = append(targets, sku)
		}
	}

	results := make([]*entity.PricingRecommendation, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchConcurrency)

	for i, sku := range targets {
		i, sku := i, sku
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := e.Recommend(gctx, sku, params)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Error().Err(err).Msgf("Error pricing SKU %s", sku)
				rec = &entity.PricingRecommendation{SKU: sku, Status: entity.StatusError, Error: err.Error()}
			}
			results[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
