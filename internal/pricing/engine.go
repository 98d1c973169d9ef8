package pricing

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"dynamic-pricing-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "pricing").Logger()

const defaultBatchConcurrency = 8

// Engine recommends clearance prices from a SKU's sales history. It holds no mutable
// state, so one Engine can serve concurrent calls.
type Engine struct {
	ledger           Ledger
	now              func() time.Time
	batchConcurrency int
}

type Option func(*Engine)

// WithClock sets the clock the lookback window is measured from.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithBatchConcurrency caps the number of SKUs priced at once by RecommendBatch.
func WithBatchConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchConcurrency = n
		}
	}
}

// NewEngine creates a new instance of Engine.
func NewEngine(ledger Ledger, opts ...Option) *Engine {
	e := &Engine{
		ledger:           ledger,
		now:              time.Now,
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend prices one SKU. Unknown SKUs, missing stock and missing sales history are
// reported through the recommendation status; the error is only set when the ledger fails.
func (e *Engine) Recommend(ctx context.Context, sku string, params entity.PricingParams) (*entity.PricingRecommendation, error) {
	product, err := e.ledger.Product(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", sku, err)
	}
	if product == nil {
		return notFound(sku), nil
	}

	stock, err := e.currentStock(ctx, sku)
	if err != nil {
		return nil, err
	}
	if stock <= 0 {
		return noStock(sku), nil
	}

	history, err := aggregateHistory(ctx, e.ledger, sku, params.LookbackDays, e.now())
	if err != nil {
		return nil, err
	}
	basePrice, baseDailyQty := history.baseline(product.ListPrice)

	if history.empty() {
		last, err := e.ledger.MostRecentSale(ctx, sku)
		if err != nil {
			return nil, fmt.Errorf("most recent sale for %s: %w", sku, err)
		}
		if last == nil {
			logger.Debug().Str("sku", sku).Msg("No sales history, quoting list price")
			return noSalesHistory(product, stock, params), nil
		}
		basePrice = last.Price
		if basePrice == 0 {
			basePrice = product.ListPrice
		}
		baseDailyQty = float64(last.Quantity)
		if baseDailyQty == 0 {
			baseDailyQty = 1
		}
		logger.Debug().Str("sku", sku).Time("sold_at", last.SoldAt).Msg("No sales in window, anchoring on last sale")
	}

	curve := entity.DemandCurve{
		BasePrice:    basePrice,
		BaseDailyQty: baseDailyQty,
		Elasticity:   EstimateElasticity(history.buckets),
	}

	minAllowed := params.MinAllowedPrice(product.CostPrice)
	best, how := optimize(optimizeInput{
		stock:         stock,
		costPrice:     product.CostPrice,
		clearanceDays: params.ClearanceDays,
		marginFloor:   params.MarginFloor,
		curve:         curve,
		center:        priceCenter(product.ListPrice, basePrice, minAllowed),
		lowerPct:      params.CandidateLowerPct,
		upperPct:      params.CandidateUpperPct,
		steps:         params.CandidateSteps,
	})
	if how != selectedFeasible {
		logger.Debug().Str("sku", sku).Str("selection", string(how)).Msgf("Clearance target of %d days not met on grid", params.ClearanceDays)
	}

	return success(product, stock, params, curve, best), nil
}

// currentStock is everything ever received minus everything ever sold, floored at zero.
func (e *Engine) currentStock(ctx context.Context, sku string) (int, error) {
	received, err := e.ledger.TotalReceivedAllTime(ctx, sku)
	if err != nil {
		return 0, fmt.Errorf("quantity received for %s: %w", sku, err)
	}
	sold, err := e.ledger.TotalQuantitySoldAllTime(ctx, sku)
	if err != nil {
		return 0, fmt.Errorf("quantity sold for %s: %w", sku, err)
	}
	return max(received-sold, 0), nil
}
