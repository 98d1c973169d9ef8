package pricing

import (
	"context"
	"time"

	"dynamic-pricing-service/internal/entity"
)

// Ledger is the read-only view of the sales/inventory ledger the engine prices from.
type Ledger interface {
	// Product returns nil, nil when the SKU is not in the catalog.
	Product(ctx context.Context, sku string) (*entity.Product, error)
	// PriceQuantityBuckets sums sold quantity per distinct sale price. A nil since means all history.
	PriceQuantityBuckets(ctx context.Context, sku string, since *time.Time) ([]entity.PriceQuantityBucket, error)
	TotalQuantitySold(ctx context.Context, sku string, since *time.Time) (int, error)
	TotalQuantitySoldAllTime(ctx context.Context, sku string) (int, error)
	TotalReceivedAllTime(ctx context.Context, sku string) (int, error)
	// MostRecentSale returns nil, nil when the SKU was never sold.
	MostRecentSale(ctx context.Context, sku string) (*entity.SaleRecord, error)
	// SaleDateRange reports the first and last sale timestamps; ok is false without sales.
	SaleDateRange(ctx context.Context, sku string) (first, last time.Time, ok bool, err error)
}
