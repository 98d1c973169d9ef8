package pricing

import (
	"context"
	"fmt"
	"time"

	"dynamic-pricing-service/internal/entity"
)

const day = 24 * time.Hour

// salesHistory is a SKU's sales collapsed over the lookback window.
type salesHistory struct {
	buckets      []entity.PriceQuantityBucket
	totalQty     int
	daysInWindow int
}

func aggregateHistory(ctx context.Context, ledger Ledger, sku string, lookbackDays int, now time.Time) (*salesHistory, error) {
	var since *time.Time
	days := 1
	if lookbackDays > 0 {
		cutoff := now.Add(-time.Duration(lookbackDays) * day)
		since = &cutoff
		days = lookbackDays
	} else {
		first, last, ok, err := ledger.SaleDateRange(ctx, sku)
		if err != nil {
			return nil, fmt.Errorf("sale date range for %s: %w", sku, err)
		}
		if ok {
			days = max(int(last.Sub(first)/day), 1)
		}
	}

	buckets, err := ledger.PriceQuantityBuckets(ctx, sku, since)
	if err != nil {
		return nil, fmt.Errorf("price buckets for %s: %w", sku, err)
	}
	total, err := ledger.TotalQuantitySold(ctx, sku, since)
	if err != nil {
		return nil, fmt.Errorf("quantity sold for %s: %w", sku, err)
	}

	return &salesHistory{buckets: buckets, totalQty: total, daysInWindow: days}, nil
}

// empty reports whether the window holds no sales at all.
func (h *salesHistory) empty() bool {
	return len(h.buckets) == 0 && h.totalQty == 0
}

// baseline returns the quantity-weighted average sale price and the average daily quantity.
// listPrice stands in for the price when the window has nothing to average.
func (h *salesHistory) baseline(listPrice float64) (basePrice, baseDailyQty float64) {
	basePrice = listPrice
	if len(h.buckets) > 0 && h.totalQty > 0 {
		var weighted float64
		for _, b := range h.buckets {
			if b.Price > 0 {
				weighted += b.Price * float64(b.Quantity)
			}
		}
		basePrice = weighted / float64(h.totalQty)
	}
	baseDailyQty = float64(h.totalQty) / float64(max(h.daysInWindow, 1))
	return basePrice, baseDailyQty
}
