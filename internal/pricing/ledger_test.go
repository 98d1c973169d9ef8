package pricing

import (
	"context"
	"errors"
	"sort"
	"time"

	"dynamic-pricing-service/internal/entity"
)

var errLedgerDown = errors.New("ledger unavailable")

// fakeLedger answers the ledger queries from in-memory rows.
type fakeLedger struct {
	products map[string]*entity.Product
	sales    []entity.SaleRecord
	received map[string]int
	failSKU  string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		products: map[string]*entity.Product{},
		received: map[string]int{},
	}
}

func (f *fakeLedger) addProduct(p entity.Product, received int) {
	f.products[p.SKU] = &p
	f.received[p.SKU] = received
}

func (f *fakeLedger) addSale(sku string, price float64, qty int, at time.Time) {
	f.sales = append(f.sales, entity.SaleRecord{SKU: sku, Price: price, Quantity: qty, SoldAt: at})
}

func (f *fakeLedger) salesFor(sku string, since *time.Time) []entity.SaleRecord {
	var out []entity.SaleRecord
	for _, s := range f.sales {
		if s.SKU != sku {
			continue
		}
		if since != nil && s.SoldAt.Before(*since) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (f *fakeLedger) Product(_ context.Context, sku string) (*entity.Product, error) {
	if sku == f.failSKU {
		return nil, errLedgerDown
	}
	return f.products[sku], nil
}

func (f *fakeLedger) PriceQuantityBuckets(_ context.Context, sku string, since *time.Time) ([]entity.PriceQuantityBucket, error) {
	byPrice := map[float64]int{}
	for _, s := range f.salesFor(sku, since) {
		byPrice[s.Price] += s.Quantity
	}
	out := make([]entity.PriceQuantityBucket, 0, len(byPrice))
	for price, qty := range byPrice {
		out = append(out, entity.PriceQuantityBucket{Price: price, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (f *fakeLedger) TotalQuantitySold(_ context.Context, sku string, since *time.Time) (int, error) {
	total := 0
	for _, s := range f.salesFor(sku, since) {
		total += s.Quantity
	}
	return total, nil
}

func (f *fakeLedger) TotalQuantitySoldAllTime(ctx context.Context, sku string) (int, error) {
	return f.TotalQuantitySold(ctx, sku, nil)
}

func (f *fakeLedger) TotalReceivedAllTime(_ context.Context, sku string) (int, error) {
	return f.received[sku], nil
}

func (f *fakeLedger) MostRecentSale(_ context.Context, sku string) (*entity.SaleRecord, error) {
	var last *entity.SaleRecord
	for _, s := range f.salesFor(sku, nil) {
		if last == nil || s.SoldAt.After(last.SoldAt) {
			last = &s
		}
	}
	return last, nil
}

func (f *fakeLedger) SaleDateRange(_ context.Context, sku string) (time.Time, time.Time, bool, error) {
	sales := f.salesFor(sku, nil)
	if len(sales) == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	first, last := sales[0].SoldAt, sales[0].SoldAt
	for _, s := range sales[1:] {
		if s.SoldAt.Before(first) {
			first = s.SoldAt
		}
		if s.SoldAt.After(last) {
			last = s.SoldAt
		}
	}
	return first, last, true, nil
}

func approxEqual(a, b, tol float64) bool {
	if a > b {
		return a-b <= tol
	}
	return b-a <= tol
}
