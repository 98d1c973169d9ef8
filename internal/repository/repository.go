package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dynamic-pricing-service/internal/entity"
)

// LedgerRepository reads products, sales and stock receipts from the ledger database.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new instance of LedgerRepository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db}
}

// Product fetches the catalog row for a SKU. It returns nil, nil when the SKU is unknown.
func (r *LedgerRepository) Product(ctx context.Context, sku string) (*entity.Product, error) {
	query := `SELECT sku_id, product_name, category, sub_category, brand, unit_cost_price, unit_selling_price
		FROM product_master WHERE sku_id = ?`
	var p entity.Product
	err := r.db.QueryRowContext(ctx, query, sku).Scan(&p.SKU, &p.Name, &p.Category, &p.SubCategory, &p.Brand, &p.CostPrice, &p.ListPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// PriceQuantityBuckets sums the quantity sold per distinct sale price since the cutoff.
func (r *LedgerRepository) PriceQuantityBuckets(ctx context.Context, sku string, since *time.Time) ([]entity.PriceQuantityBucket, error) {
	query := `SELECT sale_price, SUM(quantity_sold) FROM sales_transactions WHERE sku_id = ?`
	args := []interface{}{sku}
	if since != nil {
		query += ` AND transaction_date >= ?`
		args = append(args, since.UTC())
	}
	query += ` GROUP BY sale_price ORDER BY sale_price`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []entity.PriceQuantityBucket
	for rows.Next() {
		var b entity.PriceQuantityBucket
		if err := rows.Scan(&b.Price, &b.Quantity); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// TotalQuantitySold sums every sale line since the cutoff; a nil cutoff covers all history.
func (r *LedgerRepository) TotalQuantitySold(ctx context.Context, sku string, since *time.Time) (int, error) {
	query := `SELECT COALESCE(SUM(quantity_sold), 0) FROM sales_transactions WHERE sku_id = ?`
	args := []interface{}{sku}
	if since != nil {
		query += ` AND transaction_date >= ?`
		args = append(args, since.UTC())
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *LedgerRepository) TotalQuantitySoldAllTime(ctx context.Context, sku string) (int, error) {
	return r.TotalQuantitySold(ctx, sku, nil)
}

func (r *LedgerRepository) TotalReceivedAllTime(ctx context.Context, sku string) (int, error) {
	query := `SELECT COALESCE(SUM(quantity_received), 0) FROM stock_receipts WHERE sku_id = ?`
	var total int
	if err := r.db.QueryRowContext(ctx, query, sku).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MostRecentSale returns the latest sale line of a SKU, or nil when it was never sold.
func (r *LedgerRepository) MostRecentSale(ctx context.Context, sku string) (*entity.SaleRecord, error) {
	query := `SELECT sku_id, sale_price, quantity_sold, transaction_date FROM sales_transactions
		WHERE sku_id = ? ORDER BY transaction_date DESC, id DESC LIMIT 1`
	var s entity.SaleRecord
	var soldAt ledgerTime
	err := r.db.QueryRowContext(ctx, query, sku).Scan(&s.SKU, &s.Price, &s.Quantity, &soldAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.SoldAt = soldAt.Time
	return &s, nil
}

// SaleDateRange returns the first and last sale timestamps of a SKU.
func (r *LedgerRepository) SaleDateRange(ctx context.Context, sku string) (time.Time, time.Time, bool, error) {
	query := `SELECT MIN(transaction_date), MAX(transaction_date) FROM sales_transactions WHERE sku_id = ?`
	var first, last ledgerTime
	if err := r.db.QueryRowContext(ctx, query, sku).Scan(&first, &last); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !first.Valid || !last.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return first.Time, last.Time, true, nil
}

// WorstPerformers ranks products by all-time quantity sold, lowest first. Products that
// never sold rank with zero.
func (r *LedgerRepository) WorstPerformers(ctx context.Context, limit int) ([]entity.PerformerRank, error) {
	query := `SELECT p.sku_id, p.product_name, COALESCE(SUM(s.quantity_sold), 0) AS quantity
		FROM product_master p
		LEFT JOIN sales_transactions s ON s.sku_id = p.sku_id
		GROUP BY p.sku_id, p.product_name
		ORDER BY quantity ASC, p.sku_id ASC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("rank worst performers: %w", err)
	}
	defer rows.Close()

	var ranks []entity.PerformerRank
	for rows.Next() {
		var pr entity.PerformerRank
		if err := rows.Scan(&pr.SKU, &pr.Name, &pr.QuantitySold); err != nil {
			return nil, err
		}
		ranks = append(ranks, pr)
	}
	return ranks, rows.Err()
}
