package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

var mysqlStatements = []string{
	`CREATE TABLE IF NOT EXISTS product_master (
		sku_id VARCHAR(64) NOT NULL PRIMARY KEY,
		product_name VARCHAR(255) NOT NULL,
		category VARCHAR(128) NOT NULL,
		sub_category VARCHAR(128) NOT NULL DEFAULT '',
		brand VARCHAR(128) NOT NULL DEFAULT '',
		unit_cost_price DOUBLE NOT NULL,
		unit_selling_price DOUBLE NOT NULL,
		INDEX idx_product_category (category)
	);`,
	`CREATE TABLE IF NOT EXISTS sales_transactions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		transaction_date DATETIME(6) NOT NULL,
		sku_id VARCHAR(64) NOT NULL,
		quantity_sold INT NOT NULL,
		sale_price DOUBLE NOT NULL,
		INDEX idx_sales_sku_date (sku_id, transaction_date),
		FOREIGN KEY (sku_id) REFERENCES product_master(sku_id)
	);`,
	`CREATE TABLE IF NOT EXISTS stock_receipts (
		id INT AUTO_INCREMENT PRIMARY KEY,
		receipt_date DATETIME(6) NOT NULL,
		sku_id VARCHAR(64) NOT NULL,
		quantity_received INT NOT NULL,
		supplier_id INT NOT NULL DEFAULT 0,
		unit_cost DOUBLE NOT NULL DEFAULT 0,
		INDEX idx_receipts_sku (sku_id),
		FOREIGN KEY (sku_id) REFERENCES product_master(sku_id)
	);`,
}

var sqliteStatements = []string{
	`CREATE TABLE IF NOT EXISTS product_master (
		sku_id VARCHAR(64) NOT NULL PRIMARY KEY,
		product_name VARCHAR(255) NOT NULL,
		category VARCHAR(128) NOT NULL,
		sub_category VARCHAR(128) NOT NULL DEFAULT '',
		brand VARCHAR(128) NOT NULL DEFAULT '',
		unit_cost_price DOUBLE NOT NULL,
		unit_selling_price DOUBLE NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sales_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transaction_date DATETIME NOT NULL,
		sku_id VARCHAR(64) NOT NULL REFERENCES product_master(sku_id),
		quantity_sold INT NOT NULL,
		sale_price DOUBLE NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS stock_receipts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		receipt_date DATETIME NOT NULL,
		sku_id VARCHAR(64) NOT NULL REFERENCES product_master(sku_id),
		quantity_received INT NOT NULL,
		supplier_id INT NOT NULL DEFAULT 0,
		unit_cost DOUBLE NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_product_category ON product_master (category);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sku_date ON sales_transactions (sku_id, transaction_date);`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_sku ON stock_receipts (sku_id);`,
}

// AutoMigrateLedger creates the ledger tables read by the pricing engine if they do not exist.
// Each statement is retried up to retries times, one second apart.
func AutoMigrateLedger(ctx context.Context, dialect string, retries int, db *sql.DB) error {
	var statements []string
	switch dialect {
	case DialectMySQL:
		statements = mysqlStatements
	case DialectSQLite:
		statements = sqliteStatements
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	for _, query := range statements {
		_, err := db.ExecContext(ctx, query)
		for i := 0; err != nil && i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.ExecContext(ctx, query)
		}
		if err != nil {
			return fmt.Errorf("migrate ledger: %w", err)
		}
	}
	return nil
}
