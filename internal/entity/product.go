package entity

import "time"

// Product is a catalog row of the ledger.
type Product struct {
	SKU         string  `json:"sku_id"`
	Name        string  `json:"product_name"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Brand       string  `json:"brand"`
	CostPrice   float64 `json:"unit_cost_price"`
	ListPrice   float64 `json:"unit_selling_price"`
}

// SaleRecord is one historical transaction line.
type SaleRecord struct {
	SKU      string    `json:"sku_id"`
	Price    float64   `json:"sale_price"`
	Quantity int       `json:"quantity_sold"`
	SoldAt   time.Time `json:"transaction_date"`
}

// PriceQuantityBucket is the total quantity sold at one distinct price.
type PriceQuantityBucket struct {
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// PerformerRank is a SKU ranked by all-time quantity sold.
type PerformerRank struct {
	SKU          string `json:"sku_id"`
	Name         string `json:"product_name"`
	QuantitySold int    `json:"quantity_sold"`
}

/*
Schema MySQL for the ledger tables (see internal/migrations):
CREATE TABLE `product_master` (
  `sku_id` varchar(64) NOT NULL PRIMARY KEY,
  `product_name` varchar(255) NOT NULL,
  `category` varchar(128) NOT NULL,
  `sub_category` varchar(128) NOT NULL,
  `brand` varchar(128) NOT NULL,
  `unit_cost_price` double NOT NULL,
  `unit_selling_price` double NOT NULL
);
CREATE TABLE `sales_transactions` (
  `id` int AUTO_INCREMENT PRIMARY KEY,
  `transaction_date` datetime NOT NULL,
  `sku_id` varchar(64) NOT NULL,
  `quantity_sold` int NOT NULL,
  `sale_price` double NOT NULL
);
CREATE TABLE `stock_receipts` (
  `id` int AUTO_INCREMENT PRIMARY KEY,
  `receipt_date` datetime NOT NULL,
  `sku_id` varchar(64) NOT NULL,
  `quantity_received` int NOT NULL,
  `supplier_id` int NOT NULL,
  `unit_cost` double NOT NULL
);
*/
