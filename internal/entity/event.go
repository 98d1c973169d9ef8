package entity

import "time"

// Ledger event types carried in the message key: ledger.<type>.<sku>
const (
	LedgerEventSale       = "sale"
	LedgerEventReceipt    = "receipt"
	LedgerEventAdjustment = "adjustment"
)

// LedgerEvent is published by the ledger whenever a SKU's sales or stock change.
type LedgerEvent struct {
	SKU        string    `json:"sku_id"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RecommendationEvent is published for every computed recommendation.
type RecommendationEvent struct {
	EventID        string                 `json:"event_id"`
	GeneratedAt    time.Time              `json:"generated_at"`
	Recommendation *PricingRecommendation `json:"recommendation"`
}
