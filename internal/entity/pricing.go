package entity

import (
	"encoding/json"
	"math"
	"strconv"
)

// Status tags the code path that produced a recommendation.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusNoStock        Status = "no_stock"
	StatusNoSalesHistory Status = "no_sales_history"
	StatusError          Status = "error"
)

// Days is a day count that may be +Inf. It is encoded as the JSON string "Infinity" when infinite.
type Days float64

// IsInf reports whether the day count is unbounded.
func (d Days) IsInf() bool {
	return math.IsInf(float64(d), 1)
}

func (d Days) MarshalJSON() ([]byte, error) {
	if d.IsInf() {
		return []byte(`"Infinity"`), nil
	}
	return strconv.AppendFloat(nil, float64(d), 'f', -1, 64), nil
}

func (d *Days) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*d = Days(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Days(v)
	return nil
}

// DemandCurve anchors the constant-elasticity demand curve.
type DemandCurve struct {
	BasePrice    float64 `json:"base_price"`
	BaseDailyQty float64 `json:"base_daily_qty"`
	Elasticity   float64 `json:"elasticity"`
}

// PriceCandidate is one evaluated point of the price grid.
type PriceCandidate struct {
	Price                float64 `json:"price"`
	ProjectedDailyDemand float64 `json:"projected_daily_demand"`
	DaysToClear          Days    `json:"projected_days_to_clear"`
	Margin               float64 `json:"margin"`
}

// Quote carries the pricing fields of a recommendation.
type Quote struct {
	ProductName          string   `json:"product_name"`
	Category             string   `json:"category"`
	CurrentPrice         float64  `json:"current_price"`
	RecommendedPrice     float64  `json:"recommended_price"`
	DiscountPercentage   float64  `json:"discount_percentage"`
	CostPrice            float64  `json:"cost_price"`
	MarginAfterDiscount  float64  `json:"margin_after_discount"`
	MarginFloorUsed      float64  `json:"margin_floor_used"`
	CurrentInventory     int      `json:"current_inventory"`
	ClearanceDaysTarget  int      `json:"clearance_days_target"`
	ProjectedDailySales  float64  `json:"projected_daily_sales"`
	ProjectedDaysToClear Days     `json:"projected_days_to_clear"`
	ElasticityEstimate   *float64 `json:"elasticity_estimate"`
	BasePriceUsed        *float64 `json:"base_price_used,omitempty"`
	BaseDailyQty         *float64 `json:"base_daily_qty,omitempty"`
}

// PricingRecommendation is the result of one pricing computation. Quote is nil for the
// error and no_stock statuses.
type PricingRecommendation struct {
	SKU     string `json:"sku_id"`
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	*Quote
}
