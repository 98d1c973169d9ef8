package pricing

import (
	"math"

	"dynamic-pricing-service/internal/entity"
)

// Demand projects daily sales at price on the constant-elasticity curve.
func Demand(curve entity.DemandCurve, price float64) float64 {
	if price <= 0 || curve.BasePrice <= 0 || curve.BaseDailyQty <= 0 {
		return 0
	}
	d := curve.BaseDailyQty * math.Pow(price/curve.BasePrice, curve.Elasticity)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}
