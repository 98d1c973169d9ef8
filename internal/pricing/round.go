package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"dynamic-pricing-service/internal/entity"
)

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func round2(v float64) float64 { return round(v, 2) }

func round4(v float64) float64 { return round(v, 4) }

func roundDays(d entity.Days) entity.Days {
	return entity.Days(round2(float64(d)))
}

// roundPrice rounds to cents, rounding up instead when half-up rounding would fall under floor.
func roundPrice(price, floor float64) float64 {
	r := round2(price)
	if r < floor && !math.IsInf(price, 0) && !math.IsNaN(price) {
		r = decimal.NewFromFloat(price).RoundCeil(2).InexactFloat64()
	}
	return r
}

// discountPercentage is the markdown of recommended against list, never negative.
func discountPercentage(listPrice, recommended float64) float64 {
	denom := listPrice
	if denom == 0 {
		denom = 1
	}
	return round2(math.Max(0, (listPrice-recommended)/denom*100))
}
