package pricing

import (
	"math"

	"dynamic-pricing-service/internal/entity"
)

// selection records which branch of the optimizer produced the price.
type selection string

const (
	selectedFeasible   selection = "feasible"    // clears stock within the target
	selectedBestEffort selection = "best_effort" // admissible, misses the target
	selectedFloor      selection = "floor"       // nothing admissible on the grid
)

type optimizeInput struct {
	stock         int
	costPrice     float64
	clearanceDays int
	marginFloor   float64
	curve         entity.DemandCurve
	center        float64
	lowerPct      float64
	upperPct      float64
	steps         int
}

// priceCenter picks the price the candidate grid is scaled around.
func priceCenter(listPrice, basePrice, minAllowed float64) float64 {
	switch {
	case listPrice > 0:
		return listPrice
	case basePrice > 0:
		return basePrice
	default:
		return minAllowed
	}
}

// linspace returns n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	step := (stop - start) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// optimize searches the price grid for the highest-margin price that clears stock within
// the clearance target. Prices under the margin floor are never considered.
func optimize(in optimizeInput) (entity.PriceCandidate, selection) {
	minAllowed := in.costPrice * (1 + in.marginFloor)

	var feasible, bestEffort *entity.PriceCandidate
	for _, p := range linspace(in.center*in.lowerPct, in.center*in.upperPct, in.steps) {
		if p < minAllowed {
			continue
		}
		daily := Demand(in.curve, p)
		if daily <= 0 {
			continue
		}
		c := entity.PriceCandidate{
			Price:                p,
			ProjectedDailyDemand: daily,
			DaysToClear:          entity.Days(float64(in.stock) / daily),
			Margin:               p - in.costPrice,
		}
		if float64(c.DaysToClear) <= float64(in.clearanceDays) {
			if feasible == nil || c.Margin > feasible.Margin {
				feasible = &c
			}
		} else if bestEffort == nil || c.Margin > bestEffort.Margin {
			bestEffort = &c
		}
	}

	switch {
	case feasible != nil:
		return *feasible, selectedFeasible
	case bestEffort != nil:
		return *bestEffort, selectedBestEffort
	}

	price := math.Max(minAllowed, in.center*0.9)
	daily := Demand(in.curve, price)
	days := math.Inf(1)
	if daily > 0 {
		days = float64(in.stock) / daily
	}
	return entity.PriceCandidate{
		Price:                price,
		ProjectedDailyDemand: daily,
		DaysToClear:          entity.Days(days),
		Margin:               price - in.costPrice,
	}, selectedFloor
}
