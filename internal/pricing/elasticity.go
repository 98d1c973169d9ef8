package pricing

import (
	"math"

	"dynamic-pricing-service/internal/entity"
)

const (
	FallbackElasticity = -1.2
	MinElasticity      = -5.0
	MaxElasticity      = -0.2
)

// EstimateElasticity fits ln(quantity) against ln(price) and returns the clamped slope.
// Sparse or flat price data yields FallbackElasticity.
func EstimateElasticity(buckets []entity.PriceQuantityBucket) float64 {
	xs := make([]float64, 0, len(buckets))
	ys := make([]float64, 0, len(buckets))
	var firstPrice float64
	varies := false
	for _, b := range buckets {
		if b.Price <= 0 || b.Quantity <= 0 {
			continue
		}
		if len(xs) == 0 {
			firstPrice = b.Price
		} else if b.Price != firstPrice {
			varies = true
		}
		xs = append(xs, math.Log(b.Price))
		ys = append(ys, math.Log(float64(b.Quantity)))
	}
	if len(xs) < 2 || !varies {
		return FallbackElasticity
	}

	b, ok := olsSlope(xs, ys)
	if !ok {
		return FallbackElasticity
	}
	return math.Max(MinElasticity, math.Min(b, MaxElasticity))
}

// olsSlope is the ordinary least squares slope of ys on xs.
func olsSlope(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, false
	}
	b := sxy / sxx
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return 0, false
	}
	return b, true
}
