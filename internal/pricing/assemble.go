package pricing

import (
	"math"

	"dynamic-pricing-service/internal/entity"
)

func notFound(sku string) *entity.PricingRecommendation {
	return &entity.PricingRecommendation{
		SKU:    sku,
		Status: entity.StatusError,
		Error:  "SKU not found",
	}
}

func noStock(sku string) *entity.PricingRecommendation {
	return &entity.PricingRecommendation{
		SKU:     sku,
		Status:  entity.StatusNoStock,
		Message: "No stock available for pricing",
	}
}

// noSalesHistory quotes the list price, or the margin floor when that is higher.
func noSalesHistory(product *entity.Product, stock int, params entity.PricingParams) *entity.PricingRecommendation {
	floor := params.MinAllowedPrice(product.CostPrice)
	recommended := roundPrice(math.Max(product.ListPrice, floor), floor)
	return &entity.PricingRecommendation{
		SKU:    product.SKU,
		Status: entity.StatusNoSalesHistory,
		Quote: &entity.Quote{
			ProductName:          product.Name,
			Category:             product.Category,
			CurrentPrice:         round2(product.ListPrice),
			RecommendedPrice:     recommended,
			DiscountPercentage:   discountPercentage(product.ListPrice, recommended),
			CostPrice:            round2(product.CostPrice),
			MarginAfterDiscount:  round2(recommended - product.CostPrice),
			MarginFloorUsed:      params.MarginFloor,
			CurrentInventory:     stock,
			ClearanceDaysTarget:  params.ClearanceDays,
			ProjectedDailySales:  0,
			ProjectedDaysToClear: entity.Days(math.Inf(1)),
		},
	}
}

func success(product *entity.Product, stock int, params entity.PricingParams, curve entity.DemandCurve, best entity.PriceCandidate) *entity.PricingRecommendation {
	recommended := roundPrice(best.Price, params.MinAllowedPrice(product.CostPrice))
	elasticity := round4(curve.Elasticity)
	basePrice := round2(curve.BasePrice)
	baseDailyQty := round2(curve.BaseDailyQty)

	return &entity.PricingRecommendation{
		SKU:    product.SKU,
		Status: entity.StatusSuccess,
		Quote: &entity.Quote{
			ProductName:          product.Name,
			Category:             product.Category,
			CurrentPrice:         round2(product.ListPrice),
			RecommendedPrice:     recommended,
			DiscountPercentage:   discountPercentage(product.ListPrice, recommended),
			CostPrice:            round2(product.CostPrice),
			MarginAfterDiscount:  round2(recommended - product.CostPrice),
			MarginFloorUsed:      params.MarginFloor,
			CurrentInventory:     stock,
			ClearanceDaysTarget:  params.ClearanceDays,
			ProjectedDailySales:  round2(best.ProjectedDailyDemand),
			ProjectedDaysToClear: roundDays(best.DaysToClear),
			ElasticityEstimate:   &elasticity,
			BasePriceUsed:        &basePrice,
			BaseDailyQty:         &baseDailyQty,
		},
	}
}
