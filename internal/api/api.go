package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"dynamic-pricing-service/internal/entity"
	"dynamic-pricing-service/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

// PricingHandler handles pricing-related requests.
type PricingHandler struct {
	pricingService *service.PricingService
}

// NewPricingHandler creates a new PricingHandler instance.
func NewPricingHandler(pricingService *service.PricingService) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
	}
}

type recommendRequest struct {
	SKU string `json:"sku_id"`
	entity.PricingOverrides
}

type batchRequest struct {
	SKUs []string `json:"sku_ids"`
	entity.PricingOverrides
}

type batchResponse struct {
	Count           int                             `json:"count"`
	Recommendations []*entity.PricingRecommendation `json:"recommendations"`
}

// Recommend prices one SKU --> POST /pricing/recommend
func (h *PricingHandler) Recommend(c echo.Context) error {
	var req recommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
	}
	if req.SKU == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "sku_id is required"})
	}

	params, err := h.pricingService.ResolveParams(req.PricingOverrides)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rec, err := h.pricingService.Recommend(c.Request().Context(), req.SKU, params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if rec.Status == entity.StatusError {
		return c.JSON(http.StatusNotFound, rec)
	}
	return c.JSON(http.StatusOK, rec)
}

// RecommendBatch prices several SKUs --> POST /pricing/recommend/batch
func (h *PricingHandler) RecommendBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
	}
	if len(req.SKUs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "sku_ids is required"})
	}

	params, err := h.pricingService.ResolveParams(req.PricingOverrides)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	logger.Info().Str("requested_by", requester(c)).Msgf("Pricing batch of %d SKUs", len(req.SKUs))
	recs, err := h.pricingService.RecommendBatch(c.Request().Context(), req.SKUs, params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, batchResponse{Count: len(recs), Recommendations: recs})
}

// WorstPerformers prices the slowest-selling SKUs --> GET /pricing/worst-performers
func (h *PricingHandler) WorstPerformers(c echo.Context) error {
	var overrides entity.PricingOverrides
	var limit int

	err := errors.Join(
		queryInt(c, "limit", &limit),
		queryIntPtr(c, "clearance_days", &overrides.ClearanceDays),
		queryFloatPtr(c, "margin_floor", &overrides.MarginFloor),
		queryIntPtr(c, "lookback_days", &overrides.LookbackDays),
	)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if limit < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must not be negative"})
	}

	params, err := h.pricingService.ResolveParams(overrides)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	recs, err := h.pricingService.RecommendWorstPerformers(c.Request().Context(), limit, params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, batchResponse{Count: len(recs), Recommendations: recs})
}

// Health reports liveness --> GET /pricing/health
func (h *PricingHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "dynamic-pricing-service",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func queryInt(c echo.Context, name string, dst *int) error {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("invalid " + name)
	}
	*dst = v
	return nil
}

func queryIntPtr(c echo.Context, name string, dst **int) error {
	if c.QueryParam(name) == "" {
		return nil
	}
	var v int
	if err := queryInt(c, name, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func queryFloatPtr(c echo.Context, name string, dst **float64) error {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.New("invalid " + name)
	}
	*dst = &v
	return nil
}
