package api

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type JwtCustomClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RateLimit configures the per-client request limiter.
type RateLimit struct {
	RPS   float64
	Burst int
}

// RegisterRoutes mounts the pricing routes. Everything except health requires an HS256 token.
func RegisterRoutes(e *echo.Echo, h *PricingHandler, jwtKey []byte, limit RateLimit) {
	e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(limit)))

	e.GET("/pricing/health", h.Health)

	g := e.Group("/pricing", echojwt.WithConfig(echojwt.Config{
		SigningKey:    jwtKey,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JwtCustomClaims)
		},
	}))
	g.POST("/recommend", h.Recommend)
	g.POST("/recommend/batch", h.RecommendBatch)
	g.GET("/worst-performers", h.WorstPerformers)
}

func rateLimiterConfig(limit RateLimit) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(limit.RPS),
				Burst:     limit.Burst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"error": "could not identify client"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}
}

// requester names the caller from the validated token, if any.
func requester(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return ""
	}
	if claims.Email != "" {
		return claims.Email
	}
	return claims.Name
}
