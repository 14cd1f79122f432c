package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"shopvoice/internal/metrics"
	"shopvoice/internal/ratelimit"
)

// ClientIDHeader lets the voice platform identify the calling assistant;
// without it the client IP is the rate-limit key.
const ClientIDHeader = "X-Client-Id"

// RateLimitMiddleware gates all requests before any work is done.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitMiddleware wraps a limiter for use as a Fiber handler.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Check admits or rejects the request, attaching the usual rate headers.
func (m *RateLimitMiddleware) Check(c fiber.Ctx) error {
	clientID := c.Get(ClientIDHeader)
	if clientID == "" {
		clientID = c.IP()
	}

	decision := m.limiter.Admit(clientID)

	c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	if !decision.Allowed {
		metrics.RateLimited.Inc()
		retryAfter := int(decision.Reset.Seconds() + 0.5)
		c.Set("Retry-After", strconv.Itoa(retryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       "Rate limit exceeded. Please try again later.",
			"retry_after": retryAfter,
		})
	}
	return c.Next()
}
