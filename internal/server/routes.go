package server

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopvoice/internal/handlers"
	"shopvoice/internal/middleware"
	"shopvoice/internal/models"
	"shopvoice/internal/ratelimit"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(tools *handlers.Handlers, log *slog.Logger) {
	// Initialize middleware
	signature := middleware.NewSignatureMiddleware(s.Cfg.WebhookSecret, log)
	rate := middleware.NewRateLimitMiddleware(
		ratelimit.New(s.Cfg.RateLimitMax, s.Cfg.RateLimitWindow))

	wh := newWebhookHandler(tools, log)

	// Platform webhook: one envelope, possibly several tool calls.
	s.App.Post("/webhook", rate.Check, signature.Verify, wh.Envelope)

	// Bare per-tool paths for platforms that post arguments directly.
	s.App.Post("/tools/:name", rate.Check, signature.Verify, wh.Direct)

	// Operational endpoints, unauthenticated.
	s.App.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// webhookHandler translates HTTP bodies into tool dispatches.
type webhookHandler struct {
	tools *handlers.Handlers
	log   *slog.Logger
}

func newWebhookHandler(tools *handlers.Handlers, log *slog.Logger) *webhookHandler {
	return &webhookHandler{tools: tools, log: log}
}

// Envelope handles the platform webhook body. Tool-call messages get one
// result per call; every other event type is acknowledged so the platform
// does not retry it.
func (h *webhookHandler) Envelope(c fiber.Ctx) error {
	log := h.log.With("request_id", c.Locals(requestIDKey))

	var env models.ToolCallEnvelope
	if err := json.Unmarshal(c.Body(), &env); err != nil {
		log.Warn("malformed webhook body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if len(env.Message.ToolCalls) == 0 {
		return c.JSON(fiber.Map{"status": "ok"})
	}

	results := make([]models.ToolCallResult, 0, len(env.Message.ToolCalls))
	for _, call := range env.Message.ToolCalls {
		resp := h.tools.Dispatch(c.Context(), call.Function.Name, call.Function.Arguments)

		// The platform wants each result as a string, not an object.
		encoded, err := json.Marshal(resp)
		if err != nil {
			log.Error("encode tool result", "tool", call.Function.Name, "error", err)
			encoded = []byte(`{"success":false}`)
		}
		results = append(results, models.ToolCallResult{
			ToolCallID: call.ID,
			Result:     string(encoded),
		})
	}

	return c.JSON(models.WebhookResponse{Results: results})
}

// Direct runs a single tool from a bare arguments body, for manual testing
// and platforms without the envelope format.
func (h *webhookHandler) Direct(c fiber.Ctx) error {
	name := c.Params("name")
	resp := h.tools.Dispatch(c.Context(), name, json.RawMessage(c.Body()))
	return c.JSON(resp)
}
