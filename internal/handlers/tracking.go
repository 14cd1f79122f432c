package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shopvoice/internal/metrics"
	"shopvoice/internal/models"
	"shopvoice/internal/upstream"
)

// TrackOrder returns the carrier and tracking number for a shipped order.
func (h *Handlers) TrackOrder(ctx context.Context, args json.RawMessage) (models.ToolResponse, error) {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := models.DecodeArguments(args, &req); err != nil || req.Reference == "" {
		return models.Fail("I need your order reference to find the tracking information."), nil
	}

	reference := strings.ToUpper(strings.TrimSpace(req.Reference))
	if !referencePattern.MatchString(reference) {
		return models.Fail("That doesn't look like a valid order reference. It should be nine letters."), nil
	}

	order, err := h.shop.GetOrderByReference(ctx, reference)
	if errors.Is(err, upstream.ErrNotFound) {
		return models.Fail(fmt.Sprintf("I couldn't find an order with reference %s.", spellOut(reference))), nil
	}
	if err != nil {
		return models.ToolResponse{}, err
	}

	tracking, err := h.shop.GetOrderTracking(ctx, int(order.ID))
	if errors.Is(err, upstream.ErrNotFound) || (err == nil && tracking.TrackingNumber == "") {
		return models.Fail("Your order doesn't have tracking information yet. It may not have shipped."), nil
	}
	if err != nil {
		return models.ToolResponse{}, err
	}

	carrier := h.carrierName(ctx, int(tracking.CarrierID))

	data := models.TrackingData{
		Reference:      reference,
		Carrier:        carrier,
		TrackingNumber: tracking.TrackingNumber,
	}
	message := fmt.Sprintf("Your order shipped with %s. The tracking number is %s.",
		carrier, spellOut(tracking.TrackingNumber))
	return models.Ok(message, data), nil
}

// carrierName resolves a carrier id through the carrier cache. A stale
// cache is refreshed in the background; the current request is answered
// from the snapshot at hand, falling back to the bare id when the name was
// never loaded.
func (h *Handlers) carrierName(ctx context.Context, carrierID int) string {
	if h.carrierCache.Stale() && h.carrierCache.BeginRefresh() {
		go func() {
			// Detached from the request context: the reply must not wait
			// for this, and a canceled request must not abort it.
			names, err := h.shop.GetCarriers(context.WithoutCancel(ctx))
			if err != nil {
				h.log.Warn("carrier refresh failed", "error", err)
				h.carrierCache.CompleteRefresh(nil)
				return
			}
			h.carrierCache.CompleteRefresh(names)
		}()
	}

	if name, ok := h.carrierCache.Name(carrierID); ok {
		metrics.CacheHits.WithLabelValues("carrier").Inc()
		return name
	}
	metrics.CacheMisses.WithLabelValues("carrier").Inc()
	return "carrier " + strconv.Itoa(carrierID)
}
