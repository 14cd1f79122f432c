// Package handlers implements the voice tools. Each tool takes a JSON
// arguments blob and returns a ToolResponse whose message is safe to read
// aloud.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"shopvoice/internal/cache"
	"shopvoice/internal/config"
	"shopvoice/internal/metrics"
	"shopvoice/internal/models"
	"shopvoice/internal/search"
	"shopvoice/internal/upstream"
)

const (
	productCacheTTL  = 5 * time.Minute
	productCacheSize = 100
	carrierCacheTTL  = time.Hour
)

// genericFailure is spoken when something unexpected broke. Raw upstream
// errors never reach the caller; they would leak internals and sound like
// garbage through a synthesizer.
const genericFailure = "I'm sorry, I couldn't look that up right now. Please try again in a moment."

// ShopAPI is the slice of the upstream client the tools use. Satisfied by
// *upstream.Client; tests substitute a fake.
type ShopAPI interface {
	search.Catalog
	GetOrderByReference(ctx context.Context, reference string) (*upstream.Order, error)
	GetOrdersForCustomer(ctx context.Context, customerID int) ([]upstream.Order, error)
	GetOrderRows(ctx context.Context, orderID int) ([]upstream.OrderRow, error)
	GetCustomerByEmail(ctx context.Context, email string) (*upstream.Customer, error)
	GetCustomersByPhone(ctx context.Context, phone string) ([]upstream.Customer, error)
	GetStockQuantity(ctx context.Context, productID int) (int, error)
	GetCarriers(ctx context.Context) (map[int]string, error)
	GetOrderTracking(ctx context.Context, orderID int) (*upstream.Tracking, error)
	CreateTicket(ctx context.Context, email, message string) (int, error)
}

// Handlers owns the per-process state shared by all tools: the caches and
// the search engine. Constructed once at startup and injected into the
// router; tests build a fresh one per test.
type Handlers struct {
	cfg          *config.Config
	shop         ShopAPI
	engine       *search.Engine
	productCache *cache.TTLCache[int, upstream.Product]
	carrierCache *cache.CarrierCache
	log          *slog.Logger
}

// New wires the tool handlers with fresh caches.
func New(cfg *config.Config, shop ShopAPI, h *config.Heuristics, log *slog.Logger) *Handlers {
	return &Handlers{
		cfg:          cfg,
		shop:         shop,
		engine:       search.NewEngine(shop, h, cfg.ShopURL, log),
		productCache: cache.NewTTLCache[int, upstream.Product](productCacheTTL, productCacheSize),
		carrierCache: cache.NewCarrierCache(carrierCacheTTL),
		log:          log,
	}
}

// ToolFunc executes one tool call. Returned errors are unexpected failures;
// validation problems and empty lookups come back as Success=false
// responses instead.
type ToolFunc func(ctx context.Context, args json.RawMessage) (models.ToolResponse, error)

// Tools maps tool names to their implementations.
func (h *Handlers) Tools() map[string]ToolFunc {
	return map[string]ToolFunc{
		"product_search": h.ProductSearch,
		"order_status":   h.OrderStatus,
		"stock_check":    h.StockCheck,
		"track_order":    h.TrackOrder,
		"create_ticket":  h.CreateTicket,
	}
}

// Dispatch runs the named tool with uniform instrumentation and the
// outermost error conversion: whatever goes wrong, the caller receives a
// well-formed speakable response, because an error mid-call is dead air on
// the phone.
func (h *Handlers) Dispatch(ctx context.Context, name string, args json.RawMessage) models.ToolResponse {
	tool, ok := h.Tools()[name]
	if !ok {
		metrics.ToolCalls.WithLabelValues(name, "unknown").Inc()
		return models.Fail("I don't know how to help with that request.")
	}

	start := time.Now()
	resp, err := tool(ctx, args)
	elapsed := time.Since(start)

	metrics.ToolDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if elapsed > h.cfg.SlowToolWarn {
		h.log.Warn("slow tool call", "tool", name, "elapsed", elapsed)
	}

	if err != nil {
		metrics.ToolCalls.WithLabelValues(name, "error").Inc()
		h.log.Error("tool call failed", "tool", name, "error", err)
		return models.Fail(genericFailure)
	}

	outcome := "ok"
	if !resp.Success {
		outcome = "miss"
	}
	metrics.ToolCalls.WithLabelValues(name, outcome).Inc()
	return resp
}

// productInfo fetches name and price for a product through the product
// cache. Shared by the stock-check and order-item paths.
func (h *Handlers) productInfo(ctx context.Context, id int) (upstream.Product, error) {
	if p, ok := h.productCache.Get(id); ok {
		metrics.CacheHits.WithLabelValues("product").Inc()
		return p, nil
	}
	metrics.CacheMisses.WithLabelValues("product").Inc()

	p, err := h.shop.GetProduct(ctx, id)
	if err != nil {
		return upstream.Product{}, err
	}
	h.productCache.Set(id, *p)
	return *p, nil
}
