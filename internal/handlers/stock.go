package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shopvoice/internal/models"
	"shopvoice/internal/upstream"
	"shopvoice/internal/voice"
)

// StockCheck reports whether a product is in stock and at what price.
func (h *Handlers) StockCheck(ctx context.Context, args json.RawMessage) (models.ToolResponse, error) {
	var req struct {
		ProductID int `json:"product_id"`
	}
	if err := models.DecodeArguments(args, &req); err != nil || req.ProductID <= 0 {
		return models.Fail("I need the product number to check stock. Which product is it?"), nil
	}

	product, err := h.productInfo(ctx, req.ProductID)
	if errors.Is(err, upstream.ErrNotFound) {
		return models.Fail(fmt.Sprintf("I couldn't find a product with number %d.", req.ProductID)), nil
	}
	if err != nil {
		return models.ToolResponse{}, err
	}

	quantity, err := h.shop.GetStockQuantity(ctx, req.ProductID)
	if errors.Is(err, upstream.ErrNotFound) {
		quantity = 0
	} else if err != nil {
		return models.ToolResponse{}, err
	}

	name := voice.SpeechFriendly(product.Name)
	data := models.StockData{
		ProductID: req.ProductID,
		Name:      name,
		Price:     product.Price.String(),
		Quantity:  quantity,
		InStock:   quantity > 0,
	}

	var message string
	if quantity > 0 {
		message = fmt.Sprintf("Yes, %s is in stock. We have %d available at %s.",
			name, quantity, spokenPrice(data.Price))
	} else {
		message = fmt.Sprintf("I'm sorry, %s is currently out of stock.", name)
	}
	return models.Ok(message, data), nil
}
