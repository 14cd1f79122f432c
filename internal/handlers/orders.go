package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"shopvoice/internal/models"
	"shopvoice/internal/upstream"
	"shopvoice/internal/voice"
)

// Order references are nine uppercase letters; callers usually read them
// off a confirmation email.
var referencePattern = regexp.MustCompile(`^[A-Z]{9}$`)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// orderStates maps the shop's numeric order states to speakable phrasing.
var orderStates = map[int]string{
	1:  "awaiting payment",
	2:  "payment accepted",
	3:  "being prepared",
	4:  "shipped",
	5:  "delivered",
	6:  "canceled",
	7:  "refunded",
	8:  "payment failed",
	9:  "on backorder",
	10: "awaiting bank transfer",
}

func spokenState(state int) string {
	if s, ok := orderStates[state]; ok {
		return s
	}
	return "being processed"
}

// OrderStatus looks up an order by reference, email, or phone number and
// reports its state and line items.
func (h *Handlers) OrderStatus(ctx context.Context, args json.RawMessage) (models.ToolResponse, error) {
	var req struct {
		Reference string `json:"reference"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	}
	if err := models.DecodeArguments(args, &req); err != nil {
		return models.Fail("I need an order reference, an email address, or a phone number to look that up."), nil
	}

	switch {
	case req.Reference != "":
		return h.orderByReference(ctx, req.Reference)
	case req.Email != "":
		return h.orderByEmail(ctx, req.Email)
	case req.Phone != "":
		return h.orderByPhone(ctx, req.Phone)
	}
	return models.Fail("I need an order reference, an email address, or a phone number to look that up."), nil
}

func (h *Handlers) orderByReference(ctx context.Context, reference string) (models.ToolResponse, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
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
	return h.describeOrder(ctx, order)
}

func (h *Handlers) orderByEmail(ctx context.Context, email string) (models.ToolResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return models.Fail("That email address doesn't look right. Could you repeat it?"), nil
	}

	customer, err := h.shop.GetCustomerByEmail(ctx, email)
	if errors.Is(err, upstream.ErrNotFound) {
		return models.Fail("I couldn't find a customer with that email address."), nil
	}
	if err != nil {
		return models.ToolResponse{}, err
	}
	return h.latestOrderFor(ctx, int(customer.ID))
}

func (h *Handlers) orderByPhone(ctx context.Context, phone string) (models.ToolResponse, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '+' {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 6 {
		return models.Fail("That phone number seems too short. Could you repeat it?"), nil
	}

	customers, err := h.shop.GetCustomersByPhone(ctx, digits)
	if errors.Is(err, upstream.ErrNotFound) {
		return models.Fail("I couldn't find a customer with that phone number."), nil
	}
	if err != nil {
		return models.ToolResponse{}, err
	}
	return h.latestOrderFor(ctx, int(customers[0].ID))
}

func (h *Handlers) latestOrderFor(ctx context.Context, customerID int) (models.ToolResponse, error) {
	orders, err := h.shop.GetOrdersForCustomer(ctx, customerID)
	if err != nil && !errors.Is(err, upstream.ErrNotFound) {
		return models.ToolResponse{}, err
	}
	if len(orders) == 0 {
		return models.Fail("I couldn't find any orders for that customer."), nil
	}
	return h.describeOrder(ctx, &orders[0])
}

func (h *Handlers) describeOrder(ctx context.Context, order *upstream.Order) (models.ToolResponse, error) {
	data := models.OrderData{
		Reference: order.Reference,
		Status:    spokenState(int(order.CurrentState)),
		Total:     order.TotalPaid.String(),
		Placed:    order.DateAdd,
	}

	// Line items are decoration; if they can't be fetched the status alone
	// is still a useful answer.
	rows, err := h.shop.GetOrderRows(ctx, int(order.ID))
	if err != nil {
		h.log.Warn("order rows fetch failed", "order", int(order.ID), "error", err)
	}
	for _, row := range rows {
		name := row.Name
		if p, err := h.productInfo(ctx, int(row.ProductID)); err == nil {
			name = p.Name
		}
		data.Items = append(data.Items, models.OrderItem{
			Name:     voice.SpeechFriendly(voice.ShortenForListing(name)),
			Quantity: int(row.Quantity),
		})
	}

	message := fmt.Sprintf("Your order %s is %s. The total is %s.",
		spellOut(order.Reference), data.Status, spokenPrice(data.Total))
	return models.Ok(message, data), nil
}

// spellOut spaces the letters of a reference so the synthesizer reads them
// one by one.
func spellOut(reference string) string {
	return strings.Join(strings.Split(reference, ""), " ")
}
