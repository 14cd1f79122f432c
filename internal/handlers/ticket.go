package handlers

import (
	"context"
	"encoding/json"
	"strings"

	"shopvoice/internal/models"
)

// CreateTicket opens a customer-service ticket with the caller's message.
func (h *Handlers) CreateTicket(ctx context.Context, args json.RawMessage) (models.ToolResponse, error) {
	var req struct {
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := models.DecodeArguments(args, &req); err != nil {
		return models.Fail("I need your email address and a short message to open a ticket."), nil
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return models.Fail("That email address doesn't look right. Could you repeat it?"), nil
	}
	if strings.TrimSpace(req.Message) == "" {
		return models.Fail("What would you like the ticket to say?"), nil
	}

	ticketID, err := h.shop.CreateTicket(ctx, email, strings.TrimSpace(req.Message))
	if err != nil {
		return models.ToolResponse{}, err
	}

	return models.Ok(
		"I've opened a ticket for you. Our support team will reply to your email.",
		models.TicketData{TicketID: ticketID},
	), nil
}
