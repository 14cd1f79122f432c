package upstream

import (
	"context"
	"errors"
	"net/url"
	"strconv"
)

// Tracking holds the shipment info attached to an order.
type Tracking struct {
	CarrierID      FlexInt `json:"id_carrier"`
	TrackingNumber string  `json:"tracking_number"`
}

// GetCarriers fetches the whole carrier table in one call. The set is small;
// callers cache it wholesale rather than per id.
func (c *Client) GetCarriers(ctx context.Context) (map[int]string, error) {
	params := url.Values{}
	params.Set("display", "[id,name]")

	var resp struct {
		Carriers []struct {
			ID   FlexInt `json:"id"`
			Name string  `json:"name"`
		} `json:"carriers"`
	}
	if err := c.getJSON(ctx, "carriers", "", params, &resp); err != nil {
		return nil, err
	}

	names := make(map[int]string, len(resp.Carriers))
	for _, carrier := range resp.Carriers {
		names[int(carrier.ID)] = carrier.Name
	}
	return names, nil
}

// GetOrderTracking returns the carrier link for an order, carrying the
// tracking number.
func (c *Client) GetOrderTracking(ctx context.Context, orderID int) (*Tracking, error) {
	params := url.Values{}
	listFilter(params, "id_order", strconv.Itoa(orderID))
	params.Set("display", "[id,id_carrier,tracking_number]")

	var resp struct {
		OrderCarriers []Tracking `json:"order_carriers"`
	}
	if err := c.getJSON(ctx, "order_carriers", "", params, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(resp.OrderCarriers) == 0 {
		return nil, ErrNotFound
	}

	// Orders occasionally carry several carrier links after a relabel;
	// the last one is current.
	return &resp.OrderCarriers[len(resp.OrderCarriers)-1], nil
}
