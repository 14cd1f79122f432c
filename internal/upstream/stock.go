package upstream

import (
	"context"
	"net/url"
	"strconv"
)

// GetStockQuantity returns the available quantity for a product.
func (c *Client) GetStockQuantity(ctx context.Context, productID int) (int, error) {
	params := url.Values{}
	listFilter(params, "id_product", strconv.Itoa(productID))
	params.Set("display", "[id,quantity]")

	var resp struct {
		Stock []struct {
			Quantity FlexInt `json:"quantity"`
		} `json:"stock_availables"`
	}
	if err := c.getJSON(ctx, "stock_availables", "", params, &resp); err != nil {
		return 0, err
	}
	if len(resp.Stock) == 0 {
		return 0, ErrNotFound
	}

	// A product can have one stock record per combination; the spoken
	// answer is the total.
	total := 0
	for _, s := range resp.Stock {
		total += int(s.Quantity)
	}
	return total, nil
}
